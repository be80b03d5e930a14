package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/crucial707/hci-accounts/internal/auth"
	"github.com/crucial707/hci-accounts/internal/db"
	"github.com/crucial707/hci-accounts/internal/repo"
)

const (
	findUserQuery       = `SELECT id, username, created_at\s+FROM users\s+WHERE username = \$1`
	findCredentialQuery = `SELECT id, username, created_at, password`
	insertUserQuery     = `INSERT INTO users \(username, password\)`
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestService(t *testing.T) (*auth.Service, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	userRepo := repo.NewUserRepo(db.NewStore(conn, time.Second))
	return auth.NewService(userRepo, auth.PlaintextVerifier{}, "", quietLog), mock, conn
}

func postJSON(path string, v any) *http.Request {
	body, _ := json.Marshal(v)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	msg, _ := out["error"].(string)
	return msg
}

func TestAuthHandler_Register(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findUserQuery).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}))
	mock.ExpectQuery(insertUserQuery).
		WithArgs("bob", "hunter2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}).AddRow(2, "bob", time.Now()))

	h := &AuthHandler{Service: svc, Log: quietLog}
	rr := httptest.NewRecorder()
	h.Register(rr, postJSON("/register", map[string]string{"username": "bob", "password": "hunter2"}))

	if rr.Code != http.StatusCreated {
		t.Errorf("Register status: got %d, want 201", rr.Code)
	}
	if got := rr.Body.String(); got != "User registered successfully" {
		t.Errorf("Register body: got %q", got)
	}
	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Error("credential echoed back")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Form(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findUserQuery).
		WithArgs("carol").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}))
	mock.ExpectQuery(insertUserQuery).
		WithArgs("carol", "pw").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}).AddRow(3, "carol", time.Now()))

	form := url.Values{"username": {"carol"}, "password": {"pw"}}
	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Register status: got %d, want 201", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findUserQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}).AddRow(1, "alice", time.Now()))

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, postJSON("/register", map[string]string{"username": "alice", "password": "other"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	if msg := decodeError(t, rr); msg != MsgUserExists {
		t.Errorf("unexpected error: %q", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_RaceLostOnConstraint(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findUserQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at"}))
	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice", "s3cret").
		WillReturnError(&pq.Error{Code: "23505"})

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, postJSON("/register", map[string]string{"username": "alice", "password": "s3cret"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	if msg := decodeError(t, rr); msg != MsgUserExists {
		t.Errorf("unexpected error: %q", msg)
	}
}

func TestAuthHandler_Register_StoreFailure(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findUserQuery).
		WithArgs("alice").
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, postJSON("/register", map[string]string{"username": "alice", "password": "s3cret"}))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Register status: got %d, want 500", rr.Code)
	}
	if msg := decodeError(t, rr); msg != ErrMessageInternal {
		t.Errorf("internal detail leaked: %q", msg)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, postJSON("/register", map[string]string{"username": "alice"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	var out struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Fields["password"] != "required" {
		t.Errorf("unexpected fields: %+v", out.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store must not be queried: %v", err)
	}
}

func TestAuthHandler_Register_BadJSON(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	req := httptest.NewRequest("POST", "/register", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Register status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findCredentialQuery).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "created_at", "password"}).AddRow(1, "alice", time.Now(), "s3cret"))

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Login(rr, postJSON("/login", map[string]string{"username": "alice", "password": "s3cret"}))

	if rr.Code != http.StatusOK {
		t.Errorf("Login status: got %d, want 200", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["redirectUrl"] != "/welcome.html" {
		t.Errorf("unexpected response: %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	cases := []struct {
		name string
		rows *sqlmock.Rows
		user string
	}{
		{"wrong password", sqlmock.NewRows([]string{"id", "username", "created_at", "password"}).AddRow(1, "alice", time.Now(), "s3cret"), "alice"},
		{"unknown user", sqlmock.NewRows([]string{"id", "username", "created_at", "password"}), "nobody"},
	}
	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock, conn := newTestService(t)
			defer conn.Close()

			mock.ExpectQuery(findCredentialQuery).WithArgs(tc.user).WillReturnRows(tc.rows)

			rr := httptest.NewRecorder()
			(&AuthHandler{Service: svc, Log: quietLog}).Login(rr, postJSON("/login", map[string]string{"username": tc.user, "password": "wrong"}))

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Login status: got %d, want 401", rr.Code)
			}
			bodies = append(bodies, rr.Body.String())
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("expectations: %v", err)
			}
		})
	}
	if len(bodies) == 2 && bodies[0] != bodies[1] {
		t.Errorf("responses distinguish unknown user from wrong password: %q vs %q", bodies[0], bodies[1])
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	req := httptest.NewRequest("POST", "/login", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Login status: got %d, want 400", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_StoreFailure(t *testing.T) {
	svc, mock, conn := newTestService(t)
	defer conn.Close()

	mock.ExpectQuery(findCredentialQuery).
		WithArgs("alice").
		WillReturnError(errors.New("bad connection"))

	rr := httptest.NewRecorder()
	(&AuthHandler{Service: svc, Log: quietLog}).Login(rr, postJSON("/login", map[string]string{"username": "alice", "password": "s3cret"}))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Login status: got %d, want 500", rr.Code)
	}
}
