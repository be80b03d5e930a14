package handlers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"github.com/crucial707/hci-accounts/internal/auth"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Service *auth.Service
	Log     *slog.Logger
}

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// decodeCredentials accepts a JSON body or a urlencoded form post.
func decodeCredentials(r *http.Request) (credentialsInput, error) {
	var input credentialsInput
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return input, err
		}
		input.Username = r.PostForm.Get("username")
		input.Password = r.PostForm.Get("password")
		return input, nil
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	return input, err
}

func (h *AuthHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	input, err := decodeCredentials(r)
	if err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	account, err := h.Service.Register(r.Context(), input.Username, input.Password)
	if err != nil {
		writeAccountError(w, r, h.logger(), "register", err)
		return
	}

	h.logger().InfoContext(r.Context(), "user registered", "user_id", account.ID, "username", account.Username)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("User registered successfully"))
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	input, err := decodeCredentials(r)
	if err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	out, err := h.Service.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		writeAccountError(w, r, h.logger(), "login", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"redirectUrl": out.RedirectURL})
}
