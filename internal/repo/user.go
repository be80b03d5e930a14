package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/hci-accounts/internal/db"
	"github.com/crucial707/hci-accounts/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	Store *db.Store
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(store *db.Store) *UserRepo {
	return &UserRepo{Store: store}
}

// ==========================
// Find By Username
// ==========================

// FindByUsername returns nil, nil when no account has that username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, created_at
		FROM users
		WHERE username = $1
	`

	a := &models.Account{}
	err := r.Store.QueryRow(ctx, "find user", query, []any{username},
		&a.ID, &a.Username, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ==========================
// Find Credential
// ==========================

// FindCredential loads an account together with its stored credential
// material. Only the authenticator should call it.
func (r *UserRepo) FindCredential(ctx context.Context, username string) (*models.Account, string, error) {
	query := `
		SELECT id, username, created_at, password
		FROM users
		WHERE username = $1
	`

	a := &models.Account{}
	var stored string
	err := r.Store.QueryRow(ctx, "find credential", query, []any{username},
		&a.ID, &a.Username, &a.CreatedAt, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	return a, stored, nil
}

// ==========================
// Insert
// ==========================

// Insert creates the account. The unique constraint on username is the
// authoritative conflict check; a violation maps to ErrDuplicateUsername.
func (r *UserRepo) Insert(ctx context.Context, username, credential string) (*models.Account, error) {
	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id, username, created_at
	`

	a := &models.Account{}
	err := r.Store.QueryRow(ctx, "insert user", query, []any{username, credential},
		&a.ID, &a.Username, &a.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, models.ErrDuplicateUsername
		}
		return nil, err
	}

	return a, nil
}

// ==========================
// List Users
// ==========================

// List returns every account ordered by id. The password column is never read.
func (r *UserRepo) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT id, username, created_at FROM users ORDER BY id`

	users := []models.Account{}
	err := r.Store.Run(ctx, "list users", query, nil, func(rows *sql.Rows) error {
		for rows.Next() {
			var a models.Account
			if err := rows.Scan(&a.ID, &a.Username, &a.CreatedAt); err != nil {
				return err
			}
			users = append(users, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}
