// Package auth implements account registration and credential checks on top
// of the user repository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crucial707/hci-accounts/internal/metrics"
	"github.com/crucial707/hci-accounts/internal/models"
)

// DefaultRedirectURL is where a successful login sends the browser.
const DefaultRedirectURL = "/welcome.html"

// Repository is the storage the service needs. *repo.UserRepo satisfies it.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindCredential(ctx context.Context, username string) (*models.Account, string, error)
	Insert(ctx context.Context, username, credential string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}

// Outcome is the result of a successful Authenticate.
type Outcome struct {
	Account     *models.Account
	RedirectURL string
}

type Service struct {
	repo        Repository
	verifier    Verifier
	redirectURL string
	log         *slog.Logger
}

// NewService wires the service. A nil verifier means plaintext comparison,
// an empty redirectURL means DefaultRedirectURL.
func NewService(repo Repository, verifier Verifier, redirectURL string, log *slog.Logger) *Service {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, verifier: verifier, redirectURL: redirectURL, log: log}
}

// Register creates an account for username. The existence check is only a
// fast path: two concurrent calls can both pass it, and the loser is stopped
// by the unique constraint on insert, which reports the same
// ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, credential string) (*models.Account, error) {
	if err := validate(username, credential); err != nil {
		metrics.RecordAccountOp("register", metrics.OutcomeInvalid)
		return nil, err
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		metrics.RecordAccountOp("register", metrics.OutcomeError)
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		metrics.RecordAccountOp("register", metrics.OutcomeConflict)
		return nil, models.ErrDuplicateUsername
	}

	sealed, err := s.verifier.Seal(credential)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			metrics.RecordAccountOp("register", metrics.OutcomeInvalid)
			return nil, err
		}
		metrics.RecordAccountOp("register", metrics.OutcomeError)
		return nil, fmt.Errorf("register: %w", err)
	}

	account, err := s.repo.Insert(ctx, username, sealed)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateUsername) {
			s.log.InfoContext(ctx, "register lost race on unique constraint", "username", username)
			metrics.RecordAccountOp("register", metrics.OutcomeConflict)
			return nil, models.ErrDuplicateUsername
		}
		metrics.RecordAccountOp("register", metrics.OutcomeError)
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RecordAccountOp("register", metrics.OutcomeOK)
	return account, nil
}

// Authenticate confirms that credential matches the one stored for username.
// An unknown username and a wrong credential both yield
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, credential string) (*Outcome, error) {
	if err := validate(username, credential); err != nil {
		metrics.RecordAccountOp("login", metrics.OutcomeInvalid)
		return nil, err
	}

	account, stored, err := s.repo.FindCredential(ctx, username)
	if err != nil {
		metrics.RecordAccountOp("login", metrics.OutcomeError)
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if account == nil {
		metrics.RecordAccountOp("login", metrics.OutcomeUnauthorized)
		return nil, models.ErrInvalidCredentials
	}

	ok, err := s.verifier.Verify(stored, credential)
	if err != nil {
		metrics.RecordAccountOp("login", metrics.OutcomeError)
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		metrics.RecordAccountOp("login", metrics.OutcomeUnauthorized)
		return nil, models.ErrInvalidCredentials
	}

	metrics.RecordAccountOp("login", metrics.OutcomeOK)
	return &Outcome{Account: account, RedirectURL: s.redirectURL}, nil
}

// List returns all accounts without credential material.
func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func validate(username, credential string) error {
	if err := validateField("username", username); err != nil {
		return err
	}
	return validateField("password", credential)
}

func validateField(name, v string) error {
	if v == "" {
		return &models.ValidationError{Field: name, Reason: "required"}
	}
	if len(v) > models.MaxFieldBytes {
		return &models.ValidationError{Field: name, Reason: fmt.Sprintf("must be at most %d bytes", models.MaxFieldBytes)}
	}
	return nil
}
