package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/hci-accounts/internal/models"
)

// Credential schemes accepted by NewVerifier.
const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// Verifier turns a submitted secret into stored credential material and
// checks a later submission against it.
type Verifier interface {
	Seal(secret string) (string, error)
	Verify(stored, secret string) (bool, error)
}

// NewVerifier returns the verifier for scheme.
func NewVerifier(scheme string) (Verifier, error) {
	switch scheme {
	case "", SchemePlain:
		return PlaintextVerifier{}, nil
	case SchemeBcrypt:
		return BcryptVerifier{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown credential scheme %q", scheme)
	}
}

// PlaintextVerifier stores the secret as submitted and compares bytes
// exactly. Existing deployments hold plaintext rows, so this stays the
// default until they are migrated to BcryptVerifier.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Seal(secret string) (string, error) {
	return secret, nil
}

func (PlaintextVerifier) Verify(stored, secret string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1, nil
}

// BcryptVerifier stores a salted bcrypt hash.
type BcryptVerifier struct {
	Cost int
}

// bcryptMaxInput is the longest secret bcrypt will hash.
const bcryptMaxInput = 72

func (v BcryptVerifier) Seal(secret string) (string, error) {
	if len(secret) > bcryptMaxInput {
		return "", &models.ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(stored, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("verify credential: %w", err)
	}
}
