// Package auth holds the credential hashers used by the account service.
//
// Plain keeps the stored password as given and compares it byte for byte,
// matching existing databases. Bcrypt is opt-in through PASSWORD_MODE; the
// two modes are not interchangeable on the same database.
package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	ModePlain  = "plain"
	ModeBcrypt = "bcrypt"
)

// Hasher turns a password into its stored form and checks candidates against it.
type Hasher interface {
	Hash(password string) (string, error)
	Matches(stored, candidate string) bool
}

// New returns the hasher for mode.
func New(mode string) (Hasher, error) {
	switch mode {
	case "", ModePlain:
		return Plain{}, nil
	case ModeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}

type Plain struct{}

func (Plain) Hash(password string) (string, error) {
	return password, nil
}

func (Plain) Matches(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (Bcrypt) Matches(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
