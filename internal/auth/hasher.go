// Package auth provides the password hashing and session token primitives.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned by Matches when the stored hash is not a bcrypt hash.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Encode produces a salted hash of rawPassword.
	Encode(rawPassword string) (string, error)

	// Matches returns (true, nil) on match, (false, nil) on mismatch,
	// or an error wrapping ErrMalformedHash when hash is not structurally valid.
	Matches(rawPassword, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given work factor.
// Values outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Encode(rawPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(rawPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Matches(rawPassword, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
