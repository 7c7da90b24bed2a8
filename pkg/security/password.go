package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed    = errors.New("password hashing failed")
	ErrPasswordTooShort = errors.New("password too short")
	MinPasswordLen      = 6
)

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// dummyHash is compared against when the account does not exist so that
// unknown emails take as long to reject as wrong passwords.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z0YZ6TG1lQDHb/NrGUFVbXxG")

// CompareOrBurn compares against hashedPassword, or against a fixed hash
// when hashedPassword is empty. An empty hash never matches.
func CompareOrBurn(h PasswordHasher, hashedPassword, password string) error {
	if hashedPassword == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return h.Compare(hashedPassword, password)
}
