package utils

import (
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher hashes new passwords with its own algorithm but verifies
// both bcrypt and argon2 encoded digests, so switching PASSWORD_HASHER does
// not lock out existing users.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

type bcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(digest, password string) bool {
	return verifyDigest(digest, password)
}

type argon2Hasher struct {
	config argon2.Config
}

func NewArgon2Hasher() PasswordHasher {
	return &argon2Hasher{config: argon2.DefaultConfig()}
}

func (h *argon2Hasher) Hash(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("argon2 hash: %w", err)
	}
	return string(encoded), nil
}

func (h *argon2Hasher) Verify(digest, password string) bool {
	return verifyDigest(digest, password)
}

// NewPasswordHasher picks the hasher named in config, bcrypt by default.
func NewPasswordHasher(name string) PasswordHasher {
	if name == HasherArgon2 {
		return NewArgon2Hasher()
	}
	return NewBcryptHasher(bcrypt.DefaultCost)
}

func verifyDigest(digest, password string) bool {
	if strings.HasPrefix(digest, "$argon2") {
		ok, err := argon2.VerifyEncoded([]byte(password), []byte(digest))
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
