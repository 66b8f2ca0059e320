package repository

import (
	"gas-stock/pkg/utils"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Account AccountRepository
}

// NewRepository wires the account rules on top of the given user store,
// Postgres in production or the in-memory store.
func NewRepository(users UserRepository, hasher utils.PasswordHasher, log *zap.Logger) *Repository {
	return &Repository{
		User:    users,
		Account: NewAccountRepository(users, hasher, log),
	}
}
