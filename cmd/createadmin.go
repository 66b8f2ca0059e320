package cmd

import (
	"context"
	"errors"

	"gas-stock/internal/data/repository"
	"gas-stock/internal/usecase"
	"gas-stock/pkg/utils"

	"go.uber.org/zap"
)

// CreateAdmin bootstraps the first admin from ADMIN_* settings. An
// existing username is left untouched.
func CreateAdmin(ctx context.Context, accounts usecase.AccountService, config utils.AdminConfig, logger *zap.Logger) error {
	if config.Username == "" || config.Email == "" || config.Password == "" {
		return errors.New("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	res := accounts.CreateAdmin(ctx, config.Username, config.Email, config.Password)
	if res.Success {
		logger.Info("Admin created", zap.String("username", config.Username), zap.String("id", res.Data.User.ID))
		return nil
	}

	if res.Message == repository.MsgUsernameExists {
		logger.Info("Admin already exists", zap.String("username", config.Username))
		return nil
	}

	return errors.New(res.Message)
}
