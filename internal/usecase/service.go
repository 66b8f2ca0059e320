package usecase

import (
	"gas-stock/internal/data/repository"
	"gas-stock/pkg/cache"
	"gas-stock/pkg/storage"
	"gas-stock/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Account AccountService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	tokens TokenIssuer,
	hasher utils.PasswordHasher,
	profileCache cache.Cache,
	images storage.ImageStore,
	log *zap.Logger,
) *Service {
	return &Service{
		Account: NewAccountService(repo.Account, tokens, hasher, profileCache, config.Redis.ProfileCacheTTL, images, log),
	}
}
