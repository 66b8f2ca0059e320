package adaptor

import (
	"gas-stock/internal/usecase"
	"gas-stock/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Account *AccountHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Account: NewAccountHandler(service.Account, config.Storage.MaxUploadSize, log),
	}
}
