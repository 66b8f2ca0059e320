// internal/wire/wire.go
package wire

import (
	"net/http"

	"gas-stock/internal/adaptor"
	"gas-stock/internal/data/repository"
	"gas-stock/internal/usecase"
	"gas-stock/pkg/cache"
	"gas-stock/pkg/middleware"
	"gas-stock/pkg/storage"
	"gas-stock/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired router and the services behind it.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the collaborators built at startup.
type Deps struct {
	Repo   *repository.Repository
	Tokens *utils.TokenManager
	Hasher utils.PasswordHasher
	Cache  cache.Cache
	Images storage.ImageStore
}

// Wiring builds services, handlers and routes.
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, config, deps.Tokens, deps.Hasher, deps.Cache, deps.Images, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, deps, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(handler *adaptor.Handler, deps Deps, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	auth := middleware.AuthJWT(deps.Tokens, deps.Repo.Account, logger)
	wireAccount(r, handler.Account, auth, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
