package wire

import (
	"net/http"

	"gas-stock/internal/adaptor"
	"gas-stock/internal/permission"
	"gas-stock/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAccount(
	r chi.Router,
	h *adaptor.AccountHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/refresh", h.Refresh)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/api/auth/logout", h.Logout)
		r.Post("/api/auth/change-password", h.ChangePassword)

		// target checks for {id} routes run in the handler
		r.Get("/api/profile", h.GetProfile)
		r.Get("/api/profile/{id}", h.GetProfileByID)
		r.Patch("/api/profile/update", h.UpdateProfile)
		r.Patch("/api/profile/update/{id}", h.UpdateProfileByID)
		r.Post("/api/profile/image", h.UploadProfileImage)

		// ==================== ROLE GATED ROUTES ====================
		r.With(middleware.Require(permission.IsAdmin, log)).Delete("/api/user/delete/{id}", h.DeleteUser)
		r.With(middleware.Require(permission.IsManager, log)).Get("/api/users", h.GetUsersByRole)
	})
}
