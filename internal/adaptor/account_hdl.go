package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gas-stock/internal/data/entity"
	"gas-stock/internal/dto/request"
	"gas-stock/internal/permission"
	"gas-stock/internal/usecase"
	"gas-stock/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const profileImageField = "profile_image"

type AccountHandler struct {
	service   usecase.AccountService
	maxUpload int64
	log       *zap.Logger
}

func NewAccountHandler(service usecase.AccountService, maxUpload int64, log *zap.Logger) *AccountHandler {
	return &AccountHandler{
		service:   service,
		maxUpload: maxUpload,
		log:       log.With(zap.String("handler", "account")),
	}
}

// Register handles POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.RegisterUser(r.Context(), &req))
}

// Login handles POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.LoginUser(r.Context(), &req))
}

// Refresh handles POST /api/auth/refresh
func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.RefreshToken(r.Context(), &req))
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the
// client discarding them is the whole logout.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if principal, ok := permission.FromContext(r.Context()); ok {
		h.log.Info("User logged out", zap.String("user_id", principal.UserID.String()))
	}
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.ChangePassword(r.Context(), principal, &req))
}

// GetProfile handles GET /api/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	utils.ResponseResult(w, h.service.GetUserProfile(r.Context(), principal.UserID))
}

// GetProfileByID handles GET /api/profile/{id}
func (h *AccountHandler) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	target, ok := h.targetID(w, r)
	if !ok {
		return
	}

	if !permission.CanViewProfile(principal, target) {
		h.forbidden(w, principal, "view profile")
		return
	}

	utils.ResponseResult(w, h.service.GetUserProfile(r.Context(), target))
}

// UpdateProfile handles PATCH /api/profile/update
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.UpdateProfile(r.Context(), principal.UserID, &req))
}

// UpdateProfileByID handles PATCH /api/profile/update/{id}
func (h *AccountHandler) UpdateProfileByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	target, ok := h.targetID(w, r)
	if !ok {
		return
	}

	if !permission.CanModifyProfile(principal, target) {
		h.forbidden(w, principal, "modify profile")
		return
	}

	var req request.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	utils.ResponseResult(w, h.service.UpdateProfile(r.Context(), target, &req))
}

// UploadProfileImage handles POST /api/profile/image (multipart field
// "profile_image").
func (h *AccountHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile(profileImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseBadRequest(w, "Invalid input", map[string]string{
				profileImageField: "Image exceeds the upload size limit",
			})
			return
		}
		utils.ResponseBadRequest(w, "Invalid input", map[string]string{
			profileImageField: "This field is required",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.log.Warn("Failed to read upload", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	utils.ResponseResult(w, h.service.UploadProfileImage(r.Context(), principal.UserID, header.Filename, content))
}

// DeleteUser handles DELETE /api/user/delete/{id}. Self-deletion is
// refused here, before the service is reached.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	target, ok := h.targetID(w, r)
	if !ok {
		return
	}

	if !permission.CanDeleteUser(principal, target) {
		h.log.Warn("Self delete attempt", zap.String("user_id", principal.UserID.String()))
		utils.ResponseBadRequest(w, "Cannot delete your own account", nil)
		return
	}

	utils.ResponseResult(w, h.service.DeleteUser(r.Context(), target))
}

// GetUsersByRole handles GET /api/users?role=delivery
func (h *AccountHandler) GetUsersByRole(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = string(entity.RoleCustomer)
	}

	utils.ResponseResult(w, h.service.GetUsersByRole(r.Context(), role))
}

func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Warn("Invalid request body", zap.Error(err), zap.String("path", r.URL.Path))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func (h *AccountHandler) principal(w http.ResponseWriter, r *http.Request) (permission.Principal, bool) {
	principal, ok := permission.FromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return principal, ok
}

func (h *AccountHandler) targetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *AccountHandler) forbidden(w http.ResponseWriter, principal permission.Principal, action string) {
	h.log.Warn("Permission denied",
		zap.String("user_id", principal.UserID.String()),
		zap.String("action", action))
	utils.ResponseForbidden(w, "You do not have permission to perform this action")
}
