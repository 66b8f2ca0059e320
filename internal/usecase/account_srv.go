package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gas-stock/internal/data/repository"
	"gas-stock/internal/dto/request"
	"gas-stock/internal/dto/response"
	"gas-stock/internal/permission"
	"gas-stock/pkg/cache"
	"gas-stock/pkg/result"
	"gas-stock/pkg/storage"
	"gas-stock/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgInvalidInput       = "Invalid input"
	MsgInvalidCredentials = "Invalid username or password"
	MsgInvalidRefresh     = "Invalid or expired refresh token"
	MsgDeleteFailed       = "Failed to delete user"
	MsgInternalError      = "Internal server error"
)

// TokenIssuer signs and checks the access/refresh pair handed out at login.
type TokenIssuer interface {
	GenerateTokenPair(subject utils.TokenSubject) (utils.TokenPair, error)
	ParseToken(token, tokenType string) (*utils.TokenClaims, error)
}

type AccountService interface {
	RegisterUser(ctx context.Context, req *request.RegisterRequest) result.Result[*response.AccountResponse]
	CreateAdmin(ctx context.Context, username, email, password string) result.Result[*response.AccountResponse]
	LoginUser(ctx context.Context, req *request.LoginRequest) result.Result[*response.LoginResponse]
	RefreshToken(ctx context.Context, req *request.RefreshRequest) result.Result[*response.LoginResponse]
	GetUserProfile(ctx context.Context, userID uuid.UUID) result.Result[*response.AccountResponse]
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) result.Result[*response.ProfileResponse]
	UploadProfileImage(ctx context.Context, userID uuid.UUID, filename string, content []byte) result.Result[*response.ProfileResponse]
	DeleteUser(ctx context.Context, userID uuid.UUID) result.Result[struct{}]
	GetUsersByRole(ctx context.Context, role string) result.Result[*response.UsersResponse]
	ChangePassword(ctx context.Context, principal permission.Principal, req *request.ChangePasswordRequest) result.Result[struct{}]
}

type accountService struct {
	accounts repository.AccountRepository
	tokens   TokenIssuer
	hasher   utils.PasswordHasher
	cache    cache.Cache
	cacheTTL time.Duration
	images   storage.ImageStore
	log      *zap.Logger

	// compared against on unknown usernames so both login failures cost a hash
	dummyDigest string
}

func NewAccountService(
	accounts repository.AccountRepository,
	tokens TokenIssuer,
	hasher utils.PasswordHasher,
	profileCache cache.Cache,
	cacheTTL time.Duration,
	images storage.ImageStore,
	log *zap.Logger,
) AccountService {
	s := &accountService{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		cache:    profileCache,
		cacheTTL: cacheTTL,
		images:   images,
		log:      log.With(zap.String("service", "account")),
	}

	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		s.log.Error("Failed to prepare login dummy digest", zap.Error(err))
	}
	s.dummyDigest = dummy

	return s
}

// RegisterUser applies the regional phone rule on top of the generic
// format check done by the repository.
func (s *accountService) RegisterUser(ctx context.Context, req *request.RegisterRequest) result.Result[*response.AccountResponse] {
	if req.PhoneNumber != nil && *req.PhoneNumber != "" && !utils.ValidateRegionalPhoneNumber(*req.PhoneNumber) {
		s.log.Warn("Register rejected regional phone", zap.String("phone_number", *req.PhoneNumber))
		return result.Invalid[*response.AccountResponse](repository.MsgInvalidPhoneNumber, map[string]string{
			"phone_number": "Phone number must look like +2507XXXXXXXX",
		})
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
		return result.Invalid[*response.AccountResponse](MsgInvalidInput, errs)
	}

	res := s.accounts.CreateUser(ctx, repository.CreateUserParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
	})
	if !res.Success {
		return forward[*response.AccountResponse](s.log, "register", res)
	}

	s.log.Info("User registered",
		zap.String("user_id", res.Data.User.ID.String()),
		zap.String("username", res.Data.User.Username))

	data := response.AccountToResponse(res.Data)
	return result.Created(&data, "User registered successfully")
}

// CreateAdmin creates a staff account with the admin role.
func (s *accountService) CreateAdmin(ctx context.Context, username, email, password string) result.Result[*response.AccountResponse] {
	res := s.accounts.CreateUser(ctx, repository.CreateUserParams{
		Username: username,
		Email:    email,
		Password: password,
		Role:     "admin",
		IsStaff:  true,
	})
	if !res.Success {
		return forward[*response.AccountResponse](s.log, "create admin", res)
	}

	data := response.AccountToResponse(res.Data)
	return result.Created(&data, "Admin created successfully")
}

func (s *accountService) LoginUser(ctx context.Context, req *request.LoginRequest) result.Result[*response.LoginResponse] {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
		return result.Invalid[*response.LoginResponse](MsgInvalidInput, errs)
	}

	res := s.accounts.GetUserByUsername(ctx, req.Username)
	if res.IsInternal() {
		return forward[*response.LoginResponse](s.log, "login", res)
	}
	if !res.Success {
		s.hasher.Verify(s.dummyDigest, req.Password)
		s.log.Warn("Login for unknown user", zap.String("username", req.Username))
		return result.Unauthorized[*response.LoginResponse](MsgInvalidCredentials)
	}

	account := res.Data
	if !account.User.IsActive || !s.hasher.Verify(account.User.PasswordHash, req.Password) {
		s.log.Warn("Login rejected", zap.String("user_id", account.User.ID.String()))
		return result.Unauthorized[*response.LoginResponse](MsgInvalidCredentials)
	}

	tokens, err := s.tokens.GenerateTokenPair(utils.TokenSubject{
		UserID:   account.User.ID.String(),
		Username: account.User.Username,
		Role:     string(account.Profile.Role),
	})
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err), zap.String("user_id", account.User.ID.String()))
		return result.Internal[*response.LoginResponse](MsgInternalError)
	}

	s.log.Info("User logged in",
		zap.String("user_id", account.User.ID.String()),
		zap.String("username", account.User.Username))

	return result.OK(&response.LoginResponse{
		User:   response.UserToResponse(account),
		Tokens: tokens,
	}, "Login successful")
}

func (s *accountService) RefreshToken(ctx context.Context, req *request.RefreshRequest) result.Result[*response.LoginResponse] {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return result.Invalid[*response.LoginResponse](MsgInvalidInput, errs)
	}

	claims, err := s.tokens.ParseToken(req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		s.log.Warn("Refresh token rejected", zap.Error(err))
		return result.Unauthorized[*response.LoginResponse](MsgInvalidRefresh)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return result.Unauthorized[*response.LoginResponse](MsgInvalidRefresh)
	}

	res := s.accounts.GetUserByID(ctx, userID)
	if res.IsInternal() {
		return forward[*response.LoginResponse](s.log, "refresh token", res)
	}
	if !res.Success || !res.Data.User.IsActive {
		return result.Unauthorized[*response.LoginResponse](MsgInvalidRefresh)
	}

	account := res.Data
	tokens, err := s.tokens.GenerateTokenPair(utils.TokenSubject{
		UserID:   account.User.ID.String(),
		Username: account.User.Username,
		Role:     string(account.Profile.Role),
	})
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err), zap.String("user_id", account.User.ID.String()))
		return result.Internal[*response.LoginResponse](MsgInternalError)
	}

	return result.OK(&response.LoginResponse{
		User:   response.UserToResponse(account),
		Tokens: tokens,
	}, "Token refreshed successfully")
}

func (s *accountService) GetUserProfile(ctx context.Context, userID uuid.UUID) result.Result[*response.AccountResponse] {
	if cached, ok := s.cachedProfile(ctx, userID); ok {
		return result.OK(cached, "User profile retrieved successfully")
	}

	res := s.accounts.GetUserByID(ctx, userID)
	if !res.Success {
		return forward[*response.AccountResponse](s.log, "get profile", res)
	}

	data := response.AccountToResponse(res.Data)
	s.storeProfile(ctx, userID, &data)

	return result.OK(&data, "User profile retrieved successfully")
}

func (s *accountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) result.Result[*response.ProfileResponse] {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Profile update validation failed",
			zap.String("user_id", userID.String()),
			zap.String("errors", utils.FormatValidationErrors(errs)))
		return result.Invalid[*response.ProfileResponse](profileUpdateMessage(errs), errs)
	}

	res := s.accounts.UpdateProfile(ctx, userID, repository.ProfileUpdate{
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		Role:         req.Role,
		ProfileImage: req.ProfileImage,
	})
	if !res.Success {
		return forward[*response.ProfileResponse](s.log, "update profile", res)
	}

	s.invalidateProfile(ctx, userID)
	s.log.Info("Profile updated", zap.String("user_id", userID.String()))

	data := response.ProfileToResponse(res.Data)
	return result.OK(&data, "Profile updated successfully")
}

// UploadProfileImage trusts the sniffed content type, never the filename.
func (s *accountService) UploadProfileImage(ctx context.Context, userID uuid.UUID, filename string, content []byte) result.Result[*response.ProfileResponse] {
	ext, err := storage.DetectImage(content)
	if err != nil {
		s.log.Warn("Profile image rejected",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("filename", filename))
		return result.Invalid[*response.ProfileResponse](MsgInvalidInput, map[string]string{
			"profile_image": "Upload a valid image (jpeg, png, gif or webp)",
		})
	}

	if res := s.accounts.GetUserByID(ctx, userID); !res.Success {
		return forward[*response.ProfileResponse](s.log, "upload profile image", res)
	}

	ref, err := s.images.Save(ctx, ext, content)
	if err != nil {
		s.log.Error("Failed to store profile image", zap.Error(err), zap.String("user_id", userID.String()))
		return result.Internal[*response.ProfileResponse](MsgInternalError)
	}

	return s.UpdateProfile(ctx, userID, &request.UpdateProfileRequest{ProfileImage: &ref})
}

func (s *accountService) DeleteUser(ctx context.Context, userID uuid.UUID) result.Result[struct{}] {
	res := s.accounts.DeleteUserByID(ctx, userID)
	if res.Success {
		s.invalidateProfile(ctx, userID)
		s.log.Info("User deleted", zap.String("user_id", userID.String()))
	}

	res = forward[struct{}](s.log, "delete user", res)
	if res.Message == "" {
		if res.Success {
			res.Message = repository.MsgUserDeleted
		} else {
			res.Message = MsgDeleteFailed
		}
	}
	return res
}

func (s *accountService) GetUsersByRole(ctx context.Context, role string) result.Result[*response.UsersResponse] {
	res := s.accounts.GetUsersByRole(ctx, role)
	if !res.Success {
		return forward[*response.UsersResponse](s.log, "get users by role", res)
	}

	data := response.AccountsToResponse(res.Data)
	return result.OK(&data, "Users retrieved successfully")
}

// ChangePassword only rehashes once the old password has been verified.
func (s *accountService) ChangePassword(ctx context.Context, principal permission.Principal, req *request.ChangePasswordRequest) result.Result[struct{}] {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return result.Invalid[struct{}](MsgInvalidInput, errs)
	}

	res := s.accounts.GetUserByID(ctx, principal.UserID)
	if !res.Success {
		return forward[struct{}](s.log, "change password", res)
	}

	if !s.hasher.Verify(res.Data.User.PasswordHash, req.OldPassword) {
		s.log.Warn("Change password with wrong old password", zap.String("user_id", principal.UserID.String()))
		return result.Invalid[struct{}](MsgInvalidInput, map[string]string{
			"old_password": "Old password is not correct",
		})
	}

	updated := s.accounts.UpdatePassword(ctx, principal.UserID, req.NewPassword)
	if !updated.Success {
		return forward[struct{}](s.log, "change password", updated)
	}

	return result.OK(struct{}{}, "Password changed successfully")
}

// profileUpdateMessage keeps the envelope message the repository would give
// for the same field, phone format first.
func profileUpdateMessage(errs map[string]string) string {
	if _, ok := errs["phone_number"]; ok {
		return repository.MsgInvalidPhoneNumber
	}
	if _, ok := errs["role"]; ok {
		return repository.MsgInvalidRole
	}
	return MsgInvalidInput
}

func profileCacheKey(userID uuid.UUID) string {
	return "profile:" + userID.String()
}

func (s *accountService) cachedProfile(ctx context.Context, userID uuid.UUID) (*response.AccountResponse, bool) {
	raw, err := s.cache.Get(ctx, profileCacheKey(userID))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("Profile cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var data response.AccountResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		s.log.Warn("Profile cache entry corrupt", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, false
	}
	return &data, true
}

func (s *accountService) storeProfile(ctx context.Context, userID uuid.UUID, data *response.AccountResponse) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCacheKey(userID), raw, s.cacheTTL); err != nil {
		s.log.Warn("Profile cache write failed", zap.Error(err))
	}
}

func (s *accountService) invalidateProfile(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.log.Warn("Profile cache invalidation failed", zap.Error(err))
	}
}

// forward passes a repository result up. Internal failures are logged in
// full and replaced with a generic message before they reach a client.
func forward[T, U any](log *zap.Logger, operation string, r result.Result[U]) result.Result[T] {
	out := result.Forward[T](r)
	if r.IsInternal() {
		log.Error("Failed to "+operation, zap.String("cause", r.Message))
		out.Message = MsgInternalError
	}
	return out
}
