package repository

import (
	"context"
	"errors"
	"time"

	"gas-stock/internal/data/entity"
	"gas-stock/pkg/result"
	"gas-stock/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgUsernameExists     = "Username already exists"
	MsgEmailExists        = "Email already exists"
	MsgPhoneExists        = "Phone number already exists"
	MsgInvalidRole        = "Invalid role"
	MsgInvalidPhoneNumber = "Invalid phone number format"
	MsgUserNotFound       = "User not found"
	MsgProfileNotFound    = "Profile not found"
	MsgUserDeleted        = "User deleted successfully"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
	MsgValueTooLong       = "Value too long"
)

var duplicateMessages = map[string]string{
	FieldUsername:    MsgUsernameExists,
	FieldEmail:       MsgEmailExists,
	FieldPhoneNumber: MsgPhoneExists,
}

type CreateUserParams struct {
	Username    string
	Email       string
	Password    string
	Role        string // empty means customer
	PhoneNumber *string
	IsStaff     bool
}

// ProfileUpdate carries the fields to change. A nil or empty field is left
// untouched.
type ProfileUpdate struct {
	PhoneNumber  *string
	Address      *string
	Role         *string
	ProfileImage *string
}

// AccountRepository enforces uniqueness and validation around a user and
// its profile. Every method answers with a result envelope; failures never
// escape as errors.
type AccountRepository interface {
	CreateUser(ctx context.Context, params CreateUserParams) result.Result[*entity.Account]
	GetUserByID(ctx context.Context, id uuid.UUID) result.Result[*entity.Account]
	GetUserByUsername(ctx context.Context, username string) result.Result[*entity.Account]
	GetUsersByRole(ctx context.Context, role string) result.Result[[]*entity.Account]
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) result.Result[*entity.Profile]
	UpdatePassword(ctx context.Context, userID uuid.UUID, password string) result.Result[struct{}]
	DeleteUserByID(ctx context.Context, id uuid.UUID) result.Result[struct{}]
}

type accountRepository struct {
	users  UserRepository
	hasher utils.PasswordHasher
	log    *zap.Logger
}

func NewAccountRepository(users UserRepository, hasher utils.PasswordHasher, log *zap.Logger) AccountRepository {
	return &accountRepository{
		users:  users,
		hasher: hasher,
		log:    log.With(zap.String("repository", "account")),
	}
}

func (r *accountRepository) CreateUser(ctx context.Context, params CreateUserParams) result.Result[*entity.Account] {
	phone := nonEmpty(params.PhoneNumber)

	taken, err := r.users.ExistsByUsername(ctx, params.Username)
	if err != nil {
		return result.Internal[*entity.Account](err.Error())
	}
	if taken {
		return result.BadRequest[*entity.Account](MsgUsernameExists)
	}

	taken, err = r.users.ExistsByEmail(ctx, params.Email)
	if err != nil {
		return result.Internal[*entity.Account](err.Error())
	}
	if taken {
		return result.BadRequest[*entity.Account](MsgEmailExists)
	}

	if phone != nil {
		taken, err = r.users.ExistsByPhone(ctx, *phone, uuid.Nil)
		if err != nil {
			return result.Internal[*entity.Account](err.Error())
		}
		if taken {
			return result.BadRequest[*entity.Account](MsgPhoneExists)
		}
	}

	role := entity.RoleCustomer
	if params.Role != "" {
		role = entity.Role(params.Role)
	}
	if !role.IsValid() {
		return result.BadRequest[*entity.Account](MsgInvalidRole)
	}

	if phone != nil && !utils.ValidatePhoneNumber(*phone) {
		return result.BadRequest[*entity.Account](MsgInvalidPhoneNumber)
	}

	hash, err := r.hasher.Hash(params.Password)
	if err != nil {
		if res, ok := badInputResult[*entity.Account](err); ok {
			return res
		}
		r.log.Error("Failed to hash password", zap.Error(err), zap.String("username", params.Username))
		return result.Internal[*entity.Account](err.Error())
	}

	account := entity.NewAccount(params.Username, params.Email, hash)
	account.User.IsStaff = params.IsStaff
	account.Profile.Role = role
	account.Profile.PhoneNumber = phone

	if err := r.users.CreateWithProfile(ctx, account); err != nil {
		if res, ok := badInputResult[*entity.Account](err); ok {
			r.log.Warn("Create user lost uniqueness race", zap.Error(err), zap.String("username", params.Username))
			return res
		}
		r.log.Error("Failed to create user", zap.Error(err), zap.String("username", params.Username))
		return result.Internal[*entity.Account](err.Error())
	}

	r.log.Info("User created",
		zap.String("user_id", account.User.ID.String()),
		zap.String("username", account.User.Username),
		zap.String("role", string(role)),
	)

	return result.Created(account, "User created successfully")
}

func (r *accountRepository) GetUserByID(ctx context.Context, id uuid.UUID) result.Result[*entity.Account] {
	account, err := r.users.FindByID(ctx, id)
	if err != nil {
		return result.Internal[*entity.Account](err.Error())
	}
	if account == nil {
		return result.NotFound[*entity.Account](MsgUserNotFound)
	}

	return result.OK(account, "User retrieved successfully")
}

func (r *accountRepository) GetUserByUsername(ctx context.Context, username string) result.Result[*entity.Account] {
	account, err := r.users.FindByUsername(ctx, username)
	if err != nil {
		return result.Internal[*entity.Account](err.Error())
	}
	if account == nil {
		return result.NotFound[*entity.Account](MsgUserNotFound)
	}

	return result.OK(account, "User retrieved successfully")
}

func (r *accountRepository) GetUsersByRole(ctx context.Context, role string) result.Result[[]*entity.Account] {
	if !entity.IsValidRole(role) {
		return result.BadRequest[[]*entity.Account](MsgInvalidRole)
	}

	accounts, err := r.users.FindByRole(ctx, entity.Role(role))
	if err != nil {
		return result.Internal[[]*entity.Account](err.Error())
	}

	return result.OK(accounts, "Users retrieved successfully")
}

func (r *accountRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) result.Result[*entity.Profile] {
	profile, err := r.users.FindProfile(ctx, userID)
	if err != nil {
		return result.Internal[*entity.Profile](err.Error())
	}
	if profile == nil {
		return result.NotFound[*entity.Profile](MsgProfileNotFound)
	}

	phone := nonEmpty(update.PhoneNumber)
	role := nonEmpty(update.Role)

	if phone != nil && !utils.ValidatePhoneNumber(*phone) {
		return result.BadRequest[*entity.Profile](MsgInvalidPhoneNumber)
	}
	if role != nil && !entity.IsValidRole(*role) {
		return result.BadRequest[*entity.Profile](MsgInvalidRole)
	}
	if phone != nil {
		taken, err := r.users.ExistsByPhone(ctx, *phone, userID)
		if err != nil {
			return result.Internal[*entity.Profile](err.Error())
		}
		if taken {
			return result.BadRequest[*entity.Profile](MsgPhoneExists)
		}
	}

	if phone != nil {
		profile.PhoneNumber = phone
	}
	if address := nonEmpty(update.Address); address != nil {
		profile.Address = address
	}
	if role != nil {
		profile.Role = entity.Role(*role)
	}
	if image := nonEmpty(update.ProfileImage); image != nil {
		profile.ProfileImage = image
	}
	profile.UpdatedAt = time.Now()

	if err := r.users.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[*entity.Profile](MsgProfileNotFound)
		}
		if res, ok := badInputResult[*entity.Profile](err); ok {
			return res
		}
		r.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID.String()))
		return result.Internal[*entity.Profile](err.Error())
	}

	return result.OK(profile, "Profile updated successfully")
}

func (r *accountRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, password string) result.Result[struct{}] {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		if res, ok := badInputResult[struct{}](err); ok {
			return res
		}
		r.log.Error("Failed to hash password", zap.Error(err), zap.String("user_id", userID.String()))
		return result.Internal[struct{}](err.Error())
	}

	if err := r.users.UpdatePassword(ctx, userID, hash, time.Now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[struct{}](MsgUserNotFound)
		}
		return result.Internal[struct{}](err.Error())
	}

	r.log.Info("Password updated", zap.String("user_id", userID.String()))
	return result.OK(struct{}{}, "Password updated successfully")
}

func (r *accountRepository) DeleteUserByID(ctx context.Context, id uuid.UUID) result.Result[struct{}] {
	if err := r.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return result.NotFound[struct{}](MsgUserNotFound)
		}
		return result.Internal[struct{}](err.Error())
	}

	return result.OK(struct{}{}, MsgUserDeleted)
}

// badInputResult maps store and hasher errors caused by the input itself
// to a 400. Anything else is left to the caller as an internal failure.
func badInputResult[T any](err error) (result.Result[T], bool) {
	var dup *DuplicateError
	switch {
	case errors.As(err, &dup):
		msg, ok := duplicateMessages[dup.Field]
		if !ok {
			msg = "Duplicate value"
		}
		return result.BadRequest[T](msg), true
	case errors.Is(err, utils.ErrPasswordTooLong):
		return result.BadRequest[T](MsgPasswordTooLong), true
	case errors.Is(err, ErrValueTooLong):
		return result.BadRequest[T](MsgValueTooLong), true
	}
	return result.Result[T]{}, false
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
