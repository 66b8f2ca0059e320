package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gas-stock/internal/data/entity"
	"gas-stock/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// UserRepository persists users together with their profiles. Find methods
// return nil, nil when nothing matches; mutations return ErrNotFound or
// *DuplicateError.
type UserRepository interface {
	CreateWithProfile(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	FindByRole(ctx context.Context, role entity.Role) ([]*entity.Account, error)
	FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByPhone ignores the profile owned by exclude; pass uuid.Nil to check all.
	ExistsByPhone(ctx context.Context, phone string, exclude uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const (
	uniqueViolation         = "23505"
	stringDataRightTruncate = "22001"
)

var uniqueConstraintFields = map[string]string{
	"users_username_key":        FieldUsername,
	"users_email_key":           FieldEmail,
	"profiles_phone_number_key": FieldPhoneNumber,
}

const selectAccount = `
	SELECT u.id, u.username, u.email, u.password, u.is_active, u.is_staff,
	       u.created_at, u.updated_at,
	       p.phone_number, p.address, p.profile_image, p.is_verified, p.role,
	       p.created_at, p.updated_at
	FROM users u
	JOIN profiles p ON p.user_id = u.id
`

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

// CreateWithProfile inserts the user and its profile in one transaction.
func (r *userRepository) CreateWithProfile(ctx context.Context, account *entity.Account) error {
	user, profile := account.User, account.Profile

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password, is_active, is_staff,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.IsStaff,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert user",
			zap.Error(err),
			zap.String("username", user.Username),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Username, mapConstraintError(err))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (user_id, phone_number, address, profile_image,
		                      is_verified, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		profile.UserID,
		profile.PhoneNumber,
		profile.Address,
		profile.ProfileImage,
		profile.IsVerified,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert profile",
			zap.Error(err),
			zap.String("user_id", profile.UserID.String()),
		)
		return fmt.Errorf("create profile for %s: %w", user.Username, mapConstraintError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user %s: %w", user.Username, mapConstraintError(err))
	}

	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE u.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return account, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE u.username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by username",
			zap.Error(err),
			zap.String("username", username),
		)
		return nil, fmt.Errorf("find user by username %s: %w", username, err)
	}

	return account, nil
}

func (r *userRepository) FindByRole(ctx context.Context, role entity.Role) ([]*entity.Account, error) {
	rows, err := r.db.Query(ctx, selectAccount+` WHERE p.role = $1 ORDER BY u.created_at`, role)
	if err != nil {
		r.log.Error("Failed to find users by role",
			zap.Error(err),
			zap.String("role", string(role)),
		)
		return nil, fmt.Errorf("find users by role %s: %w", role, err)
	}
	defer rows.Close()

	accounts := make([]*entity.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			r.log.Error("Failed to scan account row", zap.Error(err))
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}

func (r *userRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	query := `
		SELECT user_id, phone_number, address, profile_image, is_verified, role,
		       created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var profile entity.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.ProfileImage,
		&profile.IsVerified,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find profile",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find profile %s: %w", userID.String(), err)
	}

	return &profile, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *userRepository) ExistsByPhone(ctx context.Context, phone string, exclude uuid.UUID) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE phone_number = $1 AND user_id <> $2)`,
		phone, exclude)
}

func (r *userRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		r.log.Error("Failed to run existence check", zap.Error(err), zap.Any("args", args))
		return false, fmt.Errorf("existence check: %w", err)
	}
	return found, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	query := `
		UPDATE profiles
		SET phone_number = $2, address = $3, profile_image = $4,
		    is_verified = $5, role = $6, updated_at = $7
		WHERE user_id = $1
	`

	result, err := r.db.Exec(ctx, query,
		profile.UserID,
		profile.PhoneNumber,
		profile.Address,
		profile.ProfileImage,
		profile.IsVerified,
		profile.Role,
		profile.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update profile",
			zap.Error(err),
			zap.String("user_id", profile.UserID.String()),
		)
		return fmt.Errorf("update profile %s: %w", profile.UserID.String(), mapConstraintError(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update profile %s: %w", profile.UserID.String(), ErrNotFound)
	}

	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, updatedAt)
	if err != nil {
		r.log.Error("Failed to update password",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("update password %s: %w", userID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update password %s: %w", userID.String(), ErrNotFound)
	}

	return nil
}

// Delete removes the user; the profile goes with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete user %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	var user entity.User
	var profile entity.Profile

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
		&profile.PhoneNumber,
		&profile.Address,
		&profile.ProfileImage,
		&profile.IsVerified,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	profile.UserID = user.ID
	return &entity.Account{User: &user, Profile: &profile}, nil
}

// mapConstraintError turns a unique violation into *DuplicateError and an
// over-long value into ErrValueTooLong so the caller can report them as bad
// input rather than a server fault.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return &DuplicateError{Field: uniqueConstraintFields[pgErr.ConstraintName], Err: err}
	case stringDataRightTruncate:
		return fmt.Errorf("%w: %v", ErrValueTooLong, err)
	}
	return err
}
