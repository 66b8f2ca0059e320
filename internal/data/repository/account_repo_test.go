package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"gas-stock/internal/data/entity"
	"gas-stock/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func newTestAccountRepo(users UserRepository) AccountRepository {
	return NewAccountRepository(users, utils.NewBcryptHasher(bcrypt.MinCost), zap.NewNop())
}

// countingStore records which store calls the account repository makes.
type countingStore struct {
	UserRepository
	findByRoleCalls int
	deleteCalls     int
}

func (s *countingStore) FindByRole(ctx context.Context, role entity.Role) ([]*entity.Account, error) {
	s.findByRoleCalls++
	return s.UserRepository.FindByRole(ctx, role)
}

func (s *countingStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleteCalls++
	return s.UserRepository.Delete(ctx, id)
}

// brokenStore fails every lookup the way a dropped connection would.
type brokenStore struct {
	UserRepository
}

func (s *brokenStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, errors.New("connection refused")
}

func (s *brokenStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return nil, errors.New("connection refused")
}

// racyStore hides existing rows from the fast-path checks so the insert
// hits the storage constraint, as with two concurrent registrations.
type racyStore struct {
	UserRepository
}

func (s *racyStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func TestCreateUser_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())

	roles := []string{"admin", "manager", "delivery", "customer"}
	phones := []string{"+250788000001", "+250788000002", "0788000003", "250788000004"}

	for i, role := range roles {
		res := repo.CreateUser(ctx, CreateUserParams{
			Username:    "user-" + role,
			Email:       role + "@example.com",
			Password:    "secret-123",
			Role:        role,
			PhoneNumber: strPtr(phones[i]),
		})
		if !res.Success || res.StatusCode != http.StatusCreated {
			t.Fatalf("create %s failed: %d %s", role, res.StatusCode, res.Message)
		}

		got := repo.GetUserByID(ctx, res.Data.User.ID)
		if !got.Success {
			t.Fatalf("get %s failed: %s", role, got.Message)
		}
		if string(got.Data.Profile.Role) != role {
			t.Errorf("expected role %s, got %s", role, got.Data.Profile.Role)
		}
		if got.Data.Profile.PhoneNumber == nil || *got.Data.Profile.PhoneNumber != phones[i] {
			t.Errorf("expected phone %s, got %v", phones[i], got.Data.Profile.PhoneNumber)
		}
		if got.Data.User.PasswordHash == "secret-123" {
			t.Error("password must be stored hashed")
		}
	}
}

func TestCreateUser_DefaultsToCustomer(t *testing.T) {
	repo := newTestAccountRepo(NewMemoryUserRepository())

	res := repo.CreateUser(context.Background(), CreateUserParams{
		Username: "plain",
		Email:    "plain@example.com",
		Password: "secret-123",
	})
	if !res.Success {
		t.Fatalf("create failed: %s", res.Message)
	}
	if res.Data.Profile.Role != entity.RoleCustomer {
		t.Fatalf("expected customer, got %s", res.Data.Profile.Role)
	}
	if res.Data.Profile.PhoneNumber != nil {
		t.Fatalf("expected no phone, got %v", *res.Data.Profile.PhoneNumber)
	}
}

func TestCreateUser_DuplicateUsernameAlwaysWins(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())

	seed := repo.CreateUser(ctx, CreateUserParams{
		Username: "taken", Email: "taken@example.com", Password: "pw-123456", PhoneNumber: strPtr("+250788111111"),
	})
	if !seed.Success {
		t.Fatalf("seed failed: %s", seed.Message)
	}

	variants := []CreateUserParams{
		{Username: "taken", Email: "new@example.com", Password: "pw"},
		{Username: "taken", Email: "taken@example.com", Password: "pw"},
		{Username: "taken", Email: "x@example.com", Password: "pw", Role: "wizard"},
		{Username: "taken", Email: "y@example.com", Password: "pw", PhoneNumber: strPtr("abc")},
		{Username: "taken", Email: "z@example.com", Password: "pw", PhoneNumber: strPtr("+250788111111")},
	}

	for _, params := range variants {
		res := repo.CreateUser(ctx, params)
		if res.Success || res.StatusCode != http.StatusBadRequest || res.Message != MsgUsernameExists {
			t.Errorf("params %+v: expected 400 %q, got %d %q", params, MsgUsernameExists, res.StatusCode, res.Message)
		}
	}
}

func TestCreateUser_CheckOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())

	repo.CreateUser(ctx, CreateUserParams{
		Username: "first", Email: "first@example.com", Password: "pw", PhoneNumber: strPtr("+250788222222"),
	})

	tests := []struct {
		name   string
		params CreateUserParams
		want   string
	}{
		{"email before role", CreateUserParams{Username: "a", Email: "first@example.com", Role: "wizard"}, MsgEmailExists},
		{"phone before role", CreateUserParams{Username: "b", Email: "b@example.com", Role: "wizard", PhoneNumber: strPtr("+250788222222")}, MsgPhoneExists},
		{"role before phone format", CreateUserParams{Username: "c", Email: "c@example.com", Role: "wizard", PhoneNumber: strPtr("123")}, MsgInvalidRole},
		{"phone format", CreateUserParams{Username: "d", Email: "d@example.com", PhoneNumber: strPtr("123")}, MsgInvalidPhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := repo.CreateUser(ctx, tt.params)
			if res.StatusCode != http.StatusBadRequest || res.Message != tt.want {
				t.Fatalf("expected 400 %q, got %d %q", tt.want, res.StatusCode, res.Message)
			}
		})
	}
}

func TestCreateUser_StorageConstraintIsValidation(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()
	repo := newTestAccountRepo(&racyStore{UserRepository: users})

	repo.CreateUser(ctx, CreateUserParams{Username: "dup", Email: "one@example.com", Password: "pw"})
	res := repo.CreateUser(ctx, CreateUserParams{Username: "dup", Email: "two@example.com", Password: "pw"})

	if res.StatusCode != http.StatusBadRequest || res.Message != MsgUsernameExists {
		t.Fatalf("expected 400 %q, got %d %q", MsgUsernameExists, res.StatusCode, res.Message)
	}
}

func TestInternalErrorsAreEnveloped(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(&brokenStore{UserRepository: NewMemoryUserRepository()})

	res := repo.CreateUser(ctx, CreateUserParams{Username: "x", Email: "x@example.com", Password: "pw"})
	if res.StatusCode != http.StatusInternalServerError || res.Message != "connection refused" {
		t.Fatalf("expected 500 with failure message, got %d %q", res.StatusCode, res.Message)
	}

	get := repo.GetUserByID(ctx, uuid.New())
	if get.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", get.StatusCode)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo := newTestAccountRepo(NewMemoryUserRepository())

	res := repo.GetUserByID(context.Background(), uuid.New())
	if res.StatusCode != http.StatusNotFound || res.Message != MsgUserNotFound {
		t.Fatalf("expected 404 %q, got %d %q", MsgUserNotFound, res.StatusCode, res.Message)
	}
}

func TestGetUsersByRole(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{UserRepository: NewMemoryUserRepository()}
	repo := newTestAccountRepo(store)

	res := repo.GetUsersByRole(ctx, "invalid_role")
	if res.StatusCode != http.StatusBadRequest || res.Message != MsgInvalidRole {
		t.Fatalf("expected 400 %q, got %d %q", MsgInvalidRole, res.StatusCode, res.Message)
	}
	if store.findByRoleCalls != 0 {
		t.Fatalf("invalid role must not reach the store, got %d calls", store.findByRoleCalls)
	}

	repo.CreateUser(ctx, CreateUserParams{Username: "d1", Email: "d1@example.com", Password: "pw", Role: "delivery"})
	repo.CreateUser(ctx, CreateUserParams{Username: "c1", Email: "c1@example.com", Password: "pw"})
	repo.CreateUser(ctx, CreateUserParams{Username: "d2", Email: "d2@example.com", Password: "pw", Role: "delivery"})

	res = repo.GetUsersByRole(ctx, "delivery")
	if !res.Success {
		t.Fatalf("list failed: %s", res.Message)
	}

	names := map[string]bool{}
	for _, acc := range res.Data {
		names[acc.User.Username] = true
		if acc.Profile.Role != entity.RoleDelivery {
			t.Errorf("unexpected role %s for %s", acc.Profile.Role, acc.User.Username)
		}
	}
	if len(names) != 2 || !names["d1"] || !names["d2"] {
		t.Fatalf("expected d1 and d2, got %v", names)
	}

	empty := repo.GetUsersByRole(ctx, "admin")
	if !empty.Success || len(empty.Data) != 0 {
		t.Fatalf("expected empty success list, got %+v", empty)
	}
}

func TestUpdateProfile_PartialAndIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())

	created := repo.CreateUser(ctx, CreateUserParams{Username: "p", Email: "p@example.com", Password: "pw", Role: "manager"})
	id := created.Data.User.ID

	first := repo.UpdateProfile(ctx, id, ProfileUpdate{
		Address:      strPtr("KG 11 Ave, Kigali"),
		ProfileImage: strPtr("profile_images/p.png"),
	})
	if !first.Success {
		t.Fatalf("seed update failed: %s", first.Message)
	}

	update := ProfileUpdate{PhoneNumber: strPtr("+250788333333")}
	once := repo.UpdateProfile(ctx, id, update)
	if !once.Success {
		t.Fatalf("update failed: %s", once.Message)
	}
	twice := repo.UpdateProfile(ctx, id, update)
	if !twice.Success {
		t.Fatalf("repeated update failed: %s", twice.Message)
	}

	got := repo.GetUserByID(ctx, id).Data.Profile
	if *got.PhoneNumber != "+250788333333" {
		t.Errorf("phone not applied: %v", *got.PhoneNumber)
	}
	if got.Address == nil || *got.Address != "KG 11 Ave, Kigali" {
		t.Errorf("address changed: %v", got.Address)
	}
	if got.ProfileImage == nil || *got.ProfileImage != "profile_images/p.png" {
		t.Errorf("image changed: %v", got.ProfileImage)
	}
	if got.Role != entity.RoleManager {
		t.Errorf("role changed: %s", got.Role)
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())

	owner := repo.CreateUser(ctx, CreateUserParams{Username: "o", Email: "o@example.com", Password: "pw", PhoneNumber: strPtr("+250788444444")})
	other := repo.CreateUser(ctx, CreateUserParams{Username: "q", Email: "q@example.com", Password: "pw"})

	tests := []struct {
		name   string
		id     uuid.UUID
		update ProfileUpdate
		code   int
		msg    string
	}{
		{"bad phone", other.Data.User.ID, ProfileUpdate{PhoneNumber: strPtr("abc")}, http.StatusBadRequest, MsgInvalidPhoneNumber},
		{"bad role", other.Data.User.ID, ProfileUpdate{Role: strPtr("boss")}, http.StatusBadRequest, MsgInvalidRole},
		{"phone of another user", other.Data.User.ID, ProfileUpdate{PhoneNumber: strPtr("+250788444444")}, http.StatusBadRequest, MsgPhoneExists},
		{"missing profile", uuid.New(), ProfileUpdate{Address: strPtr("x")}, http.StatusNotFound, MsgProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := repo.UpdateProfile(ctx, tt.id, tt.update)
			if res.StatusCode != tt.code || res.Message != tt.msg {
				t.Fatalf("expected %d %q, got %d %q", tt.code, tt.msg, res.StatusCode, res.Message)
			}
		})
	}

	// Rejected updates leave the profile as it was.
	got := repo.GetUserByID(ctx, other.Data.User.ID).Data.Profile
	if got.PhoneNumber != nil || got.Role != entity.RoleCustomer {
		t.Fatalf("profile modified by rejected update: %+v", got)
	}

	// Re-saving your own number is not a conflict.
	same := repo.UpdateProfile(ctx, owner.Data.User.ID, ProfileUpdate{PhoneNumber: strPtr("+250788444444")})
	if !same.Success {
		t.Fatalf("owner re-saving phone failed: %s", same.Message)
	}
}

func TestDeleteUserByID(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{UserRepository: NewMemoryUserRepository()}
	repo := newTestAccountRepo(store)

	kept := repo.CreateUser(ctx, CreateUserParams{Username: "k", Email: "k@example.com", Password: "pw"})

	missing := repo.DeleteUserByID(ctx, uuid.New())
	if missing.StatusCode != http.StatusNotFound || missing.Message != MsgUserNotFound {
		t.Fatalf("expected 404, got %d %q", missing.StatusCode, missing.Message)
	}
	if !repo.GetUserByID(ctx, kept.Data.User.ID).Success {
		t.Fatal("store changed after deleting a missing id")
	}

	res := repo.DeleteUserByID(ctx, kept.Data.User.ID)
	if !res.Success || res.Message != MsgUserDeleted {
		t.Fatalf("delete failed: %d %q", res.StatusCode, res.Message)
	}
	if repo.GetUserByID(ctx, kept.Data.User.ID).StatusCode != http.StatusNotFound {
		t.Fatal("user still present after delete")
	}
	if upd := repo.UpdateProfile(ctx, kept.Data.User.ID, ProfileUpdate{Address: strPtr("x")}); upd.StatusCode != http.StatusNotFound {
		t.Fatalf("profile should be gone with its user, got %d", upd.StatusCode)
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	repo := NewAccountRepository(NewMemoryUserRepository(), hasher, zap.NewNop())

	created := repo.CreateUser(ctx, CreateUserParams{Username: "pw", Email: "pw@example.com", Password: "old-pass"})

	res := repo.UpdatePassword(ctx, created.Data.User.ID, "new-pass")
	if !res.Success {
		t.Fatalf("update password failed: %s", res.Message)
	}

	stored := repo.GetUserByID(ctx, created.Data.User.ID).Data.User.PasswordHash
	if !hasher.Verify(stored, "new-pass") || hasher.Verify(stored, "old-pass") {
		t.Fatal("stored hash does not match the new password")
	}

	if miss := repo.UpdatePassword(ctx, uuid.New(), "x"); miss.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", miss.StatusCode)
	}
}

// narrowStore rejects profile writes the way a too-narrow column would.
type narrowStore struct {
	UserRepository
}

func (s *narrowStore) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	return fmt.Errorf("update profile %s: %w", profile.UserID, ErrValueTooLong)
}

func TestPasswordTooLongIsValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestAccountRepo(NewMemoryUserRepository())
	long := strings.Repeat("a", utils.MaxPasswordBytes+8)

	res := repo.CreateUser(ctx, CreateUserParams{Username: "long", Email: "long@example.com", Password: long})
	if res.StatusCode != http.StatusBadRequest || res.Message != MsgPasswordTooLong {
		t.Fatalf("expected 400 %q, got %d %q", MsgPasswordTooLong, res.StatusCode, res.Message)
	}
	if found := repo.GetUserByUsername(ctx, "long"); found.Success {
		t.Fatal("user stored despite rejected password")
	}

	created := repo.CreateUser(ctx, CreateUserParams{Username: "short", Email: "short@example.com", Password: "pw"})
	upd := repo.UpdatePassword(ctx, created.Data.User.ID, long)
	if upd.StatusCode != http.StatusBadRequest || upd.Message != MsgPasswordTooLong {
		t.Fatalf("expected 400 %q, got %d %q", MsgPasswordTooLong, upd.StatusCode, upd.Message)
	}
}

func TestUpdateProfile_ValueTooLongIsValidation(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepository()
	created := newTestAccountRepo(users).CreateUser(ctx, CreateUserParams{Username: "n", Email: "n@example.com", Password: "pw"})

	res := newTestAccountRepo(&narrowStore{UserRepository: users}).UpdateProfile(ctx, created.Data.User.ID, ProfileUpdate{
		PhoneNumber: strPtr("+123456789012345"),
	})
	if res.StatusCode != http.StatusBadRequest || res.Message != MsgValueTooLong {
		t.Fatalf("expected 400 %q, got %d %q", MsgValueTooLong, res.StatusCode, res.Message)
	}
}
