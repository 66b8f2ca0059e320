package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gas-stock/internal/data/entity"

	"github.com/google/uuid"
)

// memoryUserRepository keeps accounts in process memory with the same
// unique and cascade rules as the Postgres schema. It backs DB_DRIVER=memory
// and the tests. Listings come back in insertion order.
type memoryUserRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*entity.Account
	order    []uuid.UUID
}

var _ UserRepository = (*memoryUserRepository)(nil)

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		accounts: make(map[uuid.UUID]*entity.Account),
	}
}

func (r *memoryUserRepository) CreateWithProfile(ctx context.Context, account *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(account.User.ID, account.User.Username, account.User.Email, account.Profile.PhoneNumber); err != nil {
		return fmt.Errorf("create user %s: %w", account.User.Username, err)
	}

	r.accounts[account.User.ID] = copyAccount(account)
	r.order = append(r.order, account.User.ID)
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return copyAccount(account), nil
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.User.Username == username {
			return copyAccount(account), nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) FindByRole(ctx context.Context, role entity.Role) ([]*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*entity.Account, 0)
	for _, id := range r.order {
		if account := r.accounts[id]; account.Profile.Role == role {
			accounts = append(accounts, copyAccount(account))
		}
	}
	return accounts, nil
}

func (r *memoryUserRepository) FindProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[userID]
	if !ok {
		return nil, nil
	}
	return copyAccount(account).Profile, nil
}

func (r *memoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.User.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.User.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) ExistsByPhone(ctx context.Context, phone string, exclude uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.phoneTaken(phone, exclude), nil
}

func (r *memoryUserRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[profile.UserID]
	if !ok {
		return fmt.Errorf("update profile %s: %w", profile.UserID, ErrNotFound)
	}
	if profile.PhoneNumber != nil && r.phoneTaken(*profile.PhoneNumber, profile.UserID) {
		return fmt.Errorf("update profile %s: %w", profile.UserID, &DuplicateError{Field: FieldPhoneNumber})
	}

	updated := *profile
	account.Profile = copyProfile(&updated)
	return nil
}

func (r *memoryUserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[userID]
	if !ok {
		return fmt.Errorf("update password %s: %w", userID, ErrNotFound)
	}

	account.User.PasswordHash = passwordHash
	account.User.UpdatedAt = updatedAt
	return nil
}

func (r *memoryUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return fmt.Errorf("delete user %s: %w", id, ErrNotFound)
	}

	delete(r.accounts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// checkUnique must be called with the write lock held.
func (r *memoryUserRepository) checkUnique(id uuid.UUID, username, email string, phone *string) error {
	for _, account := range r.accounts {
		if account.User.ID == id {
			return fmt.Errorf("user %s already stored", id)
		}
		if account.User.Username == username {
			return &DuplicateError{Field: FieldUsername}
		}
		if account.User.Email == email {
			return &DuplicateError{Field: FieldEmail}
		}
	}
	if phone != nil && r.phoneTaken(*phone, uuid.Nil) {
		return &DuplicateError{Field: FieldPhoneNumber}
	}
	return nil
}

func (r *memoryUserRepository) phoneTaken(phone string, exclude uuid.UUID) bool {
	for id, account := range r.accounts {
		if id == exclude || account.Profile.PhoneNumber == nil {
			continue
		}
		if *account.Profile.PhoneNumber == phone {
			return true
		}
	}
	return false
}

func copyAccount(account *entity.Account) *entity.Account {
	user := *account.User
	return &entity.Account{User: &user, Profile: copyProfile(account.Profile)}
}

func copyProfile(profile *entity.Profile) *entity.Profile {
	cp := *profile
	cp.PhoneNumber = copyString(profile.PhoneNumber)
	cp.Address = copyString(profile.Address)
	cp.ProfileImage = copyString(profile.ProfileImage)
	return &cp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
