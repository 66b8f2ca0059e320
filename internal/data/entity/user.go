package entity

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleDelivery Role = "delivery"
	RoleCustomer Role = "customer"
)

var roleLabels = map[Role]string{
	RoleAdmin:    "Admin",
	RoleManager:  "Station Manager",
	RoleDelivery: "Delivery Staff",
	RoleCustomer: "Customer",
}

// Roles returns every known role in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleDelivery, RoleCustomer}
}

func (r Role) IsValid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label is the human-readable name shown in admin listings.
func (r Role) Label() string {
	return roleLabels[r]
}

func IsValidRole(role string) bool {
	return Role(role).IsValid()
}

type User struct {
	Base
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	IsActive     bool   `db:"is_active"`
	IsStaff      bool   `db:"is_staff"`
}

// Profile is keyed by its owner; a user always has exactly one.
type Profile struct {
	UserID       uuid.UUID `db:"user_id"`
	PhoneNumber  *string   `db:"phone_number"`
	Address      *string   `db:"address"`
	ProfileImage *string   `db:"profile_image"`
	IsVerified   bool      `db:"is_verified"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Account pairs a user with its profile.
type Account struct {
	User    *User
	Profile *Profile
}

// NewAccount builds a fresh active user and its default customer profile.
func NewAccount(username, email, passwordHash string) *Account {
	now := time.Now()
	id := uuid.New()

	return &Account{
		User: &User{
			Base: Base{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			},
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			IsActive:     true,
		},
		Profile: &Profile{
			UserID:    id,
			Role:      RoleCustomer,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
