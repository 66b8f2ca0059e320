package permission

import (
	"context"
	"testing"

	"gas-stock/internal/data/entity"

	"github.com/google/uuid"
)

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		name     string
		p        Principal
		admin    bool
		manager  bool
		delivery bool
		customer bool
	}{
		{"admin", Principal{Role: entity.RoleAdmin}, true, true, true, false},
		{"manager", Principal{Role: entity.RoleManager}, false, true, true, false},
		{"delivery", Principal{Role: entity.RoleDelivery}, false, false, true, false},
		{"customer", Principal{Role: entity.RoleCustomer}, false, false, false, true},
		{"staff customer", Principal{Role: entity.RoleCustomer, IsStaff: true}, true, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.p); got != tt.admin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.admin)
			}
			if got := IsManager(tt.p); got != tt.manager {
				t.Errorf("IsManager = %v, want %v", got, tt.manager)
			}
			if got := IsDeliveryStaff(tt.p); got != tt.delivery {
				t.Errorf("IsDeliveryStaff = %v, want %v", got, tt.delivery)
			}
			if got := IsCustomer(tt.p); got != tt.customer {
				t.Errorf("IsCustomer = %v, want %v", got, tt.customer)
			}
		})
	}
}

func TestProfileAccess(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	tests := []struct {
		name   string
		p      Principal
		target uuid.UUID
		view   bool
		modify bool
	}{
		{"self customer", Principal{UserID: self, Role: entity.RoleCustomer}, self, true, true},
		{"other customer", Principal{UserID: self, Role: entity.RoleCustomer}, other, false, false},
		{"delivery", Principal{UserID: self, Role: entity.RoleDelivery}, other, false, false},
		{"manager", Principal{UserID: self, Role: entity.RoleManager}, other, true, false},
		{"admin", Principal{UserID: self, Role: entity.RoleAdmin}, other, true, true},
		{"staff", Principal{UserID: self, Role: entity.RoleCustomer, IsStaff: true}, other, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewProfile(tt.p, tt.target); got != tt.view {
				t.Errorf("CanViewProfile = %v, want %v", got, tt.view)
			}
			if got := CanModifyProfile(tt.p, tt.target); got != tt.modify {
				t.Errorf("CanModifyProfile = %v, want %v", got, tt.modify)
			}
		})
	}
}

func TestCanDeleteUser(t *testing.T) {
	admin := Principal{UserID: uuid.New(), Role: entity.RoleAdmin}

	if CanDeleteUser(admin, admin.UserID) {
		t.Fatal("admin must not be allowed to delete their own account")
	}
	if !CanDeleteUser(admin, uuid.New()) {
		t.Fatal("admin should be allowed to delete another account")
	}
}

func TestPrincipalContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context should carry no principal")
	}

	p := Principal{UserID: uuid.New(), Role: entity.RoleManager}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	if !ok || got != p {
		t.Fatalf("expected %+v, got %+v (ok=%v)", p, got, ok)
	}
}

func TestNewPrincipal(t *testing.T) {
	acc := entity.NewAccount("root", "root@example.com", "hash")
	acc.User.IsStaff = true
	acc.Profile.Role = entity.RoleAdmin

	p := NewPrincipal(acc)
	if p.UserID != acc.User.ID || !p.IsStaff || p.Role != entity.RoleAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}
}
