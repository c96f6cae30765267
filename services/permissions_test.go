package services

import (
	"testing"

	"alumnihub/models"
)

func TestIsRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		userRole models.UserRole
		required models.UserRole
		want     bool
	}{
		{"admin satisfies admin", models.RoleAdmin, models.RoleAdmin, true},
		{"admin satisfies user", models.RoleAdmin, models.RoleUser, true},
		{"user does not satisfy admin", models.RoleUser, models.RoleAdmin, false},
		{"guest satisfies guest", models.RoleGuest, models.RoleGuest, true},
		{"unknown role satisfies nothing above guest", models.UserRole("owner"), models.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRoleAtLeast(tt.userRole, tt.required); got != tt.want {
				t.Errorf("IsRoleAtLeast(%q, %q) = %v, want %v", tt.userRole, tt.required, got, tt.want)
			}
		})
	}
}
