package actor

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the coarse permission level the surrounding system resolves for a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleStaff:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// IsManagerial reports whether the role may approve tasks and review appeals.
func (r Role) IsManagerial() bool {
	return r == RoleAdmin || r == RoleManager
}

// Actor identifies who is invoking an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
