package application

import (
	"fmt"
	"strings"
)

// Role is the authorization tier of an account.
type Role int

const (
	// RoleUser is assigned to every self-registered account.
	RoleUser Role = iota + 1
	// RoleAdmin can search, edit, and delete any booking.
	RoleAdmin
)

// ParseRole converts the stored representation of a role.
func ParseRole(value string) (Role, error) {
	switch strings.TrimSpace(value) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("application: unknown role %q", value)
}

// String returns the stored representation of the role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return ""
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}
