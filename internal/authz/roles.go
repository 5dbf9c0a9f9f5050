package authz

import "strings"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID             int64
	Role           string
	OrganizationID int64
}

func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

func IsKnownRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (c Caller) IsAdmin() bool {
	return NormalizeRole(c.Role) == RoleAdmin
}
