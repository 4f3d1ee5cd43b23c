package domain

// Role is the binary permission level of a hotel user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager
}

// Caller is the identity attached to every command. It is supplied by the
// identity provider and trusted as-is.
type Caller struct {
	TenantID string
	UserID   string
	Role     Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
