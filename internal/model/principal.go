package model

// Role is the coarse permission level of an authenticated caller.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is the authenticated caller of an operation. It is passed to
// services explicitly rather than read from the request context.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal may use administrative operations.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
