package domain

import "time"

// UserRole enumerates the fixed account roles.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleStaff || r == RoleAdmin
}

func (r UserRole) String() string {
	return string(r)
}

// User is the single account type; role decides capabilities.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
