package models

import "time"

// Role distinguishes regular users from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that can own reports and open sessions.
// PasswordHash never leaves the engine.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Email        string    `json:"email" yaml:"email"`
	Name         string    `json:"name" yaml:"name"`
	Role         Role      `json:"role" yaml:"role"`
	Rut          *string   `json:"rut" yaml:"rut"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	PasswordHash string    `json:"-" yaml:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone returns a deep copy.
func (u *User) Clone() User {
	c := *u
	c.Rut = cloneString(u.Rut)
	return c
}

func (u *User) OwnerID() string { return u.ID }
