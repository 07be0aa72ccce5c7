package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "atelier/pkg/domain-errors"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEditor
}

func (r Role) String() string {
	return string(r)
}

// User is an administrative account. PasswordHash is a bcrypt digest and must
// never leave the service layer.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewUser creates a User with domain invariant validation. The caller hashes
// the password.
func NewUser(username, email, passwordHash string, role Role, now time.Time) (*User, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}

	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Identity is the authenticated caller extracted from a validated session
// token. It carries only what handlers need for authorization decisions.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
