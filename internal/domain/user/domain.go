package user

import (
	"fmt"
	"time"
)

// Role is the closed set of roles a user can hold. Records carrying any
// other value are treated as a configuration error, not an implicit deny.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole maps a request-supplied role string to a Role, defaulting to
// RoleUser when empty.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is a registered principal. The email is stored encrypted; EmailIndex
// is a deterministic keyed hash of the normalized email used for equality
// lookup and uniqueness. Nil refresh-token fields mean "no active session".
type User struct {
	ID               int64
	Username         string
	EmailEncrypted   string
	EmailIndex       string
	PasswordHash     string
	Role             Role
	RefreshTokenHash *string
	RefreshTokenExp  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
