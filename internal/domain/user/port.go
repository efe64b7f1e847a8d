package user

import (
	"context"
	"time"
)

type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmailIndex(ctx context.Context, index string) (*User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*User, error)
	// SetRefreshToken overwrites the stored refresh digest and expiry.
	// Passing nils clears the session.
	SetRefreshToken(ctx context.Context, id int64, hash *string, exp *time.Time) error
	List(ctx context.Context) ([]*User, error)
}
