package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inkpress/inkpress/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (username, email_encrypted, email_index, password_hash, role)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at;`

	qUserSelect = `
SELECT id, username, email_encrypted, email_index, password_hash, role,
       refresh_token_hash, refresh_token_exp, created_at, updated_at
FROM users`

	qUserByID = qUserSelect + `
WHERE id = $1;`

	qUserByEmailIndex = qUserSelect + `
WHERE email_index = $1;`

	qUserByRefreshHash = qUserSelect + `
WHERE refresh_token_hash = $1;`

	qUserList = qUserSelect + `
ORDER BY created_at DESC;`

	qUserSetRefresh = `
UPDATE users
SET refresh_token_hash = $2,
    refresh_token_exp  = $3,
    updated_at         = NOW()
WHERE id = $1;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qUserInsert,
		u.Username, u.EmailEncrypted, u.EmailIndex, u.PasswordHash, string(u.Role)).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmailIndex(ctx context.Context, index string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByEmailIndex, index), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByRefreshTokenHash(ctx context.Context, hash string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByRefreshHash, hash), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, id int64, hash *string, exp *time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qUserSetRefresh, id, hash, exp)
	if err != nil {
		return fmt.Errorf("user set refresh: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qUserList)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		var u user.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row, out *user.User) error {
	var role string
	if err := row.Scan(&out.ID, &out.Username, &out.EmailEncrypted, &out.EmailIndex,
		&out.PasswordHash, &role, &out.RefreshTokenHash, &out.RefreshTokenExp,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	out.Role = user.Role(role)
	return nil
}
