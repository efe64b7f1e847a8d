package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inkpress/inkpress/internal/domain/post"
)

var _ post.Repo = (*PostRepo)(nil)

type PostRepo struct {
	db *DB
}

func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const (
	qPostInsert = `
INSERT INTO posts (title, content, author)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at;`

	qPostByID = `
SELECT id, title, content, author, created_at, updated_at
FROM posts
WHERE id = $1;`

	qPostList = `
SELECT id, title, content, author, created_at, updated_at
FROM posts
ORDER BY created_at DESC;`

	qPostUpdate = `
UPDATE posts
SET title      = $2,
    content    = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at;`

	qPostDelete = `
DELETE FROM posts WHERE id = $1;`
)

func (r *PostRepo) Create(ctx context.Context, p *post.Post) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qPostInsert, p.Title, p.Content, p.Author).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("post insert: %w", err)
	}
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p post.Post
	if err := scanPost(r.db.Pool.QueryRow(ctx, qPostByID, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]*post.Post, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qPostList)
	if err != nil {
		return nil, fmt.Errorf("post list: %w", err)
	}
	defer rows.Close()

	var out []*post.Post
	for rows.Next() {
		var p post.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostRepo) Update(ctx context.Context, p *post.Post) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qPostUpdate, p.ID, p.Title, p.Content).
		Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("post update: %w", err)
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qPostDelete, id)
	if err != nil {
		return fmt.Errorf("post delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row, out *post.Post) error {
	if err := row.Scan(&out.ID, &out.Title, &out.Content, &out.Author,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan post: %w", err)
	}
	return nil
}
