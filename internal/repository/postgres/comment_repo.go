package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/inkpress/inkpress/internal/domain/comment"
)

var _ comment.Repo = (*CommentRepo)(nil)

type CommentRepo struct {
	db *DB
}

func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

const (
	qCommentInsert = `
INSERT INTO comments (post_id, user_id, author, content)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at;`

	qCommentByID = `
SELECT id, post_id, user_id, author, content, created_at, updated_at
FROM comments
WHERE id = $1;`

	qCommentsByPost = `
SELECT id, post_id, user_id, author, content, created_at, updated_at
FROM comments
WHERE post_id = $1
ORDER BY created_at DESC;`

	qCommentDelete = `
DELETE FROM comments WHERE id = $1;`
)

func (r *CommentRepo) Create(ctx context.Context, c *comment.Comment) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qCommentInsert, c.PostID, c.UserID, c.Author, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("comment insert: %w", err)
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*comment.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c comment.Comment
	if err := scanComment(r.db.Pool.QueryRow(ctx, qCommentByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) ListByPost(ctx context.Context, postID int64) ([]*comment.Comment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qCommentsByPost, postID)
	if err != nil {
		return nil, fmt.Errorf("comment list: %w", err)
	}
	defer rows.Close()

	var out []*comment.Comment
	for rows.Next() {
		var c comment.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qCommentDelete, id)
	if err != nil {
		return fmt.Errorf("comment delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComment(row pgx.Row, out *comment.Comment) error {
	if err := row.Scan(&out.ID, &out.PostID, &out.UserID, &out.Author, &out.Content,
		&out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan comment: %w", err)
	}
	return nil
}
