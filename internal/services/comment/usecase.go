package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkpress/inkpress/internal/domain/comment"
	"github.com/inkpress/inkpress/internal/domain/post"
	"github.com/inkpress/inkpress/internal/domain/user"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
	authsvc "github.com/inkpress/inkpress/internal/services/auth"
)

var (
	ErrNotFound     = errors.New("comment not found")
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
)

type Usecase struct {
	repo  comment.Repo
	posts post.Repo
}

func NewUsecase(repo comment.Repo, posts post.Repo) *Usecase {
	return &Usecase{repo: repo, posts: posts}
}

// Create attaches a comment to an existing post on behalf of the requester.
func (u *Usecase) Create(ctx context.Context, requester *user.User, postID int64, content string) (*comment.Comment, error) {
	if _, err := u.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("check post: %w", err)
	}
	c := &comment.Comment{
		PostID:  postID,
		UserID:  requester.ID,
		Author:  requester.Username,
		Content: strings.TrimSpace(content),
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (u *Usecase) ListByPost(ctx context.Context, postID int64) ([]*comment.Comment, error) {
	return u.repo.ListByPost(ctx, postID)
}

// Delete removes a comment; only its writer (by id) or an admin may.
func (u *Usecase) Delete(ctx context.Context, requester *user.User, id int64) error {
	cur, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get comment: %w", err)
	}
	if !authsvc.IsOwnerIDOrAdmin(requester, cur.UserID) {
		return ErrForbidden
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
