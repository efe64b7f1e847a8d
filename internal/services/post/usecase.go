package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	authsvc "github.com/inkpress/inkpress/internal/services/auth"

	"github.com/inkpress/inkpress/internal/domain/post"
	"github.com/inkpress/inkpress/internal/domain/user"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrForbidden = errors.New("forbidden")
)

type Usecase struct {
	repo post.Repo
}

func NewUsecase(repo post.Repo) *Usecase { return &Usecase{repo: repo} }

func (u *Usecase) List(ctx context.Context) ([]*post.Post, error) {
	return u.repo.List(ctx)
}

func (u *Usecase) Get(ctx context.Context, id int64) (*post.Post, error) {
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// Create publishes a post authored by the requester's display name.
func (u *Usecase) Create(ctx context.Context, requester *user.User, title, content string) (*post.Post, error) {
	p := &post.Post{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
		Author:  requester.Username,
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Update edits a post; only its author or an admin may.
func (u *Usecase) Update(ctx context.Context, requester *user.User, id int64, title, content string) (*post.Post, error) {
	cur, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authsvc.IsOwnerOrAdmin(requester, cur.Author) {
		return nil, ErrForbidden
	}
	cur.Title = strings.TrimSpace(title)
	cur.Content = strings.TrimSpace(content)
	if err := u.repo.Update(ctx, cur); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return cur, nil
}

// Delete removes a post; only its author or an admin may.
func (u *Usecase) Delete(ctx context.Context, requester *user.User, id int64) error {
	cur, err := u.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authsvc.IsOwnerOrAdmin(requester, cur.Author) {
		return ErrForbidden
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
