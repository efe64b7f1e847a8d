package post

import "context"

type Repo interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
}
