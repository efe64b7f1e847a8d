package comment

import "context"

type Repo interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	// ListByPost returns a post's comments, newest first.
	ListByPost(ctx context.Context, postID int64) ([]*Comment, error)
	Delete(ctx context.Context, id int64) error
}
