package comment

import "time"

// Comment belongs to a post and to the user who wrote it. Author is the
// writer's display name captured at creation time; UserID is the stable
// ownership key.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Author    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
