package post

import "time"

// Post is a published blog entry. Author is the display name of the user
// who created it; ownership checks compare against the requester's name.
type Post struct {
	ID        int64
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
