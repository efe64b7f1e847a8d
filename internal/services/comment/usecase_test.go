package comment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/domain/comment"
	"github.com/inkpress/inkpress/internal/domain/post"
	"github.com/inkpress/inkpress/internal/domain/user"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
)

type memCommentRepo struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]comment.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{rows: make(map[int64]comment.Comment)}
}

func (r *memCommentRepo) Create(_ context.Context, c *comment.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = r.seq
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.rows[c.ID] = *c
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id int64) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, pg.ErrNotFound
	}
	return &row, nil
}

func (r *memCommentRepo) ListByPost(_ context.Context, postID int64) ([]*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*comment.Comment
	for _, row := range r.rows {
		if row.PostID == postID {
			row := row
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *memCommentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pg.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// stubPostRepo serves only the existence check Create runs.
type stubPostRepo struct {
	ids map[int64]bool
}

func (s *stubPostRepo) Create(context.Context, *post.Post) error { return nil }

func (s *stubPostRepo) GetByID(_ context.Context, id int64) (*post.Post, error) {
	if !s.ids[id] {
		return nil, pg.ErrNotFound
	}
	return &post.Post{ID: id}, nil
}

func (s *stubPostRepo) List(context.Context) ([]*post.Post, error) { return nil, nil }
func (s *stubPostRepo) Update(context.Context, *post.Post) error   { return nil }
func (s *stubPostRepo) Delete(context.Context, int64) error        { return nil }

var (
	alice = &user.User{ID: 1, Username: "alice", Role: user.RoleUser}
	bob   = &user.User{ID: 2, Username: "bob", Role: user.RoleUser}
	admin = &user.User{ID: 3, Username: "root", Role: user.RoleAdmin}
)

func newTestUsecase() *Usecase {
	return NewUsecase(newMemCommentRepo(), &stubPostRepo{ids: map[int64]bool{10: true}})
}

func TestCreateComment(t *testing.T) {
	uc := newTestUsecase()

	c, err := uc.Create(context.Background(), alice, 10, "  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, int64(10), c.PostID)
	assert.Equal(t, alice.ID, c.UserID)
	assert.Equal(t, "alice", c.Author)
	assert.Equal(t, "nice post", c.Content)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	uc := newTestUsecase()

	_, err := uc.Create(context.Background(), alice, 404, "orphan")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeleteCommentOwnership(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	mine, err := uc.Create(ctx, alice, 10, "mine")
	require.NoError(t, err)
	bobs, err := uc.Create(ctx, bob, 10, "bobs")
	require.NoError(t, err)

	// Ownership keys on the writer's id, not the display name.
	assert.ErrorIs(t, uc.Delete(ctx, bob, mine.ID), ErrForbidden)
	assert.NoError(t, uc.Delete(ctx, alice, mine.ID))
	assert.NoError(t, uc.Delete(ctx, admin, bobs.ID))
	assert.ErrorIs(t, uc.Delete(ctx, alice, mine.ID), ErrNotFound)
}

func TestListByPost(t *testing.T) {
	uc := newTestUsecase()
	ctx := context.Background()

	_, err := uc.Create(ctx, alice, 10, "one")
	require.NoError(t, err)
	_, err = uc.Create(ctx, bob, 10, "two")
	require.NoError(t, err)

	got, err := uc.ListByPost(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty, err := uc.ListByPost(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
