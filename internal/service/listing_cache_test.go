package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"travelfeed/internal/cache"
	"travelfeed/internal/db/dbtest"
	"travelfeed/internal/model"
	"travelfeed/internal/repository"
)

type cachedStore struct {
	db       *gorm.DB
	posts    repository.PostRepository
	comments repository.CommentRepository
	cache    *cache.Client
	redis    *miniredis.Miniredis
	userID   uint
}

func newCachedStore(t *testing.T) *cachedStore {
	t.Helper()

	gormDB := dbtest.New(t)
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	user := &model.User{Name: "A", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repository.NewUserRepository(gormDB).Create(context.Background(), user))

	return &cachedStore{
		db:       gormDB,
		posts:    repository.NewPostRepository(gormDB),
		comments: repository.NewCommentRepository(gormDB),
		cache:    client,
		redis:    mr,
		userID:   user.ID,
	}
}

// slowListPosts runs afterList once, after the listing query has returned and before
// the caller gets to cache the result.
type slowListPosts struct {
	repository.PostRepository
	afterList func()
}

func (r *slowListPosts) ListWithAuthor(ctx context.Context) ([]model.Post, error) {
	posts, err := r.PostRepository.ListWithAuthor(ctx)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return posts, err
}

type slowListComments struct {
	repository.CommentRepository
	afterList func()
}

func (r *slowListComments) ListByPostWithAuthor(ctx context.Context, postID uint) ([]model.Comment, error) {
	comments, err := r.CommentRepository.ListByPostWithAuthor(ctx, postID)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return comments, err
}

func captions(views []PostView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Caption)
	}
	return out
}

func TestPostService_ListCache(t *testing.T) {
	s := newCachedStore(t)
	ctx := context.Background()
	svc := NewPostService(s.posts, nil, nil, s.cache, time.Minute)

	first, err := svc.Create(ctx, s.userID, "one", nil)
	require.NoError(t, err)

	views, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, captions(views))

	// A row removed behind the service's back stays visible: the listing is a cache hit.
	require.NoError(t, s.db.Delete(&model.Post{}, first.ID).Error)
	views, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, captions(views))

	second, err := svc.Create(ctx, s.userID, "two", nil)
	require.NoError(t, err)
	views, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, captions(views), "create invalidates the listing")

	require.NoError(t, svc.Delete(ctx, s.userID, second.ID))
	views, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, views, "delete invalidates the listing")
}

func TestPostService_ListCache_WriteDuringRead(t *testing.T) {
	s := newCachedStore(t)
	ctx := context.Background()
	writer := NewPostService(s.posts, nil, nil, s.cache, time.Minute)

	slow := &slowListPosts{PostRepository: s.posts}
	reader := NewPostService(slow, nil, nil, s.cache, time.Minute)

	slow.afterList = func() {
		_, err := writer.Create(ctx, s.userID, "late", nil)
		require.NoError(t, err)
	}
	views, err := reader.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, views, "the racing read saw the table before the insert")

	views, err = reader.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, captions(views))

	doomed := views[0].ID
	s.redis.FlushAll()
	slow.afterList = func() {
		require.NoError(t, writer.Delete(ctx, s.userID, doomed))
	}
	views, err = reader.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	views, err = reader.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, views, "a deleted post is not served from a fill that raced the delete")
}

func TestPostService_ListCache_RedisDown(t *testing.T) {
	s := newCachedStore(t)
	ctx := context.Background()
	svc := NewPostService(s.posts, nil, nil, s.cache, time.Minute)

	_, err := svc.Create(ctx, s.userID, "one", nil)
	require.NoError(t, err)

	s.redis.Close()

	views, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, captions(views))
}

func TestCommentService_ListCache(t *testing.T) {
	s := newCachedStore(t)
	ctx := context.Background()
	posts := NewPostService(s.posts, nil, nil, s.cache, time.Minute)
	post, err := posts.Create(ctx, s.userID, "p", nil)
	require.NoError(t, err)

	slow := &slowListComments{CommentRepository: s.comments}
	svc := NewCommentService(slow, s.posts, s.cache, time.Minute)

	first, err := svc.Create(ctx, s.userID, post.ID, "first")
	require.NoError(t, err)

	views, err := svc.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	require.NoError(t, s.db.Delete(&model.Comment{}, first.ID).Error)
	views, err = svc.List(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1, "cache hit")

	s.redis.FlushAll()
	slow.afterList = func() {
		_, err := svc.Create(ctx, s.userID, post.ID, "racing")
		require.NoError(t, err)
	}
	_, err = svc.List(ctx, post.ID)
	require.NoError(t, err)

	views, err = svc.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "racing", views[0].Text)

	require.NoError(t, svc.Delete(ctx, s.userID, views[0].ID))
	views, err = svc.List(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = svc.Create(ctx, s.userID, post.ID, "again")
	require.NoError(t, err)
	_, err = svc.List(ctx, post.ID)
	require.NoError(t, err)
	require.NoError(t, posts.Delete(ctx, s.userID, post.ID))
	views, err = svc.List(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, views, "deleting the post invalidates its comment listing")
}
