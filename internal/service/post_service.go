package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"travelfeed/internal/cache"
	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
	"travelfeed/internal/repository"
	"travelfeed/internal/storage"
)

// postListGenKey counts post writes. Cached listings are filed under the generation read
// before the query, so a fill that raced a write is never served.
const postListGenKey = "posts:gen"

func postListCacheKey(gen int64) string {
	return fmt.Sprintf("posts:list:%d", gen)
}

// Upload is an attachment received with a new post.
type Upload struct {
	Filename string
	Content  io.Reader
}

// AttachmentCleaner disposes of attachments whose posts are gone.
type AttachmentCleaner interface {
	Enqueue(ctx context.Context, storedPath string)
}

// PostService handles post operations.
type PostService interface {
	Create(ctx context.Context, userID uint, caption string, upload *Upload) (*model.Post, error)
	List(ctx context.Context) ([]PostView, error)
	Delete(ctx context.Context, userID, postID uint) error
}

type postService struct {
	posts       repository.PostRepository
	attachments storage.AttachmentStore
	cleaner     AttachmentCleaner
	cache       *cache.Client
	cacheTTL    time.Duration
}

// NewPostService creates a new post service. cleaner may be nil, in which case attachments
// of deleted posts are kept on disk.
func NewPostService(
	posts repository.PostRepository,
	attachments storage.AttachmentStore,
	cleaner AttachmentCleaner,
	cache *cache.Client,
	cacheTTL time.Duration,
) PostService {
	return &postService{
		posts:       posts,
		attachments: attachments,
		cleaner:     cleaner,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// Create stores the optional attachment and then the post row. If the insert fails the
// attachment is removed again.
func (s *postService) Create(ctx context.Context, userID uint, caption string, upload *Upload) (*model.Post, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, apperrors.ErrCaptionRequired
	}

	post := &model.Post{UserID: userID, Caption: caption}

	if upload != nil {
		stored, err := s.attachments.Save(ctx, upload.Filename, upload.Content)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, apperrors.ErrAttachmentTooLarge
			}
			return nil, fmt.Errorf("store attachment: %w", err)
		}
		post.Image = &stored
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.Image != nil {
			_ = s.attachments.Remove(ctx, *post.Image)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.cache.Bump(ctx, postListGenKey)
	return post, nil
}

// List returns every post newest first.
func (s *postService) List(ctx context.Context) ([]PostView, error) {
	gen, cacheable := s.cache.Generation(ctx, postListGenKey)
	key := postListCacheKey(gen)
	var cached []PostView
	if cacheable && s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := s.posts.ListWithAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}

	if cacheable {
		s.cache.SetJSON(ctx, key, views, s.cacheTTL)
	}
	return views, nil
}

// Delete removes a post owned by userID together with its comments.
// A missing post is reported before an ownership mismatch.
func (s *postService) Delete(ctx context.Context, userID, postID uint) error {
	if postID == 0 {
		return apperrors.ErrPostIDRequired
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("find post: %w", err)
	}

	if post.UserID != userID {
		return apperrors.ErrForbiddenPost
	}

	err = s.posts.WithTransaction(ctx, func(ctx context.Context, posts repository.PostRepository, comments repository.CommentRepository) error {
		if _, err := comments.DeleteByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return posts.Delete(ctx, postID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race with another delete of the same post.
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.cache.Bump(ctx, postListGenKey, commentListGenKey(postID))

	if post.Image != nil && s.cleaner != nil {
		s.cleaner.Enqueue(ctx, *post.Image)
	}
	return nil
}
