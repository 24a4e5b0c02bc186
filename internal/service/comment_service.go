package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"travelfeed/internal/cache"
	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
	"travelfeed/internal/repository"
)

func commentListGenKey(postID uint) string {
	return fmt.Sprintf("comments:post:%d:gen", postID)
}

func commentListCacheKey(postID uint, gen int64) string {
	return fmt.Sprintf("comments:post:%d:list:%d", postID, gen)
}

// CommentService handles comment operations.
type CommentService interface {
	Create(ctx context.Context, userID, postID uint, text string) (*model.Comment, error)
	List(ctx context.Context, postID uint) ([]CommentView, error)
	Delete(ctx context.Context, userID, commentID uint) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	cache    *cache.Client
	cacheTTL time.Duration
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, cache *cache.Client, cacheTTL time.Duration) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Create adds a comment to an existing post.
func (s *commentService) Create(ctx context.Context, userID, postID uint, text string) (*model.Comment, error) {
	if postID == 0 {
		return nil, apperrors.ErrPostIDRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrCommentRequired
	}

	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	comment := &model.Comment{PostID: postID, UserID: userID, Text: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.cache.Bump(ctx, commentListGenKey(postID))
	return comment, nil
}

// List returns a post's comments newest first. An unknown post has no comments.
func (s *commentService) List(ctx context.Context, postID uint) ([]CommentView, error) {
	if postID == 0 {
		return nil, apperrors.ErrPostIDRequired
	}

	gen, cacheable := s.cache.Generation(ctx, commentListGenKey(postID))
	key := commentListCacheKey(postID, gen)
	var cached []CommentView
	if cacheable && s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	comments, err := s.comments.ListByPostWithAuthor(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, newCommentView(c))
	}

	if cacheable {
		s.cache.SetJSON(ctx, key, views, s.cacheTTL)
	}
	return views, nil
}

// Delete removes a comment written by userID. A missing comment is reported before an
// ownership mismatch.
func (s *commentService) Delete(ctx context.Context, userID, commentID uint) error {
	if commentID == 0 {
		return apperrors.ErrCommentIDRequired
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommentNotFound
		}
		return fmt.Errorf("find comment: %w", err)
	}

	if comment.UserID != userID {
		return apperrors.ErrForbiddenComment
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	s.cache.Bump(ctx, commentListGenKey(comment.PostID))
	return nil
}
