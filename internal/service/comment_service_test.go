package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
)

func TestCommentService_Create(t *testing.T) {
	dbDown := errors.New("db down")

	tests := []struct {
		name          string
		postID        uint
		text          string
		setupMock     func(*MockCommentRepository, *MockPostRepository)
		expectedError error
	}{
		{
			name:   "comment on existing post",
			postID: 1,
			text:   "nice",
			setupMock: func(c *MockCommentRepository, p *MockPostRepository) {
				p.On("FindByID", mock.Anything, uint(1)).Return(&model.Post{ID: 1, UserID: 4}, nil)
				c.On("Create", mock.Anything, mock.MatchedBy(func(cm *model.Comment) bool {
					return cm.PostID == 1 && cm.UserID == 2 && cm.Text == "nice"
				})).Run(func(args mock.Arguments) { args.Get(1).(*model.Comment).ID = 1 }).Return(nil)
			},
		},
		{
			name:          "missing post id",
			postID:        0,
			text:          "nice",
			setupMock:     func(*MockCommentRepository, *MockPostRepository) {},
			expectedError: apperrors.ErrPostIDRequired,
		},
		{
			name:          "empty text",
			postID:        1,
			text:          " ",
			setupMock:     func(*MockCommentRepository, *MockPostRepository) {},
			expectedError: apperrors.ErrCommentRequired,
		},
		{
			name:   "post does not exist",
			postID: 42,
			text:   "hi",
			setupMock: func(_ *MockCommentRepository, p *MockPostRepository) {
				p.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrPostNotFound,
		},
		{
			name:   "store failure",
			postID: 1,
			text:   "hi",
			setupMock: func(c *MockCommentRepository, p *MockPostRepository) {
				p.On("FindByID", mock.Anything, uint(1)).Return(&model.Post{ID: 1}, nil)
				c.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(dbDown)
			},
			expectedError: dbDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := new(MockCommentRepository)
			posts := new(MockPostRepository)
			tt.setupMock(comments, posts)
			svc := NewCommentService(comments, posts, nil, time.Minute)

			comment, err := svc.Create(context.Background(), 2, tt.postID, tt.text)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, comment)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(1), comment.ID)
			}
			comments.AssertExpectations(t)
			posts.AssertExpectations(t)
		})
	}
}

func TestCommentService_List(t *testing.T) {
	comments := new(MockCommentRepository)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	comments.On("ListByPostWithAuthor", mock.Anything, uint(1)).Return([]model.Comment{
		{ID: 1, PostID: 1, UserID: 2, Text: "nice", CreatedAt: at, User: model.User{Name: "Alice"}},
	}, nil)

	svc := NewCommentService(comments, nil, nil, time.Minute)

	views, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []CommentView{{ID: 1, PostID: 1, UserID: 2, Text: "nice", CreatedAt: at, AuthorName: "Alice"}}, views)

	_, err = svc.List(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrPostIDRequired)
}

func TestCommentService_Delete(t *testing.T) {
	tests := []struct {
		name          string
		userID        uint
		commentID     uint
		setupMock     func(*MockCommentRepository)
		expectedError error
	}{
		{
			name:      "owner deletes",
			userID:    2,
			commentID: 5,
			setupMock: func(c *MockCommentRepository) {
				c.On("FindByID", mock.Anything, uint(5)).Return(&model.Comment{ID: 5, PostID: 1, UserID: 2}, nil)
				c.On("Delete", mock.Anything, uint(5)).Return(nil)
			},
		},
		{
			name:          "missing id",
			commentID:     0,
			setupMock:     func(*MockCommentRepository) {},
			expectedError: apperrors.ErrCommentIDRequired,
		},
		{
			name:      "not found before forbidden",
			userID:    3,
			commentID: 77,
			setupMock: func(c *MockCommentRepository) {
				c.On("FindByID", mock.Anything, uint(77)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrCommentNotFound,
		},
		{
			name:      "non owner",
			userID:    3,
			commentID: 5,
			setupMock: func(c *MockCommentRepository) {
				c.On("FindByID", mock.Anything, uint(5)).Return(&model.Comment{ID: 5, UserID: 2}, nil)
			},
			expectedError: apperrors.ErrForbiddenComment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := new(MockCommentRepository)
			tt.setupMock(comments)
			svc := NewCommentService(comments, nil, nil, time.Minute)

			err := svc.Delete(context.Background(), tt.userID, tt.commentID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			comments.AssertExpectations(t)
		})
	}
}
