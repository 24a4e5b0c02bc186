package service

import (
	"time"

	"travelfeed/internal/model"
)

// PostView is a post annotated with its author's display name.
type PostView struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Image      *string   `json:"image"`
	Caption    string    `json:"caption"`
	CreatedAt  time.Time `json:"date_created"`
	AuthorName string    `json:"name"`
}

// CommentView is a comment annotated with the commenter's display name.
type CommentView struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	UserID     uint      `json:"user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"name"`
}

func newPostView(p model.Post) PostView {
	return PostView{
		ID:         p.ID,
		UserID:     p.UserID,
		Image:      p.Image,
		Caption:    p.Caption,
		CreatedAt:  p.CreatedAt,
		AuthorName: p.User.Name,
	}
}

func newCommentView(c model.Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
		AuthorName: c.User.Name,
	}
}
