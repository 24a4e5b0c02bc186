package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"travelfeed/internal/errors"
	"travelfeed/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest is the body of POST /post/comment.
type CreateCommentRequest struct {
	PostID  uint   `json:"post_id"`
	Comment string `json:"comment"`
}

// CreateCommentResponse is returned after commenting.
type CreateCommentResponse struct {
	Message   string `json:"message"`
	CommentID uint   `json:"comment_id"`
}

// CommentResponse is one comment of a post.
type CommentResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
}

// ListCommentsResponse wraps a post's comments.
type ListCommentsResponse struct {
	Message  string            `json:"message"`
	Comments []CommentResponse `json:"comments"`
}

// DeleteCommentRequest identifies the comment to delete.
type DeleteCommentRequest struct {
	CommentID uint `json:"comment_id"`
}

// Create godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body CreateCommentRequest true "Comment"
// @Success 200 {object} CreateCommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post/comment [post]
func (h *CommentHandler) Create(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	comment, err := h.commentService.Create(c.Request().Context(), userID, req.PostID, req.Comment)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, CreateCommentResponse{
		Message:   "Comment posted successfully!",
		CommentID: comment.ID,
	})
}

// List godoc
// @Summary List comments of a post
// @Tags comments
// @Produce json
// @Security TokenAuth
// @Param post_id query int true "Post ID"
// @Success 200 {object} ListCommentsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comment/list [get]
func (h *CommentHandler) List(c echo.Context) error {
	raw := c.QueryParam("post_id")
	if raw == "" {
		return respondError(c, errors.ErrPostIDRequired)
	}
	postID, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return invalidParam("post_id")
	}

	views, err := h.commentService.List(c.Request().Context(), uint(postID))
	if err != nil {
		return respondError(c, err)
	}

	comments := make([]CommentResponse, 0, len(views))
	for _, v := range views {
		comments = append(comments, CommentResponse{
			ID:        v.ID,
			PostID:    v.PostID,
			UserID:    v.UserID,
			Text:      v.Text,
			CreatedAt: v.CreatedAt,
			Name:      v.AuthorName,
		})
	}

	return c.JSON(http.StatusOK, ListCommentsResponse{
		Message:  "Comments retrieved successfully!",
		Comments: comments,
	})
}

// Delete godoc
// @Summary Delete a comment
// @Description Only the comment's author may delete it.
// @Tags comments
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body DeleteCommentRequest true "Comment to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /comment/delete [post]
func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req DeleteCommentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := h.commentService.Delete(c.Request().Context(), userID, req.CommentID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted successfully!"})
}
