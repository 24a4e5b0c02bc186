package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"travelfeed/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostResponse is returned after an upload.
type CreatePostResponse struct {
	Message string `json:"message"`
	PostID  uint   `json:"post_id"`
}

// PostResponse is one entry of the feed. Image is an absolute URL or null.
type PostResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Image       *string   `json:"image"`
	Caption     string    `json:"caption"`
	DateCreated time.Time `json:"date_created"`
	Name        string    `json:"name"`
}

// ListPostsResponse wraps the feed.
type ListPostsResponse struct {
	Message string         `json:"message"`
	Posts   []PostResponse `json:"posts"`
}

// DeletePostRequest identifies the post to delete.
type DeletePostRequest struct {
	PostID uint `json:"post_id"`
}

// Upload godoc
// @Summary Create a post
// @Description Multipart form with a caption and an optional photo.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security TokenAuth
// @Param caption formData string true "Caption"
// @Param photo formData file false "Photo"
// @Success 200 {object} CreatePostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post/upload [post]
func (h *PostHandler) Upload(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var upload *service.Upload
	fh, err := c.FormFile("photo")
	switch {
	case err == nil && fh.Filename != "":
		f, err := fh.Open()
		if err != nil {
			return invalidBody()
		}
		defer f.Close()
		upload = &service.Upload{Filename: fh.Filename, Content: f}
	case err == nil, err == http.ErrMissingFile, err == http.ErrNotMultipart:
	default:
		return invalidBody()
	}

	post, err := h.postService.Create(c.Request().Context(), userID, c.FormValue("caption"), upload)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, CreatePostResponse{
		Message: "Post created successfully!",
		PostID:  post.ID,
	})
}

// List godoc
// @Summary List posts
// @Description All posts, newest first, with the author's name and an absolute image URL.
// @Tags posts
// @Produce json
// @Security TokenAuth
// @Success 200 {object} ListPostsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post/list [get]
func (h *PostHandler) List(c echo.Context) error {
	views, err := h.postService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	origin := c.Scheme() + "://" + c.Request().Host
	posts := make([]PostResponse, 0, len(views))
	for _, v := range views {
		var image *string
		if v.Image != nil {
			url := origin + "/" + strings.TrimPrefix(*v.Image, "/")
			image = &url
		}
		posts = append(posts, PostResponse{
			ID:          v.ID,
			UserID:      v.UserID,
			Image:       image,
			Caption:     v.Caption,
			DateCreated: v.CreatedAt,
			Name:        v.AuthorName,
		})
	}

	return c.JSON(http.StatusOK, ListPostsResponse{
		Message: "Posts retrieved successfully!",
		Posts:   posts,
	})
}

// Delete godoc
// @Summary Delete a post
// @Description Only the author may delete a post. Its comments are deleted with it.
// @Tags posts
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body DeletePostRequest true "Post to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post/delete [post]
func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req DeletePostRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := h.postService.Delete(c.Request().Context(), userID, req.PostID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted successfully!"})
}
