package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"travelfeed/internal/config"
	"travelfeed/internal/handler"
	authmw "travelfeed/internal/middleware"
)

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Post    *handler.PostHandler
	Comment *handler.CommentHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, gate authmw.Resolver, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	// Multipart overhead on top of the photo itself.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", cfg.MaxUploadBytes+1<<20)))

	e.Validator = NewCustomValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	users := e.Group("/users")
	users.POST("/register", h.Auth.Register)
	users.POST("/login", h.Auth.Login)

	requireAuth := authmw.RequireAuth(gate)

	posts := e.Group("/post", requireAuth)
	posts.POST("/upload", h.Post.Upload)
	posts.GET("/list", h.Post.List)
	posts.POST("/delete", h.Post.Delete)
	posts.POST("/comment", h.Comment.Create)

	comments := e.Group("/comment", requireAuth)
	comments.GET("/list", h.Comment.List)
	comments.POST("/delete", h.Comment.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator reports fields under their JSON names.
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
