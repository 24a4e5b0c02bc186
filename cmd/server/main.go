package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "travelfeed/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"travelfeed/internal/auth"
	"travelfeed/internal/cache"
	"travelfeed/internal/config"
	"travelfeed/internal/db"
	"travelfeed/internal/handler"
	"travelfeed/internal/repository"
	"travelfeed/internal/router"
	"travelfeed/internal/service"
	"travelfeed/internal/storage"
)

// @title TravelFeed API
// @version 1.0
// @description Photo feed API with posts, comments, and token authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description The raw token returned by /users/register or /users/login, without a scheme prefix.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.TokenSecret == "change-me" {
		log.Println("WARNING: TOKEN_SECRET is the built-in default; set it before exposing this server")
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Printf("database close: %v", err)
		}
	}()

	switch {
	case cfg.DBDriver == config.DriverMySQL && cfg.RunMigrations:
		if err := db.Migrate(cfg.DatabaseDSN); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("Database migrations applied")
	case cfg.DBDriver == config.DriverSQLite:
		if err := db.AutoMigrate(gormDB); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if !cacheClient.Enabled() {
		log.Println("REDIS_ADDR not set, listings are served uncached")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize auth components
	codec, err := auth.NewTokenCodec(cfg.TokenFormat, auth.StaticSecret(cfg.TokenSecret))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		log.Fatalf("password hasher: %v", err)
	}
	gate := auth.NewGate(codec, userRepo)

	// Attachments
	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}
	janitor := storage.NewJanitor(store, 64)
	defer janitor.Close()

	// Initialize services
	authService := service.NewAuthService(userRepo, codec, hasher)
	postService := service.NewPostService(postRepo, store, janitor, cacheClient, cfg.CacheTTL)
	commentService := service.NewCommentService(commentRepo, postRepo, cacheClient, cfg.CacheTTL)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, gate, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Post:    handler.NewPostHandler(postService),
		Comment: handler.NewCommentHandler(commentService),
	})

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
