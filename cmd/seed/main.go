package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"travelfeed/internal/auth"
	"travelfeed/internal/config"
	"travelfeed/internal/db"
	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/repository"
	"travelfeed/internal/service"
)

// SeedUser is one demo account with the captions of the posts it should own.
type SeedUser struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Posts    []string `json:"posts"`
}

var defaultUsers = []SeedUser{
	{Name: "Alice", Email: "alice@example.com", Password: "alice", Posts: []string{"Sunrise over the harbour", "Street food tour"}},
	{Name: "Bob", Email: "bob@example.com", Password: "bob", Posts: []string{"Hiking the ridge"}},
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(gormDB)
	log.Println("Connected to database")

	if cfg.DBDriver == config.DriverMySQL {
		err = db.Migrate(cfg.DatabaseDSN)
	} else {
		err = db.AutoMigrate(gormDB)
	}
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users := defaultUsers
	if src := os.Getenv("SEED_SOURCE"); src != "" {
		log.Printf("Loading seed data from: %s", src)
		users, err = loadSeedUsers(src)
		if err != nil {
			log.Fatalf("Failed to load seed data: %v", err)
		}
	}
	log.Printf("Seeding %d users", len(users))

	codec, err := auth.NewTokenCodec(cfg.TokenFormat, auth.StaticSecret(cfg.TokenSecret))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		log.Fatalf("password hasher: %v", err)
	}

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	authService := service.NewAuthService(userRepo, codec, hasher)
	// Seeded posts carry no photo, so no attachment store is needed.
	postService := service.NewPostService(postRepo, nil, nil, nil, 0)

	created, existing, posts, err := seedUsers(context.Background(), authService, postService, users)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users reused: %d", existing)
	log.Printf("  - Posts created: %d", posts)
}

// loadSeedUsers reads seed data from an http(s) URL or a local file.
func loadSeedUsers(src string) ([]SeedUser, error) {
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(src)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch seed data: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open seed file: %w", err)
		}
		r = f
	}
	defer r.Close()

	var users []SeedUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return users, nil
}

// seedUsers registers each user, or logs in when the email is already taken, then creates
// its posts. Running it twice duplicates posts but never users.
func seedUsers(ctx context.Context, authSvc service.AuthService, postSvc service.PostService, users []SeedUser) (created, existing, posts int, err error) {
	for _, u := range users {
		res, err := authSvc.Register(ctx, u.Name, u.Email, u.Password)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			res, err = authSvc.Login(ctx, u.Email, u.Password)
			if err != nil {
				return created, existing, posts, fmt.Errorf("log in %s: %w", u.Email, err)
			}
			existing++
		default:
			return created, existing, posts, fmt.Errorf("register %s: %w", u.Email, err)
		}

		for _, caption := range u.Posts {
			if _, err := postSvc.Create(ctx, res.User.ID, caption, nil); err != nil {
				return created, existing, posts, fmt.Errorf("post for %s: %w", u.Email, err)
			}
			posts++
		}
	}
	return created, existing, posts, nil
}
