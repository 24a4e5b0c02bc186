package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"travelfeed/internal/auth"
	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
	"travelfeed/internal/repository"
)

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users  repository.UserRepository
	codec  auth.TokenCodec
	hasher auth.PasswordHasher
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, codec auth.TokenCodec, hasher auth.PasswordHasher) AuthService {
	return &authService{
		users:  users,
		codec:  codec,
		hasher: hasher,
	}
}

// Register creates a user and logs them in. The token depends only on the email, so it is
// issued before the insert and a stored user always comes back with a token.
func (s *authService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	token, err := s.codec.Issue(email)
	if err != nil {
		if errors.Is(err, auth.ErrUnencodableEmail) {
			return nil, apperrors.ErrInvalidEmail
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user. Unknown email and wrong password are indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}
