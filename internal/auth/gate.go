package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "travelfeed/internal/errors"
	"travelfeed/internal/model"
)

// UserFinder is the slice of the user repository the gate needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Gate turns a raw Authorization value into the id of an existing user.
// Every call parses the token and looks the user up again; nothing is cached.
type Gate struct {
	codec TokenCodec
	users UserFinder
}

// NewGate creates a gate.
func NewGate(codec TokenCodec, users UserFinder) *Gate {
	return &Gate{codec: codec, users: users}
}

// Resolve returns the user id for credential, or one of the apperrors credential errors.
// Store failures are returned wrapped and map to 500.
func (g *Gate) Resolve(ctx context.Context, credential string) (uint, error) {
	if credential == "" {
		return 0, apperrors.ErrMissingCredential
	}

	identity, err := g.codec.Parse(credential)
	switch {
	case err == nil:
	case errors.Is(err, ErrBadSecret):
		return 0, apperrors.ErrInvalidCredential
	case errors.Is(err, ErrExpired):
		return 0, apperrors.ErrCredentialExpired
	default:
		return 0, apperrors.ErrMalformedToken
	}

	user, err := g.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrUnknownPrincipal
		}
		return 0, fmt.Errorf("resolve principal: %w", err)
	}
	return user.ID, nil
}
