package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a signed token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTCodec issues HS256 tokens with the same email/issue-time contract and lifetime as
// LegacyCodec, but the secret never leaves the server.
type JWTCodec struct {
	secret SecretSource
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTCodec creates a signed-token codec keyed by src.
func NewJWTCodec(src SecretSource) *JWTCodec {
	return &JWTCodec{
		secret: src,
		now:    time.Now,
		// Age is checked against the codec clock below, not by the parser.
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation()),
	}
}

// WithClock replaces the codec clock. Used by tests.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	c.now = now
	return c
}

// Issue signs a token for email.
func (c *JWTCodec) Issue(email string) (string, error) {
	issued := c.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secret.Secret()))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and age of a token.
func (c *JWTCodec) Parse(token string) (*Identity, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(c.secret.Secret()), nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrBadSecret
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.Email == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing claims", ErrMalformedToken)
	}

	issued := claims.IssuedAt.Time
	if c.now().Sub(issued) > TokenTTL {
		return nil, ErrExpired
	}

	return &Identity{Email: claims.Email, IssuedAt: issued}, nil
}
