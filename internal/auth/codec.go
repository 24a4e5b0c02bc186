package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenTTL is how long an issued bearer token stays valid. It is fixed.
const TokenTTL = 10600 * time.Second

var (
	// ErrMalformedToken is returned when a token cannot be decoded into its fields.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSecret is returned when a token was not produced with the expected secret.
	ErrBadSecret = errors.New("token secret mismatch")
	// ErrExpired is returned when a token is older than TokenTTL.
	ErrExpired = errors.New("token expired")
	// ErrUnencodableEmail is returned by Issue for an email containing the field delimiter.
	// Such a token could be issued but never parsed back.
	ErrUnencodableEmail = errors.New("email contains the token delimiter")
)

// Identity is what a bearer token asserts.
type Identity struct {
	Email    string
	IssuedAt time.Time
}

// TokenCodec issues and parses stateless bearer tokens.
type TokenCodec interface {
	Issue(email string) (string, error)
	Parse(token string) (*Identity, error)
}

// SecretSource supplies the shared secret a codec embeds in or signs tokens with.
type SecretSource interface {
	Secret() string
}

// StaticSecret is a SecretSource backed by a fixed value, typically read from config.
type StaticSecret string

// Secret implements SecretSource.
func (s StaticSecret) Secret() string { return string(s) }

// NewTokenCodec builds the codec for a configured format ("legacy" or "jwt").
func NewTokenCodec(format string, secret SecretSource) (TokenCodec, error) {
	switch format {
	case "", "legacy":
		return NewLegacyCodec(secret), nil
	case "jwt":
		return NewJWTCodec(secret), nil
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

const tokenDelimiter = ":"

// LegacyCodec encodes "email:unix_ts:secret" with standard base64. It is an encoding,
// not a signature: anyone holding the secret can mint tokens for any email.
type LegacyCodec struct {
	secret SecretSource
	now    func() time.Time
}

// NewLegacyCodec creates a codec reading the secret from src.
func NewLegacyCodec(src SecretSource) *LegacyCodec {
	return &LegacyCodec{secret: src, now: time.Now}
}

// WithClock replaces the codec clock. Used by tests.
func (c *LegacyCodec) WithClock(now func() time.Time) *LegacyCodec {
	c.now = now
	return c
}

// Issue fails only for emails that would not round-trip through Parse.
func (c *LegacyCodec) Issue(email string) (string, error) {
	if strings.Contains(email, tokenDelimiter) {
		return "", ErrUnencodableEmail
	}
	raw := strings.Join([]string{email, strconv.FormatInt(c.now().Unix(), 10), c.secret.Secret()}, tokenDelimiter)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Parse checks encoding and field count first, then the secret, then the age.
func (c *LegacyCodec) Parse(token string) (*Identity, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	fields := strings.Split(string(decoded), tokenDelimiter)
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedToken, len(fields))
	}

	if fields[2] != c.secret.Secret() {
		return nil, ErrBadSecret
	}

	issued, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", ErrMalformedToken)
	}

	issuedAt := time.Unix(issued, 0)
	if c.now().Sub(issuedAt) > TokenTTL {
		return nil, ErrExpired
	}

	return &Identity{Email: fields[0], IssuedAt: issuedAt}, nil
}
