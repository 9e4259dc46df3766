// Package token issues and verifies the signed session tokens that are
// the sole authentication factor for the listd API.
//
// Tokens are HS256 JWTs carrying subject, issued-at, and expiry claims.
// They are self-contained: nothing is persisted server-side, so a token
// cannot be revoked before it expires, and rotating the signing secret
// invalidates every outstanding token.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultLifetime is the validity window of an issued token.
const DefaultLifetime = 7 * 24 * time.Hour

// Verification errors. The HTTP layer must not let callers distinguish
// the two; they exist for logging and tests.
var (
	// ErrBadSignature covers every verification failure that is not an
	// expiry: altered payload, wrong secret, wrong signing method,
	// malformed token.
	ErrBadSignature = errors.New("token signature invalid")

	// ErrExpired means the token verified but its expiry has passed.
	ErrExpired = errors.New("token expired")
)

// Config holds the immutable issuer configuration. The secret and
// lifetime are fixed at construction; verification never reads ambient
// process state.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte

	// Lifetime is the validity window of issued tokens.
	// Default: 7 days.
	Lifetime time.Duration

	// now allows tests to control the clock.
	now func() time.Time
}

// Issuer creates and verifies session tokens.
type Issuer struct {
	cfg Config
}

// New creates an Issuer. The secret must be non-empty: there is no
// fallback value, a missing secret is a startup error.
func New(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	if cfg.Lifetime == 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Issuer{cfg: cfg}, nil
}

// Issue creates a signed token for the given user ID, valid from now
// until now + lifetime.
func (i *Issuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("token: subject is required")
	}

	now := i.cfg.now()
	claims := jwtlib.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(i.cfg.Lifetime)),
	}

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("token: signing: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of a token and returns its
// subject. The signature covers the full claim set, so any client-side
// mutation fails with ErrBadSignature.
func (i *Issuer) Verify(tokenStr string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(tokenStr, &jwtlib.RegisteredClaims{},
		func(t *jwtlib.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return i.cfg.Secret, nil
		},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(i.cfg.now),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrBadSignature
	}

	claims, ok := parsed.Claims.(*jwtlib.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrBadSignature
	}

	return claims.Subject, nil
}

// Lifetime returns the configured token lifetime.
func (i *Issuer) Lifetime() time.Duration {
	return i.cfg.Lifetime
}
