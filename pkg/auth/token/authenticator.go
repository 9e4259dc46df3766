package token

import (
	"context"
	"net/http"
	"strings"

	"github.com/listd/listd/pkg/auth"
)

// Authenticator adapts an Issuer to the auth.Authenticator gate contract.
type Authenticator struct {
	issuer *Issuer
}

// NewAuthenticator creates a bearer-token authenticator backed by issuer.
func NewAuthenticator(issuer *Issuer) *Authenticator {
	return &Authenticator{issuer: issuer}
}

// Authenticate extracts a bearer token from the Authorization header and
// verifies it.
//
// Decision outcomes:
//   - Abstain: no Authorization header or not a Bearer scheme
//   - No: bearer token present but invalid or expired
//   - Yes: valid token with the subject as the caller identity
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	// Must be Bearer token.
	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Result{Decision: auth.Abstain}
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		return auth.Result{Decision: auth.No, Err: auth.ErrInvalidToken}
	}

	subject, err := a.issuer.Verify(tokenStr)
	if err != nil {
		// Expired and tampered tokens are rejected identically.
		return auth.Result{Decision: auth.No, Err: auth.ErrInvalidToken}
	}

	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: subject},
	}
}
