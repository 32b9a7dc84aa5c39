package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "token"

var (
	ErrMissingSessionToken    = errors.New("session validator: token required")
	ErrRevokedSessionToken    = errors.New("session validator: token revoked")
	ErrMissingTokenValidator  = errors.New("session validator: token issuer required")
	errRevocationLookupFailed = errors.New("session validator: revocation lookup failed")
)

// TokenValidator validates raw session tokens.
type TokenValidator interface {
	Validate(token string) (Identity, error)
}

// RevocationChecker reports whether a token id was revoked before its expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionValidatorConfig describes how requests are authenticated.
type SessionValidatorConfig struct {
	Tokens      TokenValidator
	Revocations RevocationChecker
	CookieName  string
}

// SessionValidator authenticates requests from the session cookie or a bearer header.
type SessionValidator struct {
	tokens      TokenValidator
	revocations RevocationChecker
	cookieName  string
}

// NewSessionValidator constructs a validator with the provided configuration.
func NewSessionValidator(cfg SessionValidatorConfig) (*SessionValidator, error) {
	if cfg.Tokens == nil {
		return nil, ErrMissingTokenValidator
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &SessionValidator{
		tokens:      cfg.Tokens,
		revocations: cfg.Revocations,
		cookieName:  cookieName,
	}, nil
}

// CookieName returns the cookie name configured for session lookups.
func (v *SessionValidator) CookieName() string {
	return v.cookieName
}

// TokenFromRequest returns the raw session token, preferring the cookie over the header.
func (v *SessionValidator) TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie != nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// ValidateRequest extracts the session token from the request and validates it.
func (v *SessionValidator) ValidateRequest(r *http.Request) (Identity, error) {
	token := v.TokenFromRequest(r)
	if token == "" {
		return Identity{}, ErrMissingSessionToken
	}
	identity, err := v.tokens.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	if v.revocations != nil && identity.TokenID != "" {
		revoked, err := v.revocations.IsRevoked(r.Context(), identity.TokenID)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %w", errRevocationLookupFailed, err)
		}
		if revoked {
			return Identity{}, ErrRevokedSessionToken
		}
	}
	return identity, nil
}
