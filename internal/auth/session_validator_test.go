package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[tokenID], nil
}

func newTestValidator(t *testing.T, revocations RevocationChecker) (*SessionValidator, *TokenIssuer) {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte(testSigningSecret)})
	if err != nil {
		t.Fatalf("failed to construct issuer: %v", err)
	}
	validator, err := NewSessionValidator(SessionValidatorConfig{Tokens: issuer, Revocations: revocations})
	if err != nil {
		t.Fatalf("failed to construct validator: %v", err)
	}
	return validator, issuer
}

func TestSessionValidatorValidateRequestUsesCookie(t *testing.T) {
	validator, issuer := newTestValidator(t, nil)
	token, _, err := issuer.Issue(Identity{UserID: testUserID, Email: testUserEmail})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/cases", http.NoBody)
	request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	identity, err := validator.ValidateRequest(request)
	if err != nil {
		t.Fatalf("expected cookie session to validate: %v", err)
	}
	if identity.UserID != testUserID {
		t.Fatalf("unexpected user id %s", identity.UserID)
	}
}

func TestSessionValidatorValidateRequestUsesBearerHeader(t *testing.T) {
	validator, issuer := newTestValidator(t, nil)
	token, _, err := issuer.Issue(Identity{UserID: testUserID})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/cases", http.NoBody)
	request.Header.Set("Authorization", "Bearer "+token)

	if _, err := validator.ValidateRequest(request); err != nil {
		t.Fatalf("expected bearer session to validate: %v", err)
	}
}

func TestSessionValidatorRejectsMissingToken(t *testing.T) {
	validator, _ := newTestValidator(t, nil)
	request := httptest.NewRequest(http.MethodGet, "/api/cases", http.NoBody)
	request.Header.Set("Authorization", "Basic abc")

	if _, err := validator.ValidateRequest(request); !errors.Is(err, ErrMissingSessionToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestSessionValidatorRejectsRevokedToken(t *testing.T) {
	revocations := stubRevocations{revoked: map[string]bool{}}
	validator, issuer := newTestValidator(t, revocations)
	token, _, err := issuer.Issue(Identity{UserID: testUserID})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	identity, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	revocations.revoked[identity.TokenID] = true

	request := httptest.NewRequest(http.MethodGet, "/api/cases", http.NoBody)
	request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	if _, err := validator.ValidateRequest(request); !errors.Is(err, ErrRevokedSessionToken) {
		t.Fatalf("expected revoked token error, got %v", err)
	}
}

func TestSessionValidatorSurfacesRevocationLookupFailure(t *testing.T) {
	lookupErr := errors.New("redis down")
	validator, issuer := newTestValidator(t, stubRevocations{err: lookupErr})
	token, _, err := issuer.Issue(Identity{UserID: testUserID})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/cases", http.NoBody)
	request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	if _, err := validator.ValidateRequest(request); !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to be wrapped, got %v", err)
	}
}

func TestNewSessionValidatorRequiresTokens(t *testing.T) {
	if _, err := NewSessionValidator(SessionValidatorConfig{}); !errors.Is(err, ErrMissingTokenValidator) {
		t.Fatalf("expected missing validator error, got %v", err)
	}
}
