package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSigningSecret = "secret"
	testUserID        = "user-123"
	testUserEmail     = "lawyer@example.com"
	testUserRole      = "lawyer"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	clockNow := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte(testSigningSecret),
		Clock:         func() time.Time { return clockNow },
	})
	if err != nil {
		t.Fatalf("failed to construct issuer: %v", err)
	}

	token, expiresAt, err := issuer.Issue(Identity{UserID: testUserID, Email: testUserEmail, Role: testUserRole})
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}
	if !expiresAt.Equal(clockNow.Add(DefaultTokenTTL)) {
		t.Fatalf("expected 7 day expiry, got %s", expiresAt)
	}

	identity, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if identity.UserID != testUserID || identity.Email != testUserEmail || identity.Role != testUserRole {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if identity.TokenID == "" {
		t.Fatalf("expected token id to be populated")
	}
}

func TestTokenIssuerRejectsExpiredToken(t *testing.T) {
	clockNow := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	current := clockNow
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte(testSigningSecret),
		TokenTTL:      time.Hour,
		Clock:         func() time.Time { return current },
	})
	if err != nil {
		t.Fatalf("failed to construct issuer: %v", err)
	}

	token, _, err := issuer.Issue(Identity{UserID: testUserID})
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	current = clockNow.Add(2 * time.Hour)
	if _, err := issuer.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestTokenIssuerRejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte(testSigningSecret)})
	if err != nil {
		t.Fatalf("failed to construct issuer: %v", err)
	}

	now := time.Now()
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: testUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := issuer.Validate(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := issuer.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for empty input, got %v", err)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(TokenIssuerConfig{}); !errors.Is(err, ErrMissingSigningSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestTokenIssuerRequiresUserID(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SigningSecret: []byte(testSigningSecret)})
	if err != nil {
		t.Fatalf("failed to construct issuer: %v", err)
	}
	if _, _, err := issuer.Issue(Identity{}); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected missing user id error, got %v", err)
	}
}
