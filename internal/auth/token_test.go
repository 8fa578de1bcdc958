package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssueAndValidate(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("super-secret", 0)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}

	issuedAt := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	tok, expiresAt, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if want := issuedAt.Add(7 * 24 * time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expiry mismatch: got %s want %s", expiresAt, want)
	}

	userID, err := svc.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", userID, "user-123")
	}
}

func TestTokenValidateExpired(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}

	issuedAt := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	tok, _, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := svc.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenValidateWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenService("right-secret", time.Hour)
	verifier, _ := NewTokenService("wrong-secret", time.Hour)

	tok, _, err := issuer.Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := verifier.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestTokenValidateRejectsMalformedAndUnsigned(t *testing.T) {
	t.Parallel()

	svc, _ := NewTokenService("k", time.Hour)

	for _, raw := range []string{"", "garbage", "not.a.jwt", strings.Repeat("a", 64)} {
		if _, err := svc.Validate(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u3",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Validate(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestTokenValidateRequiresSubjectAndExpiry(t *testing.T) {
	t.Parallel()

	svc, _ := NewTokenService("k", time.Hour)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u4"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Validate(noExpiry); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without exp, got %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Validate(noSubject); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without sub, got %v", err)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService("   ", time.Hour); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestUserIDContextRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatalf("expected no user id on a bare context")
	}

	ctx := WithUserID(context.Background(), "u5")
	if got, ok := UserIDFromContext(ctx); !ok || got != "u5" {
		t.Fatalf("expected u5, got %q (ok=%v)", got, ok)
	}
}
