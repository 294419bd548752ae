package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var tokenEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokens(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret-test-secret-test-secret", WithTokenClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenIssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: tokenEpoch}
	svc := newTestTokens(t, clock)

	tok, err := svc.Issue("user-1", RoleEmployee)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sess, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sess.IdentityID != "user-1" || sess.Role != RoleEmployee {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !sess.ExpiresAt.Equal(tokenEpoch.Add(DefaultTokenTTL)) {
		t.Fatalf("unexpected expiry %v", sess.ExpiresAt)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	clock := &fakeClock{t: tokenEpoch}
	svc := newTestTokens(t, clock)
	tok, err := svc.Issue("user-1", RoleIntern)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name string
		at   time.Time
		want error
	}{
		{"one second before expiry", tokenEpoch.Add(DefaultTokenTTL - time.Second), nil},
		{"exactly at expiry", tokenEpoch.Add(DefaultTokenTTL), ErrExpiredToken},
		{"one second after expiry", tokenEpoch.Add(DefaultTokenTTL + time.Second), ErrExpiredToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock.t = tc.at
			_, err := svc.Verify(tok)
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	clock := &fakeClock{t: tokenEpoch}
	svc := newTestTokens(t, clock)
	good, _ := svc.Issue("user-1", RoleIntern)

	other, _ := NewTokenService("another-secret", WithTokenClock(clock.Now))
	foreign, _ := other.Issue("user-1", RoleHR)

	claims := Claims{Role: RoleHR, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(tokenEpoch.Add(time.Hour)),
	}}
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-test-secret-test-secret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(tokenEpoch.Add(time.Hour)),
	}).SignedString([]byte("test-secret-test-secret-test-secret"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: RoleHR, RegisteredClaims: jwt.RegisteredClaims{
		Subject: "user-1",
	}}).SignedString([]byte("test-secret-test-secret-test-secret"))

	cases := map[string]string{
		"garbage":         "not.a.jwt",
		"truncated":       good[:len(good)-4],
		"foreign secret":  foreign,
		"hs512 algorithm": hs512,
		"none algorithm":  none,
		"missing role":    noRole,
		"missing exp":     noExp,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(tok)
			if !errors.Is(err, ErrMalformedToken) {
				t.Fatalf("expected ErrMalformedToken, got %v", err)
			}
		})
	}

	if _, err := svc.Verify(""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenService("s", WithTokenTTL(0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
