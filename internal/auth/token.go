package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of issued session tokens.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload of a session token.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the verified content of a token.
type Session struct {
	IdentityID string
	Role       Role
	ExpiresAt  time.Time
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService) error

// WithTokenTTL overrides the token lifetime.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) error {
		if ttl <= 0 {
			return fmt.Errorf("%w: token ttl must be positive", ErrInvalidInput)
		}
		s.ttl = ttl
		return nil
	}
}

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewTokenService builds a TokenService signing with secret. There is no
// fallback secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: token secret is required")
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Issue signs a token for identityID carrying role.
func (s *TokenService) Issue(identityID string, role Role) (string, error) {
	if identityID == "" || !role.Valid() {
		return "", fmt.Errorf("%w: token subject and role are required", ErrInvalidInput)
	}
	now := s.now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, algorithm and expiry. A token is expired once the
// current time reaches its exp claim.
func (s *TokenService) Verify(token string) (Session, error) {
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrMissingCredentials
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrMalformedToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrExpiredToken
		}
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Session{}, fmt.Errorf("%w: missing subject or role", ErrMalformedToken)
	}
	return Session{
		IdentityID: claims.Subject,
		Role:       claims.Role,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
