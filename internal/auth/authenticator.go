package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const bearerPrefix = "bearer "

// TokenVerifier verifies session tokens.
type TokenVerifier interface {
	Verify(token string) (Session, error)
}

// Authenticator turns an Authorization header into the stored identity.
// Nothing is cached between calls.
type Authenticator struct {
	tokens           TokenVerifier
	identities       IdentityLookup
	enforceRoleMatch bool
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithRoleMatch controls whether the token role must equal the stored role.
func WithRoleMatch(enforce bool) AuthenticatorOption {
	return func(a *Authenticator) { a.enforceRoleMatch = enforce }
}

// NewAuthenticator builds an Authenticator. Role matching is enforced by default.
func NewAuthenticator(tokens TokenVerifier, identities IdentityLookup, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{tokens: tokens, identities: identities, enforceRoleMatch: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate resolves the identity behind header. Errors are
// ErrMissingCredentials, ErrExpiredToken, ErrMalformedToken,
// ErrIdentityNotFound, or a store failure.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Identity, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return Identity{}, err
	}
	sess, err := a.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	id, err := a.identities.IdentityByID(ctx, sess.IdentityID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("auth: load identity: %w", err)
	}
	if a.enforceRoleMatch && id.Role != sess.Role {
		return Identity{}, fmt.Errorf("%w: role claim does not match identity", ErrMalformedToken)
	}
	return id, nil
}

// ExtractBearerToken returns the token of a "Bearer <token>" header.
func ExtractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", ErrMissingCredentials
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", ErrMissingCredentials
	}
	return token, nil
}
