package httpapi

import (
	"errors"
	"net/http"

	"hrms.org/internal/audit"
	"hrms.org/internal/auth"
	"hrms.org/internal/obs"
)

// withAuth resolves the bearer token to a stored identity on every request.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authn.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			reason := rejectReason(err)
			obs.ObserveAuthFailure(reason)
			_ = audit.LogEvent(r.Context(), "auth.rejected", map[string]any{
				"reason": reason,
				"path":   r.URL.Path,
			})
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
	})
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, auth.ErrIdentityNotFound):
		return "identity_not_found"
	}
	return "error"
}

// requester returns the identity attached by withAuth.
func requester(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}
