// Package httpapi exposes the HR service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hrms.org/internal/auth"
	"hrms.org/internal/obs"
	"hrms.org/internal/records"
)

const (
	serviceName = "hrms-api"

	defaultMaxBodyBytes   = 1 << 20
	defaultMaxUploadBytes = 5 << 20
)

// ReadinessChecker reports whether the backing store is reachable.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the services the handlers call.
type Deps struct {
	Auth          *auth.Service
	Authenticator *auth.Authenticator
	Records       *records.Service
	Ready         ReadinessChecker
}

// Option configures API.
type Option func(*API)

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithCORSOrigins sets the allowed browser origins. "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(a *API) { a.origins = origins }
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

// WithMaxUploadBytes caps uploaded files.
func WithMaxUploadBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxUpload = n
		}
	}
}

// API is the HTTP layer.
type API struct {
	auth      *auth.Service
	authn     *auth.Authenticator
	records   *records.Service
	ready     ReadinessChecker
	version   string
	origins   []string
	maxBody   int64
	maxUpload int64
}

// New builds the API. Every field of deps except Ready is required.
func New(deps Deps, opts ...Option) (*API, error) {
	if deps.Auth == nil || deps.Authenticator == nil || deps.Records == nil {
		return nil, errors.New("httpapi: auth, authenticator and records services are required")
	}
	a := &API{
		auth:      deps.Auth,
		authn:     deps.Authenticator,
		records:   deps.Records,
		ready:     deps.Ready,
		version:   "dev",
		maxBody:   defaultMaxBodyBytes,
		maxUpload: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Handler returns the routed and instrumented handler.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, middleware.Recoverer, instrument, Logging, SecurityHeaders, CORS(a.origins))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Handle("/metrics", obs.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"message": "HR Management System API"})
		})

		r.Group(func(r chi.Router) {
			r.Use(bodyLimit(a.maxBody))
			r.Post("/auth/signup/{role}", a.handleSignup)
			r.Post("/auth/login", a.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.withAuth)
			r.Get("/auth/me", a.handleMe)

			r.Group(func(r chi.Router) {
				// multipart framing on top of the file itself
				r.Use(bodyLimit(a.maxUpload + 64<<10))
				r.Post("/upload/profile-picture", a.handleProfilePicture)
				r.Post("/upload/resume", a.handleResume)
			})

			r.Group(func(r chi.Router) {
				r.Use(bodyLimit(a.maxBody))
				a.directoryRoutes(r)
				a.onboardingRoutes(r)
				a.payrollRoutes(r)
				a.performanceRoutes(r)
				a.attendanceRoutes(r)
			})
		})
	})
	return r
}

// Healthz reports liveness.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

// Ready reports whether the store answers a ping.
func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.ready.Ping(ctx); err != nil {
			obs.Logger().Warn("readiness check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
