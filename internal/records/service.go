package records

import (
	"context"
	"errors"
	"time"

	"hrms.org/internal/audit"
	"hrms.org/internal/auth"
	"hrms.org/internal/ids"
	"hrms.org/internal/obs"
	"hrms.org/internal/validation"
)

// Listing caps.
const (
	listCap       = 100
	directoryCap  = 1000
	attendanceCap = 1000
	recentUsers   = 5
	recentRecords = 30
)

// IdentityReader is the identity access the records service needs.
type IdentityReader interface {
	IdentityByID(ctx context.Context, id string) (auth.Identity, error)
	CountIdentities(ctx context.Context, filter auth.IdentityFilter) (int, error)
	ListIdentities(ctx context.Context, filter auth.IdentityFilter) ([]auth.Identity, error)
}

// Service applies access control to every read and write of owned records.
type Service struct {
	store      Store
	identities IdentityReader
	now        func() time.Time
	newID      func() string
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs Service.
func NewService(store Store, identities IdentityReader, opts ...Option) *Service {
	s := &Service{
		store:      store,
		identities: identities,
		now:        time.Now,
		newID:      ids.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize loads the owner of a record and checks that requester may perform
// action on it. The owner identity is returned on success.
func (s *Service) authorize(ctx context.Context, requester auth.Identity, ownerID string, action auth.Action) (auth.Identity, error) {
	if ownerID == "" {
		return auth.Identity{}, newError(ErrInvalidInput, "user_id is required")
	}
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return auth.Identity{}, err
	}
	if err := s.check(ctx, requester, owner, action); err != nil {
		return auth.Identity{}, err
	}
	return owner, nil
}

func (s *Service) owner(ctx context.Context, ownerID string) (auth.Identity, error) {
	owner, err := s.identities.IdentityByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return auth.Identity{}, errUserNotFound
		}
		return auth.Identity{}, err
	}
	return owner, nil
}

func (s *Service) check(ctx context.Context, requester, owner auth.Identity, action auth.Action) error {
	err := auth.Authorize(auth.RequestFor(requester, owner, action))
	obs.ObserveAccessDecision(string(action), err == nil)
	if err != nil {
		var denial *auth.DenialError
		rule := ""
		if errors.As(err, &denial) {
			rule = denial.Rule
		}
		_ = audit.LogEvent(ctx, "access.denied", map[string]any{
			"action":   string(action),
			"owner_id": owner.ID,
			"rule":     rule,
		})
	}
	return err
}

func (s *Service) validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return newError(ErrInvalidInput, "%v", err)
	}
	return nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// describe replaces a bare store sentinel with a client facing message.
func describe(err error, kind error, msg string) error {
	if err != nil && errors.Is(err, kind) {
		var e *Error
		if errors.As(err, &e) {
			return err
		}
		return newError(kind, "%s", msg)
	}
	return err
}
