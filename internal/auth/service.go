package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hrms.org/internal/ids"
	"hrms.org/internal/obs"
)

// Service implements signup, login and profile uploads over an IdentityStore.
type Service struct {
	store  IdentityStore
	hasher *Hasher
	tokens *TokenService
	now    func() time.Time
	newID  func() string
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithIDGenerator overrides identity id generation.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.newID = fn
		}
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(store IdentityStore, hasher *Hasher, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if store == nil || hasher == nil || tokens == nil {
		return nil, errors.New("auth: store, hasher and tokens are required")
	}
	svc := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		newID:  ids.NewIdentityID,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// SignupInput carries the validated signup payload.
type SignupInput struct {
	Role              Role
	Email             string
	Password          string
	FullName          string
	PhoneNumber       string
	Gender            string
	DateOfBirth       string
	Address           string
	PreferredLanguage string
	Profile           Profile
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new identity and issues its first token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	if !in.Role.Valid() {
		return AuthResult{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	email := NormalizeEmail(in.Email)
	if email == "" {
		return AuthResult{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := s.store.IdentityByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrIdentityNotFound) {
		return AuthResult{}, err
	}

	profile := onlyRoleFields(in.Role, in.Profile)
	if in.Role == RoleEmployee && profile.EmployeeID == "" {
		n, err := s.store.CountIdentities(ctx, IdentityFilter{Role: RoleEmployee})
		if err != nil {
			return AuthResult{}, err
		}
		profile.EmployeeID = fmt.Sprintf("EMP%04d", n+1)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}
	lang := strings.TrimSpace(in.PreferredLanguage)
	if lang == "" {
		lang = "English"
	}
	id := Identity{
		ID:                s.newID(),
		Email:             email,
		PasswordHash:      hash,
		Role:              in.Role,
		FullName:          strings.TrimSpace(in.FullName),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		Gender:            in.Gender,
		DateOfBirth:       in.DateOfBirth,
		Address:           in.Address,
		PreferredLanguage: lang,
		Profile:           profile,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.CreateIdentity(ctx, id); err != nil {
		return AuthResult{}, err
	}
	token, err := s.tokens.Issue(id.ID, id.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: id}, nil
}

// Login checks credentials. Every credential failure is ErrInvalidCredentials,
// whether the email is unknown or the password is wrong.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	id, err := s.store.IdentityByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			s.hasher.VerifyDummy(password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	ok, err := s.hasher.Verify(password, id.PasswordHash)
	if err != nil {
		obs.Logger().Warn("unreadable password hash", "identity_id", id.ID, "err", err)
		return AuthResult{}, ErrInvalidCredentials
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	if s.hasher.NeedsRehash(id.PasswordHash) {
		s.upgradeHash(ctx, &id, password)
	}
	token, err := s.tokens.Issue(id.ID, id.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: id}, nil
}

func (s *Service) upgradeHash(ctx context.Context, id *Identity, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		obs.Logger().Warn("password rehash failed", "identity_id", id.ID, "err", err)
		return
	}
	if err := s.store.UpdatePasswordHash(ctx, id.ID, hash); err != nil {
		obs.Logger().Warn("password rehash not stored", "identity_id", id.ID, "err", err)
		return
	}
	id.PasswordHash = hash
}

// SetProfilePicture stores an inline data URL on the identity and returns the updated identity.
func (s *Service) SetProfilePicture(ctx context.Context, identityID, dataURL string) (Identity, error) {
	if err := s.store.SetProfilePicture(ctx, identityID, dataURL); err != nil {
		return Identity{}, err
	}
	return s.store.IdentityByID(ctx, identityID)
}

// SetResume stores a resume on the identity and returns the updated identity.
func (s *Service) SetResume(ctx context.Context, identityID string, resume Resume) (Identity, error) {
	if err := s.store.SetResume(ctx, identityID, resume); err != nil {
		return Identity{}, err
	}
	return s.store.IdentityByID(ctx, identityID)
}

func onlyRoleFields(role Role, p Profile) Profile {
	var out Profile
	switch role {
	case RoleIntern:
		out.EducationalInstitution = p.EducationalInstitution
		out.CurrentYearSemester = p.CurrentYearSemester
		out.MajorFieldOfStudy = p.MajorFieldOfStudy
		out.InternshipStartDate = p.InternshipStartDate
		out.InternshipEndDate = p.InternshipEndDate
		out.MentorAssigned = p.MentorAssigned
		out.AreaOfInterest = p.AreaOfInterest
	case RoleEmployee:
		out.EmployeeID = p.EmployeeID
		out.Department = p.Department
		out.Designation = p.Designation
		out.JoiningDate = p.JoiningDate
		out.ReportingManager = p.ReportingManager
		out.SkillsExpertise = p.SkillsExpertise
		out.BankAccountDetails = p.BankAccountDetails
	case RoleHR:
		out.HRAccessLevel = p.HRAccessLevel
		out.DepartmentsOverseen = p.DepartmentsOverseen
		out.WorkExperience = p.WorkExperience
		out.Certifications = p.Certifications
		out.OfficeLocation = p.OfficeLocation
	}
	return out
}
