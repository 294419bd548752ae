package records

import (
	"context"
	"math"
	"time"

	"hrms.org/internal/auth"
	"hrms.org/internal/validation"
)

// Dashboard holds the role specific figures shown after login. Which fields are
// set depends on the requester's role.
type Dashboard struct {
	TotalUsers         *int            `json:"total_users,omitempty"`
	TotalInterns       *int            `json:"total_interns,omitempty"`
	TotalEmployees     *int            `json:"total_employees,omitempty"`
	RecentActivity     []auth.Identity `json:"recent_activity,omitempty"`
	InternsUnderMe     *int            `json:"total_interns_under_me,omitempty"`
	Interns            []auth.Identity `json:"interns,omitempty"`
	MyProfile          *auth.Identity  `json:"my_profile,omitempty"`
	InternshipProgress *float64        `json:"internship_progress,omitempty"`
}

// Users lists the identities visible to requester: everyone for hr, the
// mentees of an employee, and only oneself for an intern.
func (s *Service) Users(ctx context.Context, requester auth.Identity) ([]auth.Identity, error) {
	var filter auth.IdentityFilter
	switch requester.Role {
	case auth.RoleHR:
		filter = auth.IdentityFilter{Limit: directoryCap}
	case auth.RoleEmployee:
		filter = auth.IdentityFilter{Role: auth.RoleIntern, MentorID: requester.ID, Limit: listCap}
	default:
		return []auth.Identity{requester}, nil
	}
	found, err := s.identities.ListIdentities(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.visible(requester, found), nil
}

// User returns one identity if requester may read it.
func (s *Service) User(ctx context.Context, requester auth.Identity, id string) (auth.Identity, error) {
	return s.authorize(ctx, requester, id, auth.ActionRead)
}

// Dashboard computes the dashboard of requester.
func (s *Service) Dashboard(ctx context.Context, requester auth.Identity) (Dashboard, error) {
	switch requester.Role {
	case auth.RoleHR:
		interns, err := s.identities.CountIdentities(ctx, auth.IdentityFilter{Role: auth.RoleIntern})
		if err != nil {
			return Dashboard{}, err
		}
		employees, err := s.identities.CountIdentities(ctx, auth.IdentityFilter{Role: auth.RoleEmployee})
		if err != nil {
			return Dashboard{}, err
		}
		recent, err := s.identities.ListIdentities(ctx, auth.IdentityFilter{Limit: recentUsers})
		if err != nil {
			return Dashboard{}, err
		}
		total := interns + employees
		return Dashboard{
			TotalUsers:     &total,
			TotalInterns:   &interns,
			TotalEmployees: &employees,
			RecentActivity: recent,
		}, nil

	case auth.RoleEmployee:
		mentees, err := s.Users(ctx, requester)
		if err != nil {
			return Dashboard{}, err
		}
		n := len(mentees)
		return Dashboard{
			InternsUnderMe: &n,
			Interns:        mentees,
			MyProfile:      &requester,
		}, nil
	}

	progress := internshipProgress(requester.InternshipStartDate, requester.InternshipEndDate, s.timestamp())
	return Dashboard{MyProfile: &requester, InternshipProgress: &progress}, nil
}

func (s *Service) visible(requester auth.Identity, in []auth.Identity) []auth.Identity {
	out := make([]auth.Identity, 0, len(in))
	for _, id := range in {
		if auth.Evaluate(auth.RequestFor(requester, id, auth.ActionRead)).Allow {
			out = append(out, id)
		}
	}
	return out
}

// internshipProgress is the share of the internship window that has elapsed,
// as a percentage in [0, 100]. Unparseable or empty windows yield 0.
func internshipProgress(start, end string, now time.Time) float64 {
	from, err := time.Parse(validation.DateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(validation.DateLayout, end)
	if err != nil || !to.After(from) {
		return 0
	}
	p := float64(now.Sub(from)) / float64(to.Sub(from)) * 100
	return round2(math.Min(100, math.Max(0, p)))
}
