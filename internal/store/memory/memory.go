// Package memory is an in-process document store used by tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hrms.org/internal/auth"
	"hrms.org/internal/records"
)

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	identities map[string]auth.Identity
	emails     map[string]string

	onboarding map[string]records.Onboarding // by user id
	payroll    map[string]records.Payroll    // by user id
	goals      []records.Goal
	tasks      map[string]records.Task
	taskOrder  []string
	feedback   []records.Feedback
	attendance map[string]records.Attendance
	attOrder   []string
	leaves     map[string]records.Leave
	leaveOrder []string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		identities: make(map[string]auth.Identity),
		emails:     make(map[string]string),
		onboarding: make(map[string]records.Onboarding),
		payroll:    make(map[string]records.Payroll),
		tasks:      make(map[string]records.Task),
		attendance: make(map[string]records.Attendance),
		leaves:     make(map[string]records.Leave),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// --- identities ---

func (s *Store) CreateIdentity(_ context.Context, id auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[id.Email]; taken {
		return auth.ErrDuplicateEmail
	}
	s.identities[id.ID] = id
	s.emails[id.Email] = id.ID
	return nil
}

func (s *Store) IdentityByID(_ context.Context, id string) (auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.identities[id]
	if !ok {
		return auth.Identity{}, auth.ErrIdentityNotFound
	}
	return v, nil
}

func (s *Store) IdentityByEmail(_ context.Context, email string) (auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return auth.Identity{}, auth.ErrIdentityNotFound
	}
	return s.identities[id], nil
}

func (s *Store) CountIdentities(_ context.Context, f auth.IdentityFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.identities {
		if matches(v, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListIdentities(_ context.Context, f auth.IdentityFilter) ([]auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []auth.Identity
	for _, v := range s.identities {
		if matches(v, f) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return capped(out, f.Limit), nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return s.updateIdentity(id, func(v *auth.Identity) { v.PasswordHash = hash })
}

func (s *Store) SetProfilePicture(_ context.Context, id, dataURL string) error {
	return s.updateIdentity(id, func(v *auth.Identity) { v.ProfilePicture = dataURL })
}

func (s *Store) SetResume(_ context.Context, id string, r auth.Resume) error {
	return s.updateIdentity(id, func(v *auth.Identity) { v.Resume = &r })
}

// SetMentor reassigns the mentor of an identity.
func (s *Store) SetMentor(_ context.Context, id, mentorID string) error {
	return s.updateIdentity(id, func(v *auth.Identity) { v.MentorAssigned = mentorID })
}

func (s *Store) updateIdentity(id string, fn func(*auth.Identity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.identities[id]
	if !ok {
		return auth.ErrIdentityNotFound
	}
	fn(&v)
	s.identities[id] = v
	return nil
}

func matches(v auth.Identity, f auth.IdentityFilter) bool {
	if f.Role != "" && v.Role != f.Role {
		return false
	}
	if f.MentorID != "" && v.MentorAssigned != f.MentorID {
		return false
	}
	return true
}

// --- onboarding & payroll ---

func (s *Store) CreateOnboarding(_ context.Context, o records.Onboarding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.onboarding[o.UserID]; exists {
		return records.ErrConflict
	}
	s.onboarding[o.UserID] = o
	return nil
}

func (s *Store) OnboardingByUser(_ context.Context, userID string) (records.Onboarding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.onboarding[userID]
	if !ok {
		return records.Onboarding{}, records.ErrNotFound
	}
	return o, nil
}

func (s *Store) UpdateOnboarding(_ context.Context, userID string, upd records.OnboardingUpdate) (records.Onboarding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.onboarding[userID]
	if !ok {
		return records.Onboarding{}, records.ErrNotFound
	}
	upd.Apply(&o)
	s.onboarding[userID] = o
	return o, nil
}

func (s *Store) CreatePayroll(_ context.Context, p records.Payroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.payroll[p.UserID]; exists {
		return records.ErrConflict
	}
	s.payroll[p.UserID] = p
	return nil
}

func (s *Store) PayrollByUser(_ context.Context, userID string) (records.Payroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payroll[userID]
	if !ok {
		return records.Payroll{}, records.ErrNotFound
	}
	p.PaymentHistory = append([]records.Payment(nil), p.PaymentHistory...)
	return p, nil
}

func (s *Store) AppendPayment(_ context.Context, userID string, pay records.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payroll[userID]
	if !ok {
		return records.ErrNotFound
	}
	p.PaymentHistory = append(append([]records.Payment(nil), p.PaymentHistory...), pay)
	s.payroll[userID] = p
	return nil
}

// --- performance ---

func (s *Store) CreateGoal(_ context.Context, g records.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return nil
}

func (s *Store) GoalsByUser(_ context.Context, userID string, limit int) ([]records.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []records.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return capped(out, limit), nil
}

func (s *Store) CreateTask(_ context.Context, t records.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return nil
}

func (s *Store) TaskByID(_ context.Context, id string) (records.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return records.Task{}, records.ErrNotFound
	}
	return t, nil
}

func (s *Store) TasksByUser(_ context.Context, userID string, limit int) ([]records.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []records.Task{}
	for _, id := range s.taskOrder {
		if t := s.tasks[id]; t.UserID == userID {
			out = append(out, t)
		}
	}
	return capped(out, limit), nil
}

func (s *Store) UpdateTask(_ context.Context, id string, upd records.TaskUpdate) (records.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return records.Task{}, records.ErrNotFound
	}
	upd.Apply(&t)
	s.tasks[id] = t
	return t, nil
}

func (s *Store) CreateFeedback(_ context.Context, f records.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, f)
	return nil
}

func (s *Store) FeedbackByUser(_ context.Context, userID string, limit int) ([]records.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []records.Feedback{}
	for _, f := range s.feedback {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return capped(out, limit), nil
}

// --- attendance & leave ---

func (s *Store) CreateAttendance(_ context.Context, a records.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attendance {
		if existing.UserID == a.UserID && existing.Date == a.Date {
			return records.ErrConflict
		}
	}
	s.attendance[a.ID] = a
	s.attOrder = append(s.attOrder, a.ID)
	return nil
}

func (s *Store) AttendanceOn(_ context.Context, userID, date string) (records.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attendance {
		if a.UserID == userID && a.Date == date {
			return a, nil
		}
	}
	return records.Attendance{}, records.ErrNotFound
}

func (s *Store) CompleteAttendance(_ context.Context, id string, checkOut time.Time, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendance[id]
	if !ok {
		return records.ErrNotFound
	}
	if a.CheckOut != nil {
		return records.ErrConflict
	}
	a.CheckOut = &checkOut
	a.HoursWorked = hours
	s.attendance[id] = a
	return nil
}

func (s *Store) AttendanceByUser(_ context.Context, userID string, limit int) ([]records.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []records.Attendance{}
	for _, id := range s.attOrder {
		if a := s.attendance[id]; a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return capped(out, limit), nil
}

func (s *Store) CreateLeave(_ context.Context, l records.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves[l.ID] = l
	s.leaveOrder = append(s.leaveOrder, l.ID)
	return nil
}

func (s *Store) LeaveByID(_ context.Context, id string) (records.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leaves[id]
	if !ok {
		return records.Leave{}, records.ErrNotFound
	}
	return l, nil
}

func (s *Store) LeavesByUser(_ context.Context, userID string, limit int) ([]records.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []records.Leave{}
	for _, id := range s.leaveOrder {
		if l := s.leaves[id]; l.UserID == userID {
			out = append(out, l)
		}
	}
	return capped(out, limit), nil
}

func (s *Store) DecideLeave(_ context.Context, id, status, decidedBy string) (records.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leaves[id]
	if !ok {
		return records.Leave{}, records.ErrNotFound
	}
	l.Status = status
	l.ApprovedBy = decidedBy
	s.leaves[id] = l
	return l, nil
}

func capped[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
