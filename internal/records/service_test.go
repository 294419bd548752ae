package records_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrms.org/internal/auth"
	"hrms.org/internal/records"
	"hrms.org/internal/store/memory"
)

type fixture struct {
	svc     *records.Service
	store   *memory.Store
	clock   *time.Time
	hr      auth.Identity
	mentor  auth.Identity
	other   auth.Identity
	intern  auth.Identity
	intern2 auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		store:   store,
		clock:   &now,
		hr:      auth.Identity{ID: "hr-1", Role: auth.RoleHR, Email: "hr@example.com", CreatedAt: now.Add(-5 * time.Hour)},
		mentor:  auth.Identity{ID: "emp-1", Role: auth.RoleEmployee, Email: "mentor@example.com", CreatedAt: now.Add(-4 * time.Hour)},
		other:   auth.Identity{ID: "emp-2", Role: auth.RoleEmployee, Email: "other@example.com", CreatedAt: now.Add(-3 * time.Hour)},
		intern:  auth.Identity{ID: "int-1", Role: auth.RoleIntern, Email: "intern@example.com", CreatedAt: now.Add(-2 * time.Hour), Profile: auth.Profile{MentorAssigned: "emp-1", InternshipStartDate: "2025-06-01", InternshipEndDate: "2025-06-11"}},
		intern2: auth.Identity{ID: "int-2", Role: auth.RoleIntern, Email: "intern2@example.com", CreatedAt: now.Add(-time.Hour)},
	}
	for _, id := range []auth.Identity{f.hr, f.mentor, f.other, f.intern, f.intern2} {
		if err := store.CreateIdentity(context.Background(), id); err != nil {
			t.Fatalf("seed identity: %v", err)
		}
	}
	f.svc = records.NewService(store, store, records.WithClock(func() time.Time { return *f.clock }))
	return f
}

func expectDenied(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestOnboardingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOnboarding(ctx, f.mentor, f.intern.ID)
	expectDenied(t, err)

	o, err := f.svc.CreateOnboarding(ctx, f.hr, f.intern.ID)
	if err != nil {
		t.Fatalf("CreateOnboarding: %v", err)
	}
	if len(o.Checklist) != 5 || o.ApplicationStatus != records.ApplicationUnderReview || o.HRContact != "hr@example.com" {
		t.Fatalf("unexpected defaults %+v", o)
	}
	if _, err := f.svc.CreateOnboarding(ctx, f.hr, f.intern.ID); !errors.Is(err, records.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.svc.CreateOnboarding(ctx, f.hr, "ghost"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found for unknown owner, got %v", err)
	}

	if _, err := f.svc.Onboarding(ctx, f.intern, f.intern.ID); err != nil {
		t.Fatalf("self read: %v", err)
	}
	if _, err := f.svc.Onboarding(ctx, f.mentor, f.intern.ID); err != nil {
		t.Fatalf("mentor read: %v", err)
	}
	_, err = f.svc.Onboarding(ctx, f.other, f.intern.ID)
	expectDenied(t, err)
	_, err = f.svc.Onboarding(ctx, f.intern2, f.intern.ID)
	expectDenied(t, err)

	_, err = f.svc.Onboarding(ctx, f.hr, f.intern2.ID)
	var recErr *records.Error
	if !errors.As(err, &recErr) || !errors.Is(err, records.ErrNotFound) || recErr.Msg != "No onboarding record found" {
		t.Fatalf("expected described not found, got %v", err)
	}

	selected := records.ApplicationSelected
	updated, err := f.svc.UpdateOnboarding(ctx, f.hr, f.intern.ID, records.OnboardingUpdate{ApplicationStatus: &selected})
	if err != nil || updated.ApplicationStatus != records.ApplicationSelected || len(updated.Checklist) != 5 {
		t.Fatalf("UpdateOnboarding: %+v %v", updated, err)
	}
	bogus := "Hired"
	if _, err := f.svc.UpdateOnboarding(ctx, f.hr, f.intern.ID, records.OnboardingUpdate{ApplicationStatus: &bogus}); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.svc.UpdateOnboarding(ctx, f.hr, f.intern.ID, records.OnboardingUpdate{}); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty update, got %v", err)
	}
	_, err = f.svc.UpdateOnboarding(ctx, f.intern, f.intern.ID, records.OnboardingUpdate{ApplicationStatus: &selected})
	expectDenied(t, err)
}

func TestPayrollPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := records.PayrollInput{UserID: f.intern.ID, SalaryType: "Stipend", Amount: 1200, PaymentSchedule: "Monthly"}

	_, err := f.svc.CreatePayroll(ctx, f.intern, in)
	expectDenied(t, err)
	if _, err := f.svc.CreatePayroll(ctx, f.hr, in); err != nil {
		t.Fatalf("CreatePayroll: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.svc.AddPayment(ctx, f.hr, f.intern.ID, records.PaymentInput{Amount: 1200, PaymentDate: "2025-06-30"}); err != nil {
			t.Fatalf("AddPayment: %v", err)
		}
	}
	p, err := f.svc.Payroll(ctx, f.intern, f.intern.ID)
	if err != nil {
		t.Fatalf("Payroll: %v", err)
	}
	if len(p.PaymentHistory) != 2 || p.PaymentHistory[0].Status != "Paid" {
		t.Fatalf("unexpected history %+v", p.PaymentHistory)
	}
	if _, err := f.svc.AddPayment(ctx, f.hr, f.intern.ID, records.PaymentInput{Amount: -1, PaymentDate: "2025-06-30"}); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.svc.AddPayment(ctx, f.hr, f.intern2.ID, records.PaymentInput{Amount: 5, PaymentDate: "2025-06-30"}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found without payroll, got %v", err)
	}
}

func TestPerformanceAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	goal := records.GoalInput{UserID: f.intern.ID, Title: "Ship onboarding", TargetDate: "2025-07-01"}
	if _, err := f.svc.CreateGoal(ctx, f.mentor, goal); err != nil {
		t.Fatalf("mentor goal: %v", err)
	}
	_, err := f.svc.CreateGoal(ctx, f.other, goal)
	expectDenied(t, err)
	_, err = f.svc.CreateGoal(ctx, f.intern, goal)
	expectDenied(t, err)

	goals, err := f.svc.Goals(ctx, f.intern, f.intern.ID)
	if err != nil || len(goals) != 1 || goals[0].AssignedBy != f.mentor.ID {
		t.Fatalf("Goals: %+v %v", goals, err)
	}

	own, err := f.svc.CreateTask(ctx, f.intern, records.TaskInput{UserID: f.intern.ID, Title: "Read docs", DueDate: "2025-06-05", Priority: "Low"})
	if err != nil {
		t.Fatalf("self task: %v", err)
	}
	_, err = f.svc.CreateTask(ctx, f.intern, records.TaskInput{UserID: f.intern2.ID, Title: "x", DueDate: "2025-06-05", Priority: "Low"})
	expectDenied(t, err)

	done := records.TaskCompleted
	if _, err := f.svc.UpdateTask(ctx, f.intern, own.ID, records.TaskUpdate{Status: &done}); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	_, err = f.svc.UpdateTask(ctx, f.other, own.ID, records.TaskUpdate{Status: &done})
	expectDenied(t, err)
	badDate := "05/06/2025"
	if _, err := f.svc.UpdateTask(ctx, f.intern, own.ID, records.TaskUpdate{DueDate: &badDate}); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid due_date to be rejected, got %v", err)
	}
	goodDate := "2025-06-20"
	updated, err := f.svc.UpdateTask(ctx, f.intern, own.ID, records.TaskUpdate{DueDate: &goodDate})
	if err != nil || updated.DueDate != goodDate {
		t.Fatalf("due_date update: %+v %v", updated, err)
	}
	if _, err := f.svc.UpdateTask(ctx, f.hr, "missing", records.TaskUpdate{Status: &done}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rating := 4
	if _, err := f.svc.CreateFeedback(ctx, f.intern, records.FeedbackInput{UserID: f.intern.ID, FeedbackType: records.FeedbackSelfReview, Content: "ok", Rating: &rating}); err != nil {
		t.Fatalf("self review: %v", err)
	}
	if _, err := f.svc.CreateFeedback(ctx, f.mentor, records.FeedbackInput{UserID: f.intern.ID, FeedbackType: records.FeedbackMentorReview, Content: "good"}); err != nil {
		t.Fatalf("mentor review: %v", err)
	}
	_, err = f.svc.CreateFeedback(ctx, f.mentor, records.FeedbackInput{UserID: f.intern.ID, FeedbackType: records.FeedbackSelfReview, Content: "forged"})
	expectDenied(t, err)
	_, err = f.svc.CreateFeedback(ctx, f.intern, records.FeedbackInput{UserID: f.intern.ID, FeedbackType: records.FeedbackMentorReview, Content: "self praise"})
	expectDenied(t, err)

	fb, err := f.svc.Feedback(ctx, f.mentor, f.intern.ID)
	if err != nil || len(fb) != 2 {
		t.Fatalf("Feedback: %d %v", len(fb), err)
	}
	_, err = f.svc.Feedback(ctx, f.other, f.intern.ID)
	expectDenied(t, err)
}

func TestMentorReassignmentRevokesAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateOnboarding(ctx, f.hr, f.intern.ID); err != nil {
		t.Fatalf("CreateOnboarding: %v", err)
	}
	if _, err := f.svc.Goals(ctx, f.mentor, f.intern.ID); err != nil {
		t.Fatalf("mentor goals before reassignment: %v", err)
	}
	if _, err := f.svc.Onboarding(ctx, f.mentor, f.intern.ID); err != nil {
		t.Fatalf("mentor onboarding before reassignment: %v", err)
	}

	if err := f.store.SetMentor(ctx, f.intern.ID, f.other.ID); err != nil {
		t.Fatalf("SetMentor: %v", err)
	}

	// same requester value as before; only the stored owner changed
	_, err := f.svc.Goals(ctx, f.mentor, f.intern.ID)
	expectDenied(t, err)
	_, err = f.svc.Onboarding(ctx, f.mentor, f.intern.ID)
	expectDenied(t, err)
	if _, err := f.svc.Goals(ctx, f.other, f.intern.ID); err != nil {
		t.Fatalf("new mentor goals: %v", err)
	}
}

func TestAttendanceDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CheckOut(ctx, f.intern); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("checkout without checkin: %v", err)
	}
	if _, err := f.svc.CheckIn(ctx, f.intern); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := f.svc.CheckIn(ctx, f.intern); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("second checkin: %v", err)
	}

	*f.clock = f.clock.Add(7*time.Hour + 20*time.Minute)
	a, err := f.svc.CheckOut(ctx, f.intern)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if a.HoursWorked != 7.33 {
		t.Fatalf("hours %v want 7.33", a.HoursWorked)
	}
	if _, err := f.svc.CheckOut(ctx, f.intern); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("second checkout: %v", err)
	}

	*f.clock = f.clock.Add(24 * time.Hour)
	if _, err := f.svc.CheckIn(ctx, f.intern); err != nil {
		t.Fatalf("next day checkin: %v", err)
	}

	ov, err := f.svc.Overview(ctx, f.mentor, f.intern.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TotalDays != 2 || ov.PresentDays != 2 || ov.TotalHours != 7.33 || ov.AttendancePercentage != 100 {
		t.Fatalf("unexpected overview %+v", ov)
	}
	_, err = f.svc.Overview(ctx, f.intern2, f.intern.ID)
	expectDenied(t, err)
}

func TestLeaveApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.ApplyLeave(ctx, f.intern, records.LeaveInput{StartDate: "2025-06-10", EndDate: "2025-06-09", Reason: "x", LeaveType: "Sick"}); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	l, err := f.svc.ApplyLeave(ctx, f.intern, records.LeaveInput{StartDate: "2025-06-10", EndDate: "2025-06-11", Reason: "exam", LeaveType: "Casual"})
	if err != nil || l.Status != records.LeavePending || l.UserID != f.intern.ID {
		t.Fatalf("ApplyLeave: %+v %v", l, err)
	}

	_, err = f.svc.DecideLeave(ctx, f.intern, l.ID, records.LeaveApproved)
	expectDenied(t, err)
	if _, err := f.svc.DecideLeave(ctx, f.other, l.ID, "Maybe"); !errors.Is(err, records.ErrInvalidInput) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	decided, err := f.svc.DecideLeave(ctx, f.other, l.ID, records.LeaveApproved)
	if err != nil || decided.ApprovedBy != f.other.ID {
		t.Fatalf("any employee should approve intern leave: %+v %v", decided, err)
	}

	empLeave, err := f.svc.ApplyLeave(ctx, f.mentor, records.LeaveInput{StartDate: "2025-06-10", EndDate: "2025-06-10", Reason: "x", LeaveType: "Vacation"})
	if err != nil {
		t.Fatalf("employee apply: %v", err)
	}
	_, err = f.svc.DecideLeave(ctx, f.other, empLeave.ID, records.LeaveApproved)
	expectDenied(t, err)
	if _, err := f.svc.DecideLeave(ctx, f.hr, empLeave.ID, records.LeaveRejected); err != nil {
		t.Fatalf("hr decide: %v", err)
	}

	ov, err := f.svc.Overview(ctx, f.intern, f.intern.ID)
	if err != nil || ov.LeaveTaken != 1 || ov.AttendancePercentage != 0 {
		t.Fatalf("overview after leave: %+v %v", ov, err)
	}
}

func TestDirectoryScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.svc.Users(ctx, f.hr)
	if err != nil || len(all) != 5 {
		t.Fatalf("hr users: %d %v", len(all), err)
	}
	if all[0].ID != f.intern2.ID {
		t.Fatalf("expected newest first, got %s", all[0].ID)
	}
	mine, err := f.svc.Users(ctx, f.mentor)
	if err != nil || len(mine) != 1 || mine[0].ID != f.intern.ID {
		t.Fatalf("mentor users: %+v %v", mine, err)
	}
	self, _ := f.svc.Users(ctx, f.intern)
	if len(self) != 1 || self[0].ID != f.intern.ID {
		t.Fatalf("intern users: %+v", self)
	}

	if _, err := f.svc.User(ctx, f.mentor, f.intern.ID); err != nil {
		t.Fatalf("mentor get mentee: %v", err)
	}
	_, err = f.svc.User(ctx, f.intern, f.mentor.ID)
	expectDenied(t, err)
	if _, err := f.svc.User(ctx, f.hr, "ghost"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.Dashboard(ctx, f.hr)
	if err != nil {
		t.Fatalf("hr dashboard: %v", err)
	}
	if *d.TotalInterns != 2 || *d.TotalEmployees != 2 || *d.TotalUsers != 4 || len(d.RecentActivity) != 5 {
		t.Fatalf("unexpected hr dashboard %+v", d)
	}

	d, err = f.svc.Dashboard(ctx, f.mentor)
	if err != nil || *d.InternsUnderMe != 1 || d.MyProfile.ID != f.mentor.ID {
		t.Fatalf("employee dashboard: %+v %v", d, err)
	}

	d, err = f.svc.Dashboard(ctx, f.intern)
	if err != nil {
		t.Fatalf("intern dashboard: %v", err)
	}
	// 2025-06-01 .. 2025-06-11, now 2025-06-02 09:00 -> 33h of 240h
	if *d.InternshipProgress != 13.75 {
		t.Fatalf("progress %v want 13.75", *d.InternshipProgress)
	}
	d, _ = f.svc.Dashboard(ctx, f.intern2)
	if *d.InternshipProgress != 0 {
		t.Fatalf("progress without dates %v", *d.InternshipProgress)
	}
}
