// Package storetest holds behavioural tests shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrms.org/internal/auth"
	"hrms.org/internal/ids"
	"hrms.org/internal/records"
)

// Backend is the store surface exercised by Run.
type Backend interface {
	auth.IdentityStore
	records.Store
}

// Run exercises b. Every identity and record it writes uses fresh ids so a
// shared database can be reused between runs.
func Run(t *testing.T, b Backend) {
	t.Helper()
	t.Run("identities", func(t *testing.T) { testIdentities(t, b) })
	t.Run("onboarding", func(t *testing.T) { testOnboarding(t, b) })
	t.Run("payroll", func(t *testing.T) { testPayroll(t, b) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, b) })
	t.Run("attendance", func(t *testing.T) { testAttendance(t, b) })
	t.Run("leaves", func(t *testing.T) { testLeaves(t, b) })
}

// base is millisecond aligned so every backend round-trips it exactly.
var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newIdentity(t *testing.T, b Backend, role auth.Role, mentor string, created time.Time) auth.Identity {
	t.Helper()
	id := auth.Identity{
		ID:           ids.NewIdentityID(),
		Email:        ids.New() + "@example.com",
		PasswordHash: "$2a$10$placeholder",
		Role:         role,
		FullName:     "Test " + string(role),
		CreatedAt:    created,
	}
	id.MentorAssigned = mentor
	if err := b.CreateIdentity(context.Background(), id); err != nil {
		t.Fatalf("CreateIdentity: %v", err)
	}
	return id
}

func testIdentities(t *testing.T, b Backend) {
	ctx := context.Background()
	mentor := newIdentity(t, b, auth.RoleEmployee, "", base)
	first := newIdentity(t, b, auth.RoleIntern, mentor.ID, base.Add(time.Minute))
	second := newIdentity(t, b, auth.RoleIntern, mentor.ID, base.Add(2*time.Minute))

	dup := first
	dup.ID = ids.NewIdentityID()
	if err := b.CreateIdentity(ctx, dup); !errors.Is(err, auth.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := b.IdentityByEmail(ctx, first.Email)
	if err != nil {
		t.Fatalf("IdentityByEmail: %v", err)
	}
	if got.ID != first.ID || got.PasswordHash != first.PasswordHash || !got.Mentors(mentor.ID) {
		t.Fatalf("unexpected identity %+v", got)
	}
	if _, err := b.IdentityByID(ctx, "missing"); !errors.Is(err, auth.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}

	filter := auth.IdentityFilter{Role: auth.RoleIntern, MentorID: mentor.ID}
	n, err := b.CountIdentities(ctx, filter)
	if err != nil || n != 2 {
		t.Fatalf("CountIdentities = %d, %v", n, err)
	}
	filter.Limit = 1
	list, err := b.ListIdentities(ctx, filter)
	if err != nil {
		t.Fatalf("ListIdentities: %v", err)
	}
	if len(list) != 1 || list[0].ID != second.ID {
		t.Fatalf("expected newest intern first, got %+v", list)
	}

	if err := b.UpdatePasswordHash(ctx, first.ID, "$argon2id$new"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	if err := b.SetProfilePicture(ctx, first.ID, "data:image/png;base64,AA=="); err != nil {
		t.Fatalf("SetProfilePicture: %v", err)
	}
	resume := auth.Resume{Filename: "cv.pdf", ContentType: "application/pdf", Data: "JVBERi0="}
	if err := b.SetResume(ctx, first.ID, resume); err != nil {
		t.Fatalf("SetResume: %v", err)
	}
	got, err = b.IdentityByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("IdentityByID: %v", err)
	}
	if got.PasswordHash != "$argon2id$new" || got.ProfilePicture == "" || got.Resume == nil || *got.Resume != resume {
		t.Fatalf("updates not persisted: %+v", got)
	}
	if err := b.SetProfilePicture(ctx, "missing", "x"); !errors.Is(err, auth.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func testOnboarding(t *testing.T, b Backend) {
	ctx := context.Background()
	owner := newIdentity(t, b, auth.RoleIntern, "", base)
	o := records.Onboarding{
		ID:                     ids.New(),
		UserID:                 owner.ID,
		ApplicationStatus:      records.ApplicationUnderReview,
		Checklist:              []records.ChecklistItem{{Item: "Sign contract"}},
		DocumentsSubmitted:     []records.SubmittedDocument{},
		BackgroundVerification: records.VerificationPending,
		CreatedAt:              base,
	}
	if err := b.CreateOnboarding(ctx, o); err != nil {
		t.Fatalf("CreateOnboarding: %v", err)
	}
	o.ID = ids.New()
	if err := b.CreateOnboarding(ctx, o); !errors.Is(err, records.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	status := records.ApplicationSelected
	done := []records.ChecklistItem{{Item: "Sign contract", Completed: true}}
	updated, err := b.UpdateOnboarding(ctx, owner.ID, records.OnboardingUpdate{ApplicationStatus: &status, Checklist: &done})
	if err != nil {
		t.Fatalf("UpdateOnboarding: %v", err)
	}
	if updated.ApplicationStatus != status || !updated.Checklist[0].Completed || updated.BackgroundVerification != records.VerificationPending {
		t.Fatalf("unexpected onboarding %+v", updated)
	}
	if _, err := b.UpdateOnboarding(ctx, "missing", records.OnboardingUpdate{ApplicationStatus: &status}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := b.OnboardingByUser(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPayroll(t *testing.T, b Backend) {
	ctx := context.Background()
	owner := newIdentity(t, b, auth.RoleEmployee, "", base)
	p := records.Payroll{ID: ids.New(), UserID: owner.ID, SalaryType: "Monthly", Amount: 5000, PaymentSchedule: "Monthly", CreatedAt: base}
	if err := b.CreatePayroll(ctx, p); err != nil {
		t.Fatalf("CreatePayroll: %v", err)
	}
	for i, amount := range []float64{5000, 5100} {
		pay := records.Payment{ID: ids.New(), Amount: amount, PaymentDate: "2024-03-31", Status: "Paid", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := b.AppendPayment(ctx, owner.ID, pay); err != nil {
			t.Fatalf("AppendPayment: %v", err)
		}
	}
	got, err := b.PayrollByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("PayrollByUser: %v", err)
	}
	if len(got.PaymentHistory) != 2 || got.PaymentHistory[1].Amount != 5100 {
		t.Fatalf("unexpected history %+v", got.PaymentHistory)
	}
	if err := b.AppendPayment(ctx, "missing", records.Payment{ID: ids.New()}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testTasks(t *testing.T, b Backend) {
	ctx := context.Background()
	owner := newIdentity(t, b, auth.RoleIntern, "", base)
	for i, title := range []string{"First", "Second"} {
		task := records.Task{ID: ids.New(), UserID: owner.ID, Title: title, Priority: "Medium", Status: records.TaskPending, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := b.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	tasks, err := b.TasksByUser(ctx, owner.ID, 10)
	if err != nil || len(tasks) != 2 || tasks[0].Title != "First" {
		t.Fatalf("TasksByUser = %+v, %v", tasks, err)
	}
	status := records.TaskCompleted
	updated, err := b.UpdateTask(ctx, tasks[0].ID, records.TaskUpdate{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != records.TaskCompleted || updated.Title != "First" {
		t.Fatalf("unexpected task %+v", updated)
	}
	if _, err := b.TaskByID(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	goals, err := b.GoalsByUser(ctx, owner.ID, 10)
	if err != nil || goals == nil || len(goals) != 0 {
		t.Fatalf("expected empty goal list, got %#v, %v", goals, err)
	}
}

func testAttendance(t *testing.T, b Backend) {
	ctx := context.Background()
	owner := newIdentity(t, b, auth.RoleEmployee, "", base)
	later := records.Attendance{ID: ids.New(), UserID: owner.ID, Date: "2024-03-02", CheckIn: base.Add(24 * time.Hour), Status: "Present"}
	earlier := records.Attendance{ID: ids.New(), UserID: owner.ID, Date: "2024-03-01", CheckIn: base, Status: "Present"}
	for _, a := range []records.Attendance{later, earlier} {
		if err := b.CreateAttendance(ctx, a); err != nil {
			t.Fatalf("CreateAttendance: %v", err)
		}
	}
	again := earlier
	again.ID = ids.New()
	if err := b.CreateAttendance(ctx, again); !errors.Is(err, records.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	open, err := b.AttendanceOn(ctx, owner.ID, "2024-03-01")
	if err != nil || open.ID != earlier.ID || open.CheckOut != nil {
		t.Fatalf("AttendanceOn = %+v, %v", open, err)
	}
	out := base.Add(8 * time.Hour)
	if err := b.CompleteAttendance(ctx, earlier.ID, out, 8); err != nil {
		t.Fatalf("CompleteAttendance: %v", err)
	}
	if err := b.CompleteAttendance(ctx, earlier.ID, out, 8); !errors.Is(err, records.ErrConflict) {
		t.Fatalf("expected ErrConflict on second check-out, got %v", err)
	}
	if err := b.CompleteAttendance(ctx, "missing", out, 8); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := b.AttendanceByUser(ctx, owner.ID, 0)
	if err != nil || len(list) != 2 {
		t.Fatalf("AttendanceByUser = %+v, %v", list, err)
	}
	if list[0].Date != "2024-03-01" || list[0].CheckOut == nil || !list[0].CheckOut.Equal(out) || list[0].HoursWorked != 8 {
		t.Fatalf("expected completed earliest record first, got %+v", list[0])
	}
}

func testLeaves(t *testing.T, b Backend) {
	ctx := context.Background()
	owner := newIdentity(t, b, auth.RoleIntern, "", base)
	l := records.Leave{ID: ids.New(), UserID: owner.ID, StartDate: "2024-04-01", EndDate: "2024-04-02", Reason: "Exams", LeaveType: "Casual", Status: records.LeavePending, AppliedAt: base}
	if err := b.CreateLeave(ctx, l); err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}
	decided, err := b.DecideLeave(ctx, l.ID, records.LeaveApproved, "hr-1")
	if err != nil {
		t.Fatalf("DecideLeave: %v", err)
	}
	if decided.Status != records.LeaveApproved || decided.ApprovedBy != "hr-1" || decided.Reason != "Exams" {
		t.Fatalf("unexpected leave %+v", decided)
	}
	if _, err := b.DecideLeave(ctx, "missing", records.LeaveRejected, "hr-1"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	leaves, err := b.LeavesByUser(ctx, owner.ID, 10)
	if err != nil || len(leaves) != 1 || leaves[0].Status != records.LeaveApproved {
		t.Fatalf("LeavesByUser = %+v, %v", leaves, err)
	}
}
