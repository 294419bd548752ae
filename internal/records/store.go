package records

import (
	"context"
	"time"
)

// Store persists user owned records. Lookups of a missing record return
// ErrNotFound; uniqueness violations return ErrConflict. Listings are capped by
// limit when it is positive.
type Store interface {
	// CreateOnboarding fails with ErrConflict when the user already has a record.
	CreateOnboarding(ctx context.Context, o Onboarding) error
	OnboardingByUser(ctx context.Context, userID string) (Onboarding, error)
	UpdateOnboarding(ctx context.Context, userID string, upd OnboardingUpdate) (Onboarding, error)

	// CreatePayroll fails with ErrConflict when the user already has a record.
	CreatePayroll(ctx context.Context, p Payroll) error
	PayrollByUser(ctx context.Context, userID string) (Payroll, error)
	// AppendPayment adds p to the payment history in one atomic update.
	AppendPayment(ctx context.Context, userID string, p Payment) error

	CreateGoal(ctx context.Context, g Goal) error
	GoalsByUser(ctx context.Context, userID string, limit int) ([]Goal, error)

	CreateTask(ctx context.Context, t Task) error
	TaskByID(ctx context.Context, id string) (Task, error)
	TasksByUser(ctx context.Context, userID string, limit int) ([]Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (Task, error)

	CreateFeedback(ctx context.Context, f Feedback) error
	FeedbackByUser(ctx context.Context, userID string, limit int) ([]Feedback, error)

	// CreateAttendance fails with ErrConflict when the user already has a record for the date.
	CreateAttendance(ctx context.Context, a Attendance) error
	AttendanceOn(ctx context.Context, userID, date string) (Attendance, error)
	// CompleteAttendance sets the check-out of an open record; ErrConflict when it is already closed.
	CompleteAttendance(ctx context.Context, id string, checkOut time.Time, hours float64) error
	// AttendanceByUser returns records oldest first.
	AttendanceByUser(ctx context.Context, userID string, limit int) ([]Attendance, error)

	CreateLeave(ctx context.Context, l Leave) error
	LeaveByID(ctx context.Context, id string) (Leave, error)
	LeavesByUser(ctx context.Context, userID string, limit int) ([]Leave, error)
	DecideLeave(ctx context.Context, id, status, decidedBy string) (Leave, error)
}
