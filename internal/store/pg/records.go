package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hrms.org/internal/records"
)

// Record kinds stored in the records table.
const (
	kindOnboarding = "onboarding"
	kindPayroll    = "payroll"
	kindGoal       = "goal"
	kindTask       = "task"
	kindFeedback   = "feedback"
	kindAttendance = "attendance"
	kindLeave      = "leave"
)

func (s *Store) insertRecord(ctx context.Context, kind, id, userID string, createdAt time.Time, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("pg: encode %s: %w", kind, err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into records (id, kind, user_id, created_at, doc)
		values ($1, $2, $3, $4, $5)
	`, id, kind, userID, createdAt, doc)
	switch pgCode(err) {
	case pgUniqueViolation:
		return records.ErrConflict
	case pgForeignKeyViolation:
		return records.ErrNotFound
	}
	return err
}

func oneRecord[T any](ctx context.Context, q querier, query string, args ...any) (T, error) {
	var (
		v   T
		doc []byte
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return v, records.ErrNotFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("pg: decode record: %w", err)
	}
	return v, nil
}

func listRecords[T any](ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("pg: decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// updateRecord locks the row matched by where, applies fn and writes it back.
func updateRecord[T any](ctx context.Context, s *Store, where string, args []any, fn func(*T)) (T, error) {
	var zero T
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	var doc []byte
	err = tx.QueryRowContext(ctx, `select id, doc from records where `+where+` for update`, args...).Scan(&id, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, records.ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return zero, fmt.Errorf("pg: decode record: %w", err)
	}
	fn(&v)
	if doc, err = json.Marshal(v); err != nil {
		return zero, fmt.Errorf("pg: encode record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `update records set doc = $2 where id = $1`, id, doc); err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return v, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const (
	byOwner      = `select doc from records where kind = $1 and user_id = $2`
	ownerListing = byOwner + ` order by created_at, id limit nullif($3::int, 0)`
	byID         = `select doc from records where kind = $1 and id = $2`
)

// --- onboarding & payroll ---

func (s *Store) CreateOnboarding(ctx context.Context, o records.Onboarding) error {
	return s.insertRecord(ctx, kindOnboarding, o.ID, o.UserID, o.CreatedAt, o)
}

func (s *Store) OnboardingByUser(ctx context.Context, userID string) (records.Onboarding, error) {
	return oneRecord[records.Onboarding](ctx, s.db, byOwner, kindOnboarding, userID)
}

func (s *Store) UpdateOnboarding(ctx context.Context, userID string, upd records.OnboardingUpdate) (records.Onboarding, error) {
	return updateRecord(ctx, s, `kind = $1 and user_id = $2`, []any{kindOnboarding, userID}, upd.Apply)
}

func (s *Store) CreatePayroll(ctx context.Context, p records.Payroll) error {
	if p.PaymentHistory == nil {
		p.PaymentHistory = []records.Payment{}
	}
	return s.insertRecord(ctx, kindPayroll, p.ID, p.UserID, p.CreatedAt, p)
}

func (s *Store) PayrollByUser(ctx context.Context, userID string) (records.Payroll, error) {
	return oneRecord[records.Payroll](ctx, s.db, byOwner, kindPayroll, userID)
}

func (s *Store) AppendPayment(ctx context.Context, userID string, p records.Payment) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("pg: encode payment: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		update records
		set doc = jsonb_set(doc, '{payment_history}',
			coalesce(doc -> 'payment_history', '[]'::jsonb) || jsonb_build_array($3::jsonb))
		where kind = $1 and user_id = $2
	`, kindPayroll, userID, doc)
	return recordUpdated(res, err)
}

// --- performance ---

func (s *Store) CreateGoal(ctx context.Context, g records.Goal) error {
	return s.insertRecord(ctx, kindGoal, g.ID, g.UserID, g.CreatedAt, g)
}

func (s *Store) GoalsByUser(ctx context.Context, userID string, limit int) ([]records.Goal, error) {
	return listRecords[records.Goal](ctx, s.db, ownerListing, kindGoal, userID, limit)
}

func (s *Store) CreateTask(ctx context.Context, t records.Task) error {
	return s.insertRecord(ctx, kindTask, t.ID, t.UserID, t.CreatedAt, t)
}

func (s *Store) TaskByID(ctx context.Context, id string) (records.Task, error) {
	return oneRecord[records.Task](ctx, s.db, byID, kindTask, id)
}

func (s *Store) TasksByUser(ctx context.Context, userID string, limit int) ([]records.Task, error) {
	return listRecords[records.Task](ctx, s.db, ownerListing, kindTask, userID, limit)
}

func (s *Store) UpdateTask(ctx context.Context, id string, upd records.TaskUpdate) (records.Task, error) {
	return updateRecord(ctx, s, `kind = $1 and id = $2`, []any{kindTask, id}, upd.Apply)
}

func (s *Store) CreateFeedback(ctx context.Context, f records.Feedback) error {
	return s.insertRecord(ctx, kindFeedback, f.ID, f.UserID, f.CreatedAt, f)
}

func (s *Store) FeedbackByUser(ctx context.Context, userID string, limit int) ([]records.Feedback, error) {
	return listRecords[records.Feedback](ctx, s.db, ownerListing, kindFeedback, userID, limit)
}

// --- attendance & leave ---

func (s *Store) CreateAttendance(ctx context.Context, a records.Attendance) error {
	return s.insertRecord(ctx, kindAttendance, a.ID, a.UserID, a.CheckIn, a)
}

func (s *Store) AttendanceOn(ctx context.Context, userID, date string) (records.Attendance, error) {
	return oneRecord[records.Attendance](ctx, s.db, byOwner+` and doc ->> 'date' = $3`, kindAttendance, userID, date)
}

func (s *Store) CompleteAttendance(ctx context.Context, id string, checkOut time.Time, hours float64) error {
	res, err := s.db.ExecContext(ctx, `
		update records
		set doc = doc || jsonb_build_object('check_out', $3::timestamptz, 'hours_worked', $4::float8)
		where kind = $1 and id = $2 and (doc -> 'check_out' is null or doc -> 'check_out' = 'null'::jsonb)
	`, kindAttendance, id, checkOut.UTC(), hours)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from records where kind = $1 and id = $2)`, kindAttendance, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return records.ErrConflict
	}
	return records.ErrNotFound
}

func (s *Store) AttendanceByUser(ctx context.Context, userID string, limit int) ([]records.Attendance, error) {
	return listRecords[records.Attendance](ctx, s.db,
		byOwner+` order by doc ->> 'date', created_at limit nullif($3::int, 0)`, kindAttendance, userID, limit)
}

func (s *Store) CreateLeave(ctx context.Context, l records.Leave) error {
	return s.insertRecord(ctx, kindLeave, l.ID, l.UserID, l.AppliedAt, l)
}

func (s *Store) LeaveByID(ctx context.Context, id string) (records.Leave, error) {
	return oneRecord[records.Leave](ctx, s.db, byID, kindLeave, id)
}

func (s *Store) LeavesByUser(ctx context.Context, userID string, limit int) ([]records.Leave, error) {
	return listRecords[records.Leave](ctx, s.db, ownerListing, kindLeave, userID, limit)
}

func (s *Store) DecideLeave(ctx context.Context, id, status, decidedBy string) (records.Leave, error) {
	return oneRecord[records.Leave](ctx, s.db, `
		update records
		set doc = doc || jsonb_build_object('status', $3::text, 'approved_by', $4::text)
		where kind = $1 and id = $2
		returning doc
	`, kindLeave, id, status, decidedBy)
}

func recordUpdated(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}
