package records

import (
	"context"
	"errors"
	"math"

	"hrms.org/internal/auth"
	"hrms.org/internal/validation"
)

const statusPresent = "Present"

// LeaveInput requests leave for the requester.
type LeaveInput struct {
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
	Reason    string `json:"reason" validate:"required"`
	LeaveType string `json:"leave_type" validate:"required,oneof=Sick Casual Vacation"`
}

// CheckIn opens today's (UTC) attendance record of the requester.
func (s *Service) CheckIn(ctx context.Context, requester auth.Identity) (Attendance, error) {
	if err := s.check(ctx, requester, requester, auth.ActionWriteSelf); err != nil {
		return Attendance{}, err
	}
	now := s.timestamp()
	a := Attendance{
		ID:      s.newID(),
		UserID:  requester.ID,
		Date:    now.Format(validation.DateLayout),
		CheckIn: now,
		Status:  statusPresent,
	}
	if err := s.store.CreateAttendance(ctx, a); err != nil {
		if errors.Is(err, ErrConflict) {
			return Attendance{}, errAlreadyCheckedIn
		}
		return Attendance{}, err
	}
	return a, nil
}

// CheckOut closes today's attendance record and records the hours worked,
// rounded to two decimals.
func (s *Service) CheckOut(ctx context.Context, requester auth.Identity) (Attendance, error) {
	if err := s.check(ctx, requester, requester, auth.ActionWriteSelf); err != nil {
		return Attendance{}, err
	}
	now := s.timestamp()
	a, err := s.store.AttendanceOn(ctx, requester.ID, now.Format(validation.DateLayout))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Attendance{}, errNoCheckIn
		}
		return Attendance{}, err
	}
	if a.CheckOut != nil {
		return Attendance{}, errAlreadyCheckedOut
	}
	hours := round2(now.Sub(a.CheckIn).Hours())
	if err := s.store.CompleteAttendance(ctx, a.ID, now, hours); err != nil {
		if errors.Is(err, ErrConflict) {
			return Attendance{}, errAlreadyCheckedOut
		}
		return Attendance{}, err
	}
	a.CheckOut = &now
	a.HoursWorked = hours
	return a, nil
}

// Overview summarises attendance and approved leave of userID.
func (s *Service) Overview(ctx context.Context, requester auth.Identity, userID string) (AttendanceOverview, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return AttendanceOverview{}, err
	}
	records, err := s.store.AttendanceByUser(ctx, userID, attendanceCap)
	if err != nil {
		return AttendanceOverview{}, err
	}
	leaves, err := s.store.LeavesByUser(ctx, userID, listCap)
	if err != nil {
		return AttendanceOverview{}, err
	}

	ov := AttendanceOverview{TotalDays: len(records), Records: records}
	var hours float64
	for _, r := range records {
		if r.Status == statusPresent {
			ov.PresentDays++
		}
		hours += r.HoursWorked
	}
	for _, l := range leaves {
		if l.Status == LeaveApproved {
			ov.LeaveTaken++
		}
	}
	ov.TotalHours = round2(hours)
	ov.AttendancePercentage = round2(float64(ov.PresentDays) / float64(max(ov.TotalDays, 1)) * 100)
	if len(ov.Records) > recentRecords {
		ov.Records = ov.Records[len(ov.Records)-recentRecords:]
	}
	if ov.Records == nil {
		ov.Records = []Attendance{}
	}
	return ov, nil
}

// ApplyLeave files a pending leave request for the requester.
func (s *Service) ApplyLeave(ctx context.Context, requester auth.Identity, in LeaveInput) (Leave, error) {
	if err := s.validate(in); err != nil {
		return Leave{}, err
	}
	if in.EndDate < in.StartDate {
		return Leave{}, newError(ErrInvalidInput, "end_date is before start_date")
	}
	if err := s.check(ctx, requester, requester, auth.ActionWriteSelf); err != nil {
		return Leave{}, err
	}
	l := Leave{
		ID:        s.newID(),
		UserID:    requester.ID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Reason:    in.Reason,
		LeaveType: in.LeaveType,
		Status:    LeavePending,
		AppliedAt: s.timestamp(),
	}
	if err := s.store.CreateLeave(ctx, l); err != nil {
		return Leave{}, err
	}
	return l, nil
}

// Leaves lists the leave requests of userID.
func (s *Service) Leaves(ctx context.Context, requester auth.Identity, userID string) ([]Leave, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.store.LeavesByUser(ctx, userID, listCap)
}

// DecideLeave approves or rejects a leave request.
func (s *Service) DecideLeave(ctx context.Context, requester auth.Identity, leaveID, status string) (Leave, error) {
	if status != LeaveApproved && status != LeaveRejected {
		return Leave{}, newError(ErrInvalidInput, "status must be Approved or Rejected")
	}
	l, err := s.store.LeaveByID(ctx, leaveID)
	if err != nil {
		return Leave{}, describe(err, ErrNotFound, "Leave request not found")
	}
	if _, err := s.authorize(ctx, requester, l.UserID, auth.ActionApproveLeave); err != nil {
		return Leave{}, err
	}
	l, err = s.store.DecideLeave(ctx, leaveID, status, requester.ID)
	return l, describe(err, ErrNotFound, "Leave request not found")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
