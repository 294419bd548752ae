package records

import (
	"context"

	"hrms.org/internal/auth"
)

// PayrollInput creates a payroll record.
type PayrollInput struct {
	UserID          string  `json:"user_id" validate:"required"`
	SalaryType      string  `json:"salary_type" validate:"required"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	PaymentSchedule string  `json:"payment_schedule" validate:"required"`
	BankAccount     string  `json:"bank_account,omitempty"`
}

// PaymentInput appends a payment to a payroll record.
type PaymentInput struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date" validate:"required,isodate"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=Paid Pending Failed"`
	SlipURL     string  `json:"slip_url,omitempty" validate:"omitempty,url"`
}

// CreatePayroll opens the payroll record of in.UserID.
func (s *Service) CreatePayroll(ctx context.Context, requester auth.Identity, in PayrollInput) (Payroll, error) {
	if err := s.validate(in); err != nil {
		return Payroll{}, err
	}
	if _, err := s.authorize(ctx, requester, in.UserID, auth.ActionWritePrivileged); err != nil {
		return Payroll{}, err
	}
	p := Payroll{
		ID:              s.newID(),
		UserID:          in.UserID,
		SalaryType:      in.SalaryType,
		Amount:          in.Amount,
		PaymentSchedule: in.PaymentSchedule,
		BankAccount:     in.BankAccount,
		PaymentHistory:  []Payment{},
		CreatedAt:       s.timestamp(),
	}
	if err := s.store.CreatePayroll(ctx, p); err != nil {
		return Payroll{}, describe(err, ErrConflict, "Payroll record already exists")
	}
	return p, nil
}

// Payroll returns the payroll record of userID.
func (s *Service) Payroll(ctx context.Context, requester auth.Identity, userID string) (Payroll, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return Payroll{}, err
	}
	p, err := s.store.PayrollByUser(ctx, userID)
	return p, describe(err, ErrNotFound, "No payroll record found")
}

// AddPayment appends a payment to the payroll record of userID.
func (s *Service) AddPayment(ctx context.Context, requester auth.Identity, userID string, in PaymentInput) (Payment, error) {
	if err := s.validate(in); err != nil {
		return Payment{}, err
	}
	if _, err := s.authorize(ctx, requester, userID, auth.ActionWritePrivileged); err != nil {
		return Payment{}, err
	}
	status := in.Status
	if status == "" {
		status = "Paid"
	}
	p := Payment{
		ID:          s.newID(),
		Amount:      in.Amount,
		PaymentDate: in.PaymentDate,
		Status:      status,
		SlipURL:     in.SlipURL,
		CreatedAt:   s.timestamp(),
	}
	if err := s.store.AppendPayment(ctx, userID, p); err != nil {
		return Payment{}, describe(err, ErrNotFound, "No payroll record found")
	}
	return p, nil
}
