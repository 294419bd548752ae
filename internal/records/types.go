package records

import "time"

// Application and verification states of an onboarding record.
const (
	ApplicationUnderReview = "Under Review"
	ApplicationSelected    = "Selected"
	ApplicationRejected    = "Rejected"

	VerificationPending    = "Pending"
	VerificationInProgress = "In Progress"
	VerificationCompleted  = "Completed"
	VerificationFailed     = "Failed"
)

// ChecklistItem is one onboarding step.
type ChecklistItem struct {
	Item      string `json:"item" bson:"item" validate:"required"`
	Completed bool   `json:"completed" bson:"completed"`
}

// SubmittedDocument is a document handed in during onboarding.
type SubmittedDocument struct {
	Name   string `json:"name" bson:"name" validate:"required"`
	URL    string `json:"url,omitempty" bson:"url,omitempty"`
	Status string `json:"status,omitempty" bson:"status,omitempty"`
}

// Onboarding tracks the onboarding state of one identity.
type Onboarding struct {
	ID                     string              `json:"id" bson:"id"`
	UserID                 string              `json:"user_id" bson:"user_id"`
	ApplicationStatus      string              `json:"application_status" bson:"application_status"`
	OfferLetter            string              `json:"offer_letter,omitempty" bson:"offer_letter,omitempty"`
	Checklist              []ChecklistItem     `json:"onboarding_checklist" bson:"onboarding_checklist"`
	DocumentsSubmitted     []SubmittedDocument `json:"documents_submitted" bson:"documents_submitted"`
	BackgroundVerification string              `json:"background_verification" bson:"background_verification"`
	WelcomeMessage         string              `json:"welcome_message,omitempty" bson:"welcome_message,omitempty"`
	HRContact              string              `json:"hr_contact,omitempty" bson:"hr_contact,omitempty"`
	CreatedAt              time.Time           `json:"created_at" bson:"created_at"`
}

// OnboardingUpdate is a partial update; nil fields are left unchanged.
type OnboardingUpdate struct {
	ApplicationStatus      *string              `json:"application_status,omitempty" bson:"application_status,omitempty" validate:"omitempty,oneof='Under Review' Selected Rejected"`
	OfferLetter            *string              `json:"offer_letter,omitempty" bson:"offer_letter,omitempty"`
	Checklist              *[]ChecklistItem     `json:"onboarding_checklist,omitempty" bson:"onboarding_checklist,omitempty" validate:"omitempty,dive"`
	DocumentsSubmitted     *[]SubmittedDocument `json:"documents_submitted,omitempty" bson:"documents_submitted,omitempty" validate:"omitempty,dive"`
	BackgroundVerification *string              `json:"background_verification,omitempty" bson:"background_verification,omitempty" validate:"omitempty,oneof=Pending 'In Progress' Completed Failed"`
	WelcomeMessage         *string              `json:"welcome_message,omitempty" bson:"welcome_message,omitempty"`
	HRContact              *string              `json:"hr_contact,omitempty" bson:"hr_contact,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u OnboardingUpdate) Empty() bool {
	return u.ApplicationStatus == nil && u.OfferLetter == nil && u.Checklist == nil &&
		u.DocumentsSubmitted == nil && u.BackgroundVerification == nil &&
		u.WelcomeMessage == nil && u.HRContact == nil
}

// Apply copies the set fields of u onto o.
func (u OnboardingUpdate) Apply(o *Onboarding) {
	if u.ApplicationStatus != nil {
		o.ApplicationStatus = *u.ApplicationStatus
	}
	if u.OfferLetter != nil {
		o.OfferLetter = *u.OfferLetter
	}
	if u.Checklist != nil {
		o.Checklist = *u.Checklist
	}
	if u.DocumentsSubmitted != nil {
		o.DocumentsSubmitted = *u.DocumentsSubmitted
	}
	if u.BackgroundVerification != nil {
		o.BackgroundVerification = *u.BackgroundVerification
	}
	if u.WelcomeMessage != nil {
		o.WelcomeMessage = *u.WelcomeMessage
	}
	if u.HRContact != nil {
		o.HRContact = *u.HRContact
	}
}

// Payment is one entry of a payroll's payment history.
type Payment struct {
	ID          string    `json:"id" bson:"id"`
	Amount      float64   `json:"amount" bson:"amount"`
	PaymentDate string    `json:"payment_date" bson:"payment_date"`
	Status      string    `json:"status" bson:"status"`
	SlipURL     string    `json:"slip_url,omitempty" bson:"slip_url,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Payroll holds the salary arrangement of one identity.
type Payroll struct {
	ID              string    `json:"id" bson:"id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	SalaryType      string    `json:"salary_type" bson:"salary_type"`
	Amount          float64   `json:"amount" bson:"amount"`
	PaymentSchedule string    `json:"payment_schedule" bson:"payment_schedule"`
	BankAccount     string    `json:"bank_account,omitempty" bson:"bank_account,omitempty"`
	PaymentHistory  []Payment `json:"payment_history" bson:"payment_history"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// Goal is a performance goal.
type Goal struct {
	ID            string    `json:"id" bson:"id"`
	UserID        string    `json:"user_id" bson:"user_id"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description" bson:"description"`
	TargetDate    string    `json:"target_date" bson:"target_date"`
	AssignedBy    string    `json:"assigned_by" bson:"assigned_by"`
	Status        string    `json:"status" bson:"status"`
	CompletedDate string    `json:"completed_date,omitempty" bson:"completed_date,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Task states and priorities.
const (
	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Task is an assigned unit of work.
type Task struct {
	ID          string    `json:"id" bson:"id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	DueDate     string    `json:"due_date" bson:"due_date"`
	Priority    string    `json:"priority" bson:"priority"`
	Status      string    `json:"status" bson:"status"`
	AssignedBy  string    `json:"assigned_by" bson:"assigned_by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// TaskUpdate is a partial task update.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty" bson:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty" bson:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" bson:"due_date,omitempty" validate:"omitempty,isodate"`
	Priority    *string `json:"priority,omitempty" bson:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	Status      *string `json:"status,omitempty" bson:"status,omitempty" validate:"omitempty,oneof=Pending 'In Progress' Completed"`
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil && u.Priority == nil && u.Status == nil
}

// Apply copies the set fields of u onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
}

// Feedback types.
const (
	FeedbackSelfReview   = "Self-Review"
	FeedbackMentorReview = "Mentor-Review"
)

// Feedback is a performance review entry.
type Feedback struct {
	ID           string    `json:"id" bson:"id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	FeedbackType string    `json:"feedback_type" bson:"feedback_type"`
	Content      string    `json:"content" bson:"content"`
	Rating       *int      `json:"rating,omitempty" bson:"rating,omitempty"`
	GivenBy      string    `json:"given_by" bson:"given_by"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Attendance is one day of presence.
type Attendance struct {
	ID          string     `json:"id" bson:"id"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Date        string     `json:"date" bson:"date"`
	CheckIn     time.Time  `json:"check_in" bson:"check_in"`
	CheckOut    *time.Time `json:"check_out,omitempty" bson:"check_out,omitempty"`
	Status      string     `json:"status" bson:"status"`
	HoursWorked float64    `json:"hours_worked" bson:"hours_worked"`
}

// AttendanceOverview summarises attendance and leave of one identity.
type AttendanceOverview struct {
	TotalDays            int          `json:"total_days"`
	PresentDays          int          `json:"present_days"`
	LeaveTaken           int          `json:"leave_taken"`
	TotalHours           float64      `json:"total_hours"`
	AttendancePercentage float64      `json:"attendance_percentage"`
	Records              []Attendance `json:"attendance_records"`
}

// Leave states and types.
const (
	LeavePending  = "Pending"
	LeaveApproved = "Approved"
	LeaveRejected = "Rejected"
)

// Leave is a leave request.
type Leave struct {
	ID         string    `json:"id" bson:"id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	StartDate  string    `json:"start_date" bson:"start_date"`
	EndDate    string    `json:"end_date" bson:"end_date"`
	Reason     string    `json:"reason" bson:"reason"`
	LeaveType  string    `json:"leave_type" bson:"leave_type"`
	Status     string    `json:"status" bson:"status"`
	AppliedAt  time.Time `json:"applied_at" bson:"applied_at"`
	ApprovedBy string    `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
}
