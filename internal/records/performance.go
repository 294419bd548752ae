package records

import (
	"context"

	"hrms.org/internal/auth"
)

// GoalInput creates a goal for UserID.
type GoalInput struct {
	UserID      string `json:"user_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date" validate:"required,isodate"`
}

// TaskInput assigns a task to UserID.
type TaskInput struct {
	UserID      string `json:"user_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required,isodate"`
	Priority    string `json:"priority" validate:"required,oneof=High Medium Low"`
}

// FeedbackInput records a review of UserID.
type FeedbackInput struct {
	UserID       string `json:"user_id" validate:"required"`
	FeedbackType string `json:"feedback_type" validate:"required,oneof=Self-Review Mentor-Review"`
	Content      string `json:"content" validate:"required"`
	Rating       *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// selfOr picks write-self when the requester acts on their own records.
func selfOr(requester auth.Identity, ownerID string, other auth.Action) auth.Action {
	if requester.ID == ownerID {
		return auth.ActionWriteSelf
	}
	return other
}

// CreateGoal sets a goal for an intern. Only hr and the intern's mentor may do so.
func (s *Service) CreateGoal(ctx context.Context, requester auth.Identity, in GoalInput) (Goal, error) {
	if err := s.validate(in); err != nil {
		return Goal{}, err
	}
	if _, err := s.authorize(ctx, requester, in.UserID, auth.ActionWriteMentor); err != nil {
		return Goal{}, err
	}
	g := Goal{
		ID:          s.newID(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		TargetDate:  in.TargetDate,
		AssignedBy:  requester.ID,
		Status:      "In Progress",
		CreatedAt:   s.timestamp(),
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return Goal{}, err
	}
	return g, nil
}

// Goals lists the goals of userID.
func (s *Service) Goals(ctx context.Context, requester auth.Identity, userID string) ([]Goal, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.store.GoalsByUser(ctx, userID, listCap)
}

// CreateTask assigns a task. Anyone may add a task to their own list.
func (s *Service) CreateTask(ctx context.Context, requester auth.Identity, in TaskInput) (Task, error) {
	if err := s.validate(in); err != nil {
		return Task{}, err
	}
	if _, err := s.authorize(ctx, requester, in.UserID, selfOr(requester, in.UserID, auth.ActionWriteMentor)); err != nil {
		return Task{}, err
	}
	t := Task{
		ID:          s.newID(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      TaskPending,
		AssignedBy:  requester.ID,
		CreatedAt:   s.timestamp(),
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Tasks lists the tasks of userID.
func (s *Service) Tasks(ctx context.Context, requester auth.Identity, userID string) ([]Task, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.store.TasksByUser(ctx, userID, listCap)
}

// UpdateTask changes a task. The owner, their mentor and hr may update it.
func (s *Service) UpdateTask(ctx context.Context, requester auth.Identity, taskID string, upd TaskUpdate) (Task, error) {
	if upd.Empty() {
		return Task{}, errNothingToUpdate
	}
	if err := s.validate(upd); err != nil {
		return Task{}, err
	}
	t, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return Task{}, describe(err, ErrNotFound, "Task not found")
	}
	if _, err := s.authorize(ctx, requester, t.UserID, selfOr(requester, t.UserID, auth.ActionWriteMentor)); err != nil {
		return Task{}, err
	}
	t, err = s.store.UpdateTask(ctx, taskID, upd)
	return t, describe(err, ErrNotFound, "Task not found")
}

// CreateFeedback records a self review on one's own record, or a mentor review.
func (s *Service) CreateFeedback(ctx context.Context, requester auth.Identity, in FeedbackInput) (Feedback, error) {
	if err := s.validate(in); err != nil {
		return Feedback{}, err
	}
	action := auth.ActionWriteMentor
	if in.FeedbackType == FeedbackSelfReview {
		action = auth.ActionWriteSelf
	}
	owner, err := s.owner(ctx, in.UserID)
	if err != nil {
		return Feedback{}, err
	}
	if err := s.check(ctx, requester, owner, action); err != nil {
		return Feedback{}, err
	}
	if in.FeedbackType == FeedbackMentorReview && requester.ID == in.UserID {
		return Feedback{}, errSelfMentorReview
	}
	f := Feedback{
		ID:           s.newID(),
		UserID:       in.UserID,
		FeedbackType: in.FeedbackType,
		Content:      in.Content,
		Rating:       in.Rating,
		GivenBy:      requester.ID,
		CreatedAt:    s.timestamp(),
	}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return Feedback{}, err
	}
	return f, nil
}

// Feedback lists the reviews of userID.
func (s *Service) Feedback(ctx context.Context, requester auth.Identity, userID string) ([]Feedback, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.store.FeedbackByUser(ctx, userID, listCap)
}
