package records

import (
	"context"

	"hrms.org/internal/auth"
)

var defaultChecklist = []string{
	"Submit ID Proof",
	"Submit Resume",
	"Submit College ID",
	"Complete Background Verification",
	"Sign Agreement",
}

const defaultWelcome = "Welcome to our company! We're excited to have you join our team."

// CreateOnboarding opens the onboarding record of userID with the default checklist.
func (s *Service) CreateOnboarding(ctx context.Context, requester auth.Identity, userID string) (Onboarding, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionWritePrivileged); err != nil {
		return Onboarding{}, err
	}
	checklist := make([]ChecklistItem, 0, len(defaultChecklist))
	for _, item := range defaultChecklist {
		checklist = append(checklist, ChecklistItem{Item: item})
	}
	o := Onboarding{
		ID:                     s.newID(),
		UserID:                 userID,
		ApplicationStatus:      ApplicationUnderReview,
		Checklist:              checklist,
		DocumentsSubmitted:     []SubmittedDocument{},
		BackgroundVerification: VerificationPending,
		WelcomeMessage:         defaultWelcome,
		HRContact:              requester.Email,
		CreatedAt:              s.timestamp(),
	}
	if err := s.store.CreateOnboarding(ctx, o); err != nil {
		return Onboarding{}, describe(err, ErrConflict, "Onboarding record already exists")
	}
	return o, nil
}

// Onboarding returns the onboarding record of userID.
func (s *Service) Onboarding(ctx context.Context, requester auth.Identity, userID string) (Onboarding, error) {
	if _, err := s.authorize(ctx, requester, userID, auth.ActionRead); err != nil {
		return Onboarding{}, err
	}
	o, err := s.store.OnboardingByUser(ctx, userID)
	return o, describe(err, ErrNotFound, "No onboarding record found")
}

// UpdateOnboarding applies a partial update to the onboarding record of userID.
func (s *Service) UpdateOnboarding(ctx context.Context, requester auth.Identity, userID string, upd OnboardingUpdate) (Onboarding, error) {
	if upd.Empty() {
		return Onboarding{}, errNothingToUpdate
	}
	if err := s.validate(upd); err != nil {
		return Onboarding{}, err
	}
	if _, err := s.authorize(ctx, requester, userID, auth.ActionWritePrivileged); err != nil {
		return Onboarding{}, err
	}
	o, err := s.store.UpdateOnboarding(ctx, userID, upd)
	return o, describe(err, ErrNotFound, "No onboarding record found")
}
