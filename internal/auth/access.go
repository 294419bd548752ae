package auth

// Action is the class of operation being attempted on an owned resource.
type Action string

const (
	// ActionRead reads a resource.
	ActionRead Action = "read"
	// ActionWriteSelf mutates a resource the requester owns (check-in, leave request, self review).
	ActionWriteSelf Action = "write-self"
	// ActionWriteMentor mutates an intern's resource on behalf of their mentor (goals, tasks, reviews).
	ActionWriteMentor Action = "write-mentor"
	// ActionApproveLeave decides a leave request. Any employee may decide an intern's leave.
	ActionApproveLeave Action = "approve-leave"
	// ActionWritePrivileged is reserved for hr (onboarding, payroll).
	ActionWritePrivileged Action = "write-privileged"
)

// Rule names reported in decisions.
const (
	RuleHR          = "hr"
	RuleSelf        = "self"
	RuleMentor      = "mentor"
	RuleManager     = "manager"
	RuleDefaultDeny = "default-deny"
)

// AccessRequest is the input of the evaluator.
type AccessRequest struct {
	RequesterID   string
	RequesterRole Role
	OwnerID       string
	OwnerRole     Role
	// Mentored is true when the requester is the owner's assigned mentor.
	Mentored bool
	Action   Action
}

// Decision is the evaluator output.
type Decision struct {
	Allow bool
	Rule  string
}

// RequestFor builds the request for requester acting on a resource owned by owner.
func RequestFor(requester, owner Identity, action Action) AccessRequest {
	return AccessRequest{
		RequesterID:   requester.ID,
		RequesterRole: requester.Role,
		OwnerID:       owner.ID,
		OwnerRole:     owner.Role,
		Mentored:      owner.Mentors(requester.ID),
		Action:        action,
	}
}

// Evaluate applies the access rules in order; the first matching rule decides.
func Evaluate(req AccessRequest) Decision {
	if req.RequesterID == "" || !req.RequesterRole.Valid() || req.OwnerID == "" {
		return Decision{Rule: RuleDefaultDeny}
	}

	if req.RequesterRole == RoleHR {
		return Decision{Allow: true, Rule: RuleHR}
	}

	if req.RequesterID == req.OwnerID {
		switch req.Action {
		case ActionRead, ActionWriteSelf:
			return Decision{Allow: true, Rule: RuleSelf}
		}
		return Decision{Rule: RuleSelf}
	}

	if req.RequesterRole == RoleEmployee && req.OwnerRole == RoleIntern {
		switch req.Action {
		case ActionRead, ActionWriteMentor:
			return Decision{Allow: req.Mentored, Rule: RuleMentor}
		case ActionApproveLeave:
			return Decision{Allow: true, Rule: RuleManager}
		}
	}

	return Decision{Rule: RuleDefaultDeny}
}

// Authorize evaluates req and returns a *DenialError when it is denied.
func Authorize(req AccessRequest) error {
	d := Evaluate(req)
	if d.Allow {
		return nil
	}
	return &DenialError{Action: req.Action, Rule: d.Rule}
}
