package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms.org/internal/audit"
	"hrms.org/internal/auth"
	"hrms.org/internal/obs"
	"hrms.org/internal/validation"
)

type signupBase struct {
	FullName          string `json:"full_name" validate:"required,max=200"`
	Email             string `json:"email" validate:"required,email,max=254"`
	PhoneNumber       string `json:"phone_number" validate:"required,max=32"`
	Password          string `json:"password" validate:"required,max=72"`
	Gender            string `json:"gender,omitempty"`
	DateOfBirth       string `json:"date_of_birth" validate:"required"`
	Address           string `json:"address" validate:"required"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

func (b signupBase) input(role auth.Role, p auth.Profile) auth.SignupInput {
	return auth.SignupInput{
		Role:              role,
		Email:             b.Email,
		Password:          b.Password,
		FullName:          b.FullName,
		PhoneNumber:       b.PhoneNumber,
		Gender:            b.Gender,
		DateOfBirth:       b.DateOfBirth,
		Address:           b.Address,
		PreferredLanguage: b.PreferredLanguage,
		Profile:           p,
	}
}

type internSignup struct {
	signupBase
	EducationalInstitution string `json:"educational_institution" validate:"required"`
	CurrentYearSemester    string `json:"current_year_semester" validate:"required"`
	MajorFieldOfStudy      string `json:"major_field_of_study" validate:"required"`
	InternshipStartDate    string `json:"internship_start_date" validate:"required"`
	InternshipEndDate      string `json:"internship_end_date" validate:"required"`
	MentorAssigned         string `json:"mentor_assigned,omitempty"`
	AreaOfInterest         string `json:"area_of_interest" validate:"required"`
}

type employeeSignup struct {
	signupBase
	EmployeeID         string `json:"employee_id,omitempty"`
	Department         string `json:"department" validate:"required"`
	Designation        string `json:"designation" validate:"required"`
	JoiningDate        string `json:"joining_date" validate:"required"`
	ReportingManager   string `json:"reporting_manager,omitempty"`
	SkillsExpertise    string `json:"skills_expertise" validate:"required"`
	BankAccountDetails string `json:"bank_account_details,omitempty"`
}

type hrSignup struct {
	signupBase
	HRAccessLevel       string `json:"hr_access_level" validate:"required"`
	DepartmentsOverseen string `json:"departments_overseen" validate:"required"`
	WorkExperience      string `json:"work_experience" validate:"required"`
	Certifications      string `json:"certifications,omitempty"`
	OfficeLocation      string `json:"office_location" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	role, err := auth.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "Not Found")
		return
	}
	in, err := decodeSignup(r, role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := a.auth.Signup(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(auth.ContextWithIdentity(r.Context(), res.User), "auth.signup", map[string]any{
		"role": string(res.User.Role),
	})
	writeJSON(w, http.StatusOK, res)
}

func decodeSignup(r *http.Request, role auth.Role) (auth.SignupInput, error) {
	switch role {
	case auth.RoleIntern:
		var req internSignup
		if err := decodeValid(r, &req); err != nil {
			return auth.SignupInput{}, err
		}
		return req.input(role, auth.Profile{
			EducationalInstitution: req.EducationalInstitution,
			CurrentYearSemester:    req.CurrentYearSemester,
			MajorFieldOfStudy:      req.MajorFieldOfStudy,
			InternshipStartDate:    req.InternshipStartDate,
			InternshipEndDate:      req.InternshipEndDate,
			MentorAssigned:         req.MentorAssigned,
			AreaOfInterest:         req.AreaOfInterest,
		}), nil
	case auth.RoleEmployee:
		var req employeeSignup
		if err := decodeValid(r, &req); err != nil {
			return auth.SignupInput{}, err
		}
		return req.input(role, auth.Profile{
			EmployeeID:         req.EmployeeID,
			Department:         req.Department,
			Designation:        req.Designation,
			JoiningDate:        req.JoiningDate,
			ReportingManager:   req.ReportingManager,
			SkillsExpertise:    req.SkillsExpertise,
			BankAccountDetails: req.BankAccountDetails,
		}), nil
	default:
		var req hrSignup
		if err := decodeValid(r, &req); err != nil {
			return auth.SignupInput{}, err
		}
		return req.input(role, auth.Profile{
			HRAccessLevel:       req.HRAccessLevel,
			DepartmentsOverseen: req.DepartmentsOverseen,
			WorkExperience:      req.WorkExperience,
			Certifications:      req.Certifications,
			OfficeLocation:      req.OfficeLocation,
		}), nil
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		// malformed emails fail the same way unknown ones do
		respondError(w, r, auth.ErrInvalidCredentials)
		return
	}
	res, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.ObserveAuthFailure("invalid_credentials")
			_ = audit.LogEvent(r.Context(), "auth.login_failed", nil)
		}
		respondError(w, r, err)
		return
	}
	_ = audit.LogEvent(auth.ContextWithIdentity(r.Context(), res.User), "auth.login", nil)
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, requester(r))
}
