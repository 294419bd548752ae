package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the immutable role an identity signs up with.
type Role string

const (
	RoleIntern   Role = "intern"
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleIntern, RoleEmployee, RoleHR:
		return true
	}
	return false
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Resume is an uploaded document stored inline on the identity.
type Resume struct {
	Filename    string `json:"filename" bson:"filename"`
	ContentType string `json:"content_type" bson:"content_type"`
	Data        string `json:"data" bson:"data"`
}

// Profile holds the role specific signup fields. Only the fields of the
// identity's role are populated.
type Profile struct {
	// intern
	EducationalInstitution string `json:"educational_institution,omitempty" bson:"educational_institution,omitempty"`
	CurrentYearSemester    string `json:"current_year_semester,omitempty" bson:"current_year_semester,omitempty"`
	MajorFieldOfStudy      string `json:"major_field_of_study,omitempty" bson:"major_field_of_study,omitempty"`
	InternshipStartDate    string `json:"internship_start_date,omitempty" bson:"internship_start_date,omitempty"`
	InternshipEndDate      string `json:"internship_end_date,omitempty" bson:"internship_end_date,omitempty"`
	MentorAssigned         string `json:"mentor_assigned,omitempty" bson:"mentor_assigned,omitempty"`
	AreaOfInterest         string `json:"area_of_interest,omitempty" bson:"area_of_interest,omitempty"`

	// employee
	EmployeeID         string `json:"employee_id,omitempty" bson:"employee_id,omitempty"`
	Department         string `json:"department,omitempty" bson:"department,omitempty"`
	Designation        string `json:"designation,omitempty" bson:"designation,omitempty"`
	JoiningDate        string `json:"joining_date,omitempty" bson:"joining_date,omitempty"`
	ReportingManager   string `json:"reporting_manager,omitempty" bson:"reporting_manager,omitempty"`
	SkillsExpertise    string `json:"skills_expertise,omitempty" bson:"skills_expertise,omitempty"`
	BankAccountDetails string `json:"bank_account_details,omitempty" bson:"bank_account_details,omitempty"`

	// hr
	HRAccessLevel       string `json:"hr_access_level,omitempty" bson:"hr_access_level,omitempty"`
	DepartmentsOverseen string `json:"departments_overseen,omitempty" bson:"departments_overseen,omitempty"`
	WorkExperience      string `json:"work_experience,omitempty" bson:"work_experience,omitempty"`
	Certifications      string `json:"certifications,omitempty" bson:"certifications,omitempty"`
	OfficeLocation      string `json:"office_location,omitempty" bson:"office_location,omitempty"`
}

// Identity is a registered account. PasswordHash never leaves the process in
// JSON form.
type Identity struct {
	ID                string    `json:"id" bson:"id"`
	Email             string    `json:"email" bson:"email"`
	PasswordHash      string    `json:"-" bson:"password_hash"`
	Role              Role      `json:"role" bson:"role"`
	FullName          string    `json:"full_name" bson:"full_name"`
	PhoneNumber       string    `json:"phone_number" bson:"phone_number"`
	Gender            string    `json:"gender,omitempty" bson:"gender,omitempty"`
	DateOfBirth       string    `json:"date_of_birth" bson:"date_of_birth"`
	Address           string    `json:"address" bson:"address"`
	PreferredLanguage string    `json:"preferred_language" bson:"preferred_language"`
	ProfilePicture    string    `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	Resume            *Resume   `json:"resume,omitempty" bson:"resume,omitempty"`
	Profile           `bson:",inline"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// Mentors reports whether id is the assigned mentor of this identity.
func (i Identity) Mentors(id string) bool {
	return i.Role == RoleIntern && i.MentorAssigned != "" && i.MentorAssigned == id
}

// IdentityFilter narrows identity listings. Zero values match everything.
type IdentityFilter struct {
	Role     Role
	MentorID string
	Limit    int
}
