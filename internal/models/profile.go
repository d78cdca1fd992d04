package models

import "time"

// Role tags a principal. Profiles and admin roles share the vocabulary.
type Role string

const (
	RoleStudent              Role = "student"
	RolePlacementRep         Role = "placement_rep"
	RolePlacementOfficer     Role = "placement_officer"
	RolePlacementCoordinator Role = "placement_coordinator"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RolePlacementRep, RolePlacementOfficer, RolePlacementCoordinator:
		return true
	}
	return false
}

// IsAdminRole reports whether r may be granted through an AdminRole record.
func (r Role) IsAdminRole() bool {
	return r == RolePlacementRep || r == RolePlacementOfficer || r == RolePlacementCoordinator
}

// Departments lists the institutional departments in display order.
var Departments = []string{"CSE", "IT", "ECE", "EEE", "MECH", "CIVIL", "AIDS", "AIML", "CSBS"}

// ValidDepartment reports whether d is a known department code.
func ValidDepartment(d string) bool {
	for _, dep := range Departments {
		if dep == d {
			return true
		}
	}
	return false
}

// Yes/no flags are persisted as the literal strings shown on the sign-up form.
const (
	FlagYes = "Yes"
	FlagNo  = "No"
)

// UserProfile is the self-service record of a student or admin account.
type UserProfile struct {
	ID                string    `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	PersonalEmail     *string   `db:"personal_email" json:"personal_email,omitempty"`
	FullName          string    `db:"full_name" json:"full_name"`
	Role              Role      `db:"role" json:"role"`
	IsPlacementRep    bool      `db:"is_placement_rep" json:"is_placement_rep"`
	Department        string    `db:"department" json:"department"`
	Batch             string    `db:"batch" json:"batch"`
	RollNumber        string    `db:"roll_number" json:"roll_number"`
	Phone             *string   `db:"phone" json:"phone,omitempty"`
	CurrentCGPA       string    `db:"current_cgpa" json:"current_cgpa"`
	ActiveBacklog     string    `db:"active_backlog" json:"active_backlog"`
	HistoryOfArrear   string    `db:"history_of_arrear" json:"history_of_arrear"`
	BacklogCount      int       `db:"backlog_count" json:"backlog_count"`
	TenthPercentage   *string   `db:"tenth_percentage" json:"tenth_percentage,omitempty"`
	TwelfthPercentage *string   `db:"twelfth_percentage" json:"twelfth_percentage,omitempty"`
	Sem1              *string   `db:"sem1" json:"sem1,omitempty"`
	Sem2              *string   `db:"sem2" json:"sem2,omitempty"`
	Sem3              *string   `db:"sem3" json:"sem3,omitempty"`
	Sem4              *string   `db:"sem4" json:"sem4,omitempty"`
	Sem5              *string   `db:"sem5" json:"sem5,omitempty"`
	Sem6              *string   `db:"sem6" json:"sem6,omitempty"`
	Sem7              *string   `db:"sem7" json:"sem7,omitempty"`
	Sem8              *string   `db:"sem8" json:"sem8,omitempty"`
	ResumeFileID      *string   `db:"resume_file_id" json:"resume_file_id,omitempty"`
	PhotoFileID       *string   `db:"photo_file_id" json:"photo_file_id,omitempty"`
	LinkedInURL       *string   `db:"linkedin_url" json:"linkedin_url,omitempty"`
	GitHubURL         *string   `db:"github_url" json:"github_url,omitempty"`
	PortfolioURL      *string   `db:"portfolio_url" json:"portfolio_url,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// SemesterGrades returns the eight per-term averages in order.
func (p *UserProfile) SemesterGrades() [8]*string {
	return [8]*string{p.Sem1, p.Sem2, p.Sem3, p.Sem4, p.Sem5, p.Sem6, p.Sem7, p.Sem8}
}

// SetSemesterGrades assigns the per-term averages; extra entries are ignored.
func (p *UserProfile) SetSemesterGrades(grades []*string) {
	slots := []**string{&p.Sem1, &p.Sem2, &p.Sem3, &p.Sem4, &p.Sem5, &p.Sem6, &p.Sem7, &p.Sem8}
	for i, slot := range slots {
		if i < len(grades) {
			*slot = grades[i]
		}
	}
}
