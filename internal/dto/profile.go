package dto

// ProfileRequest carries the self-service profile fields for registration and edits.
type ProfileRequest struct {
	FullName          string    `json:"fullName" validate:"required,max=120"`
	PersonalEmail     *string   `json:"personalEmail" validate:"omitempty,email"`
	Department        string    `json:"department" validate:"required,department"`
	Batch             string    `json:"batch" validate:"required,max=20"`
	RollNumber        string    `json:"rollNumber" validate:"required,max=40"`
	Phone             *string   `json:"phone" validate:"omitempty,max=20"`
	CurrentCGPA       string    `json:"currentCgpa" validate:"required,grade"`
	ActiveBacklog     string    `json:"activeBacklog" validate:"required,oneof=Yes No"`
	HistoryOfArrear   string    `json:"historyOfArrear" validate:"required,oneof=Yes No"`
	BacklogCount      int       `json:"backlogCount" validate:"gte=0"`
	TenthPercentage   *string   `json:"tenthPercentage" validate:"omitempty,grade"`
	TwelfthPercentage *string   `json:"twelfthPercentage" validate:"omitempty,grade"`
	SemesterGrades    []*string `json:"semesterGrades" validate:"max=8,dive,omitempty,grade"`
	LinkedInURL       *string   `json:"linkedinUrl" validate:"omitempty,url"`
	GitHubURL         *string   `json:"githubUrl" validate:"omitempty,url"`
	PortfolioURL      *string   `json:"portfolioUrl" validate:"omitempty,url"`
}
