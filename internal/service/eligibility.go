package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// Eligibility failure reasons. The CGPA reason is formatted with both values.
const (
	ReasonProfileMissing = "profile not found"
	ReasonJobMissing     = "job not found"
	ReasonBacklogs       = "backlogs not allowed"
	ReasonDepartment     = "department not eligible"
	ReasonDeadline       = "deadline passed"
	ReasonInactive       = "posting no longer active"
)

// EligibilityProfile is the normalized student shape the evaluator reads.
type EligibilityProfile struct {
	CGPA          string
	ActiveBacklog bool
	Department    string
}

// EligibilityOptions toggles optional checks.
type EligibilityOptions struct {
	CheckStatus bool
}

// EligibilityResult carries the verdict and the first failing reason.
type EligibilityResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// NormalizeProfile maps a stored profile onto the evaluator input. A nil profile stays nil.
func NormalizeProfile(p *models.UserProfile) *EligibilityProfile {
	if p == nil {
		return nil
	}
	return &EligibilityProfile{
		CGPA:          p.CurrentCGPA,
		ActiveBacklog: parseFlag(p.ActiveBacklog),
		Department:    strings.TrimSpace(p.Department),
	}
}

// Evaluate decides whether profile may apply to job. Checks run in a fixed order and
// the first failure is reported. It never panics and performs no I/O.
func Evaluate(job *models.Job, profile *EligibilityProfile, now time.Time, opts EligibilityOptions) EligibilityResult {
	if profile == nil {
		return ineligible(ReasonProfileMissing)
	}
	if job == nil {
		return ineligible(ReasonJobMissing)
	}

	have, haveText := parseGrade(profile.CGPA)
	need, needText := parseGrade(job.MinCGPA)
	if have < need {
		return ineligible(fmt.Sprintf("CGPA %s is below the required %s", haveText, needText))
	}

	if job.NoBacklogs && profile.ActiveBacklog {
		return ineligible(ReasonBacklogs)
	}

	if !job.Departments.Contains(profile.Department) {
		return ineligible(ReasonDepartment)
	}

	if now.After(job.Deadline) {
		return ineligible(ReasonDeadline)
	}

	if opts.CheckStatus && job.Status != models.JobStatusActive {
		return ineligible(ReasonInactive)
	}

	return EligibilityResult{Eligible: true}
}

func ineligible(reason string) EligibilityResult {
	return EligibilityResult{Eligible: false, Reason: reason}
}

// parseGrade reads a decimal string. Anything non-numeric counts as zero.
func parseGrade(raw string) (float64, string) {
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "0"
	}
	return v, trimmed
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
