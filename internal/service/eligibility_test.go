package service

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

var evalNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func eligibilityJob() *models.Job {
	return &models.Job{
		ID:          "j1",
		MinCGPA:     "7.0",
		NoBacklogs:  true,
		Departments: models.DepartmentList{"CSE"},
		Deadline:    evalNow.Add(72 * time.Hour),
		Status:      models.JobStatusActive,
	}
}

func TestEvaluateScenarios(t *testing.T) {
	cases := []struct {
		name     string
		profile  *EligibilityProfile
		eligible bool
		contains []string
	}{
		{"cgpa below threshold", &EligibilityProfile{CGPA: "6.5", Department: "CSE"}, false, []string{"7.0", "6.5"}},
		{"meets every rule", &EligibilityProfile{CGPA: "8.0", Department: "CSE"}, true, nil},
		{"active backlog", &EligibilityProfile{CGPA: "8.0", ActiveBacklog: true, Department: "CSE"}, false, []string{"backlog"}},
		{"missing profile", nil, false, []string{ReasonProfileMissing}},
		{"wrong department", &EligibilityProfile{CGPA: "9.1", Department: "MECH"}, false, []string{ReasonDepartment}},
		{"non numeric cgpa counts as zero", &EligibilityProfile{CGPA: "eight", Department: "CSE"}, false, []string{"CGPA 0 "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(eligibilityJob(), tc.profile, evalNow, EligibilityOptions{})
			assert.Equal(t, tc.eligible, res.Eligible)
			if tc.eligible {
				assert.Empty(t, res.Reason)
				return
			}
			for _, s := range tc.contains {
				assert.Contains(t, res.Reason, s)
			}
		})
	}
}

func TestEvaluateOrderReportsFirstFailure(t *testing.T) {
	job := eligibilityJob()
	job.Deadline = evalNow.Add(-time.Hour)
	job.Status = models.JobStatusClosed

	profile := &EligibilityProfile{CGPA: "5.0", ActiveBacklog: true, Department: "IT"}
	assert.Contains(t, Evaluate(job, profile, evalNow, EligibilityOptions{CheckStatus: true}).Reason, "CGPA")

	profile.CGPA = "9.0"
	assert.Equal(t, ReasonBacklogs, Evaluate(job, profile, evalNow, EligibilityOptions{CheckStatus: true}).Reason)

	profile.ActiveBacklog = false
	assert.Equal(t, ReasonDepartment, Evaluate(job, profile, evalNow, EligibilityOptions{CheckStatus: true}).Reason)

	profile.Department = "CSE"
	assert.Equal(t, ReasonDeadline, Evaluate(job, profile, evalNow, EligibilityOptions{CheckStatus: true}).Reason)

	job.Deadline = evalNow.Add(time.Hour)
	assert.Equal(t, ReasonInactive, Evaluate(job, profile, evalNow, EligibilityOptions{CheckStatus: true}).Reason)
	assert.True(t, Evaluate(job, profile, evalNow, EligibilityOptions{}).Eligible)
}

func TestEvaluateBacklogOnlyMattersWhenJobForbidsIt(t *testing.T) {
	job := eligibilityJob()
	job.NoBacklogs = false
	res := Evaluate(job, &EligibilityProfile{CGPA: "8", ActiveBacklog: true, Department: "CSE"}, evalNow, EligibilityOptions{})
	assert.True(t, res.Eligible)
}

func TestEvaluateIsTotalAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	grades := []string{"", "abc", "NaN", "Inf", "-1", "0", "6.99", "7", "7.0", "7.01", "10", " 8.5 ", "1e400"}
	deps := append([]string{"", "cse"}, models.Departments...)
	statuses := []models.JobStatus{models.JobStatusActive, models.JobStatusClosed, models.JobStatusDraft, ""}

	for i := 0; i < 2000; i++ {
		job := &models.Job{
			MinCGPA:     grades[rng.Intn(len(grades))],
			NoBacklogs:  rng.Intn(2) == 0,
			Departments: models.DepartmentList{deps[rng.Intn(len(deps))], deps[rng.Intn(len(deps))]},
			Deadline:    evalNow.Add(time.Duration(rng.Intn(200)-100) * time.Hour),
			Status:      statuses[rng.Intn(len(statuses))],
		}
		var profile *EligibilityProfile
		if rng.Intn(10) > 0 {
			profile = &EligibilityProfile{
				CGPA:          grades[rng.Intn(len(grades))],
				ActiveBacklog: rng.Intn(2) == 0,
				Department:    deps[rng.Intn(len(deps))],
			}
		}
		opts := EligibilityOptions{CheckStatus: rng.Intn(2) == 0}

		first := Evaluate(job, profile, evalNow, opts)
		second := Evaluate(job, profile, evalNow, opts)
		require.Equal(t, first, second)
		if first.Eligible {
			require.Empty(t, first.Reason)
		} else {
			require.NotEmpty(t, first.Reason, fmt.Sprintf("job=%+v profile=%+v", job, profile))
		}
	}
}

func TestEvaluateCGPAMonotonic(t *testing.T) {
	grades := []string{"abc", "0", "5.5", "6.99", "7.0", "7.5", "9.9"}
	for _, threshold := range grades {
		job := eligibilityJob()
		job.MinCGPA = threshold
		passed := false
		for _, g := range grades {
			res := Evaluate(job, &EligibilityProfile{CGPA: g, Department: "CSE"}, evalNow, EligibilityOptions{})
			failsCGPA := !res.Eligible && strings.HasPrefix(res.Reason, "CGPA")
			if passed {
				require.False(t, failsCGPA, "threshold %s grade %s newly failed", threshold, g)
			}
			if !failsCGPA {
				passed = true
			}
		}
	}
}

func TestNormalizeProfile(t *testing.T) {
	assert.Nil(t, NormalizeProfile(nil))

	p := NormalizeProfile(&models.UserProfile{CurrentCGPA: "8.4", ActiveBacklog: "Yes", Department: " ECE "})
	require.NotNil(t, p)
	assert.True(t, p.ActiveBacklog)
	assert.Equal(t, "ECE", p.Department)

	assert.False(t, NormalizeProfile(&models.UserProfile{ActiveBacklog: "No"}).ActiveBacklog)
}
