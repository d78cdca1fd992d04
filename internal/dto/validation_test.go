package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobRequestValidation(t *testing.T) {
	v := NewValidator()
	req := JobRequest{Title: "SDE", Company: "Acme", JobType: "full-time", MinCGPA: "7.0", Departments: []string{"CSE", "IT"}, Deadline: time.Now()}
	assert.NoError(t, v.Struct(req))

	req.Departments = nil
	assert.Error(t, v.Struct(req))

	req.Departments = []string{"CSE", "Physics"}
	assert.Error(t, v.Struct(req))

	req.Departments = []string{"CSE"}
	req.MinCGPA = "seven"
	assert.Error(t, v.Struct(req))
}

func TestProfileRequestValidation(t *testing.T) {
	v := NewValidator()
	g := "8.5"
	req := ProfileRequest{FullName: "Asha", Department: "ECE", Batch: "2025", RollNumber: "21EC001", CurrentCGPA: "8.5",
		ActiveBacklog: "No", HistoryOfArrear: "No", SemesterGrades: []*string{&g, nil}}
	assert.NoError(t, v.Struct(req))

	req.ActiveBacklog = "maybe"
	assert.Error(t, v.Struct(req))

	req.ActiveBacklog = "Yes"
	req.SemesterGrades = make([]*string, 9)
	assert.Error(t, v.Struct(req))
}

func TestAdminRoleRequestRejectsStudentRole(t *testing.T) {
	v := NewValidator()
	assert.Error(t, v.Struct(AdminRoleRequest{Email: "a@college.edu", Role: "student", Name: "A"}))
	assert.NoError(t, v.Struct(AdminRoleRequest{Email: "a@college.edu", Role: "placement_officer", Name: "A"}))
}
