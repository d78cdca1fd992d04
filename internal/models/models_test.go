package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentListValueScan(t *testing.T) {
	v, err := DepartmentList{"CSE", "IT"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "CSE,IT", v)

	var d DepartmentList
	require.NoError(t, d.Scan([]byte(" CSE ,,ECE")))
	assert.Equal(t, DepartmentList{"CSE", "ECE"}, d)
	assert.True(t, d.Contains("ECE"))
	assert.False(t, d.Contains("IT"))

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)
	assert.Error(t, d.Scan(42))
}

func TestRoleAndStatusEnums(t *testing.T) {
	assert.True(t, RolePlacementRep.IsAdminRole())
	assert.False(t, RoleStudent.IsAdminRole())
	assert.False(t, Role("dean").Valid())
	assert.True(t, ApplicationInterviewScheduled.Valid())
	assert.False(t, ApplicationStatus("withdrawn").Valid())
	assert.True(t, ApplicationRejected.Terminal())
	assert.True(t, ValidDepartment("CSBS"))
	assert.False(t, ValidDepartment("cse"))
}

func TestCapabilitySetListIsStable(t *testing.T) {
	set := CapabilitySet{
		RoleCapability(RolePlacementRep): {},
		CapabilityStudent:                {},
		CapabilityAdmin:                  {},
	}
	assert.Equal(t, []Capability{CapabilityStudent, CapabilityAdmin, "role:placement_rep"}, set.List())
	assert.True(t, set.Has(CapabilityStudent, CapabilityAdmin))
	assert.False(t, set.Has(CapabilityAdminOnly))
	assert.True(t, set.HasAny(CapabilityAdminOnly, CapabilityAdmin))
}

func TestSemesterGrades(t *testing.T) {
	g1, g3 := "8.0", "7.5"
	p := &UserProfile{}
	p.SetSemesterGrades([]*string{&g1, nil, &g3})
	grades := p.SemesterGrades()
	assert.Equal(t, "8.0", *grades[0])
	assert.Nil(t, grades[1])
	assert.Equal(t, "7.5", *grades[2])
	assert.Nil(t, grades[7])
}
