package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepartment(t *testing.T) {
	for _, name := range KnownDepartments {
		got, err := ParseDepartment(name)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}

	got, err := ParseDepartment("  Finance ")
	require.NoError(t, err)
	assert.Equal(t, DepartmentFinance, got)
}

func TestParseDepartmentRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "legal", "hrx", "finance2", BroadcastSegment} {
		_, err := ParseDepartment(name)
		assert.ErrorIs(t, err, ErrUnknownDepartment, "name %q", name)
	}
}

func TestDepartmentTagVisibility(t *testing.T) {
	for _, dept := range KnownDepartments {
		assert.True(t, BroadcastTag().VisibleTo(dept))
	}

	tag := SingleTag(DepartmentHR)
	assert.True(t, tag.VisibleTo("hr"))
	assert.True(t, tag.VisibleTo("HR"))
	assert.False(t, tag.VisibleTo(DepartmentFinance))

	// The zero value is neither broadcast nor scoped and matches nothing.
	var zero DepartmentTag
	for _, dept := range KnownDepartments {
		assert.False(t, zero.VisibleTo(dept))
	}
	assert.False(t, zero.VisibleTo(""))
}

func TestDepartmentTagString(t *testing.T) {
	assert.Equal(t, BroadcastSegment, BroadcastTag().String())
	assert.Equal(t, DepartmentMarketing, SingleTag(DepartmentMarketing).String())
}
