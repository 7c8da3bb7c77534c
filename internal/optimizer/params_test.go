package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(10)
	assert.Equal(t, 5, p.TargetMatches)
	assert.Equal(t, 1.0, p.BalanceWeight)
	assert.Equal(t, 0, p.MaxZeroRolesPerTeam)
	assert.True(t, p.CountOnlySeenRoles)
	assert.True(t, p.RequireMinParticipation)

	// Tiny corpora still target at least one match.
	assert.Equal(t, 1, DefaultParams(1).TargetMatches)
	assert.Equal(t, 1, DefaultParams(0).TargetMatches)
}

func TestParamsValidate(t *testing.T) {
	base := DefaultParams(4)
	assert.NoError(t, base.Validate(4))

	p := base
	p.TargetMatches = -1
	assert.Error(t, p.Validate(4))

	p = base
	p.TargetMatches = 5
	assert.Error(t, p.Validate(4))

	p = base
	p.TargetMatches = 4
	assert.NoError(t, p.Validate(4))

	p = base
	p.BalanceWeight = -0.5
	assert.Error(t, p.Validate(4))

	p = base
	p.MaxZeroRolesPerTeam = -1
	assert.Error(t, p.Validate(4))
}
