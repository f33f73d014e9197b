package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParametersMatchesSpecDefaults(t *testing.T) {
	p := DefaultParameters([]int{50})
	assert.Equal(t, []int{1000}, p.ColumnDimensions)
	assert.Equal(t, 5, p.Depth)
	assert.True(t, p.LateralSynapses)
	assert.False(t, p.UseFeedback)
	assert.Equal(t, 1, p.Proximal.MaxSegments)
	assert.Equal(t, 5, p.Distal.MaxSegments)
	assert.Equal(t, 9, p.Distal.StimulusThreshold)
	assert.Equal(t, 0.02, p.ActivationLevel)
	assert.Equal(t, 4.0, p.DominanceMargin)
	assert.Equal(t, uint64(42), p.RandomSeed)
	require.NoError(t, p.Validate())
}

func TestValidateRejectsMissingInputDimensions(t *testing.T) {
	p := DefaultParameters(nil)
	err := p.Validate()
	require.Error(t, err)
}

func TestValidateRejectsNonPositiveDimension(t *testing.T) {
	p := DefaultParameters([]int{50})
	p.ColumnDimensions = []int{0}
	require.Error(t, p.Validate())
}

func TestValidateRejectsOutOfRangePermanence(t *testing.T) {
	p := DefaultParameters([]int{50})
	p.Proximal.PermConnected = 1.5
	require.Error(t, p.Validate())
}

func TestValidateRejectsNegativeThreshold(t *testing.T) {
	p := DefaultParameters([]int{50})
	p.Distal.StimulusThreshold = -1
	require.Error(t, p.Validate())
}

func TestNumColumnsAndInputWidth(t *testing.T) {
	p := DefaultParameters([]int{10, 10})
	p.ColumnDimensions = []int{4, 4}
	assert.Equal(t, 16, p.NumColumns())
	assert.Equal(t, 100, p.InputWidth())
	assert.Equal(t, 16*p.Depth, p.LateralWidth())
}
