package boost

import (
	"testing"

	"github.com/htm-cortex/layer/internal/cortical/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitialisesFactorsToOne(t *testing.T) {
	s, err := New(8, 2.0)
	require.NoError(t, err)
	for _, f := range s.Factor {
		assert.Equal(t, 1.0, f)
	}
	assert.Len(t, s.DutyCycle, 8)
}

func TestNewRejectsBadInputs(t *testing.T) {
	_, err := New(0, 2.0)
	require.Error(t, err)
	_, err = New(4, 0.5)
	require.Error(t, err)
}

func TestUpdateDutyCycleTracksActivity(t *testing.T) {
	s, _ := New(3, 2.0)
	active := map[int]struct{}{1: {}}
	for i := 0; i < 1000; i++ {
		s.UpdateDutyCycle(active, 10)
	}
	assert.InDelta(t, 1.0, s.DutyCycle[1], 1e-6)
	assert.InDelta(t, 0.0, s.DutyCycle[0], 1e-6)
}

func TestMaxBoostOneKeepsFactorsAtOneForever(t *testing.T) {
	tp, err := topology.New([]int{10})
	require.NoError(t, err)
	s, err := New(10, 1.0)
	require.NoError(t, err)

	active := map[int]struct{}{0: {}, 1: {}}
	for i := 0; i < 50; i++ {
		s.UpdateDutyCycle(active, 10)
		require.NoError(t, s.RecomputeBoosts(tp, 2, 0.01))
	}
	for _, f := range s.Factor {
		assert.Equal(t, 1.0, f)
	}
}

func TestRecomputeBoostsRaisesStarvedColumn(t *testing.T) {
	tp, err := topology.New([]int{5})
	require.NoError(t, err)
	s, err := New(5, 3.0)
	require.NoError(t, err)

	// column 2 never active, its neighbours are
	active := map[int]struct{}{0: {}, 1: {}, 3: {}, 4: {}}
	for i := 0; i < 200; i++ {
		s.UpdateDutyCycle(active, 20)
	}
	require.NoError(t, s.RecomputeBoosts(tp, 2, 0.5))

	assert.Greater(t, s.Factor[2], 1.0)
	assert.LessOrEqual(t, s.Factor[2], 3.0)
}

func TestRecomputeBoostsRelaxesHealthyColumn(t *testing.T) {
	tp, err := topology.New([]int{4})
	require.NoError(t, err)
	s, err := New(4, 2.0)
	require.NoError(t, err)
	s.Factor[0] = 1.8

	active := map[int]struct{}{0: {}, 1: {}, 2: {}, 3: {}}
	for i := 0; i < 50; i++ {
		s.UpdateDutyCycle(active, 10)
	}
	require.NoError(t, s.RecomputeBoosts(tp, 1, 0.01))
	assert.Less(t, s.Factor[0], 1.8)
	assert.GreaterOrEqual(t, s.Factor[0], 1.0)
}
