package synapse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(xs ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func TestInSynapsesEmptyForAbsentTarget(t *testing.T) {
	g := New()
	syn := g.InSynapses(Path{0, 0, 0})
	assert.NotNil(t, syn)
	assert.Empty(t, syn)
}

func TestBulkLearnGrowAndDelete(t *testing.T) {
	g := New()
	target := Path{Column: 3, Cell: 1, Segment: 0}

	err := g.BulkLearn([]Update{{
		Target: target,
		Op:     OpLearn,
		Grow:   []int{1, 2, 3},
	}}, set(), 0.05, 0.01, 0.16)
	require.NoError(t, err)
	assert.Equal(t, 3, g.SynapseCount(target))
	assert.InDelta(t, 0.16, g.InSynapses(target)[1], 1e-9)

	err = g.BulkLearn([]Update{{
		Target: target,
		Op:     OpLearn,
		Die:    []int{2},
	}}, set(1, 3), 0.05, 0.01, 0.16)
	require.NoError(t, err)
	syn := g.InSynapses(target)
	assert.Len(t, syn, 2)
	assert.InDelta(t, 0.21, syn[1], 1e-9) // active source reinforced
	assert.InDelta(t, 0.21, syn[3], 1e-9)
}

func TestBulkLearnDecaysInactiveSources(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1, 2}}}, set(), 0, 0, 0.5))

	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn}}, set(1), 0.04, 0.01, 0.16))
	syn := g.InSynapses(target)
	assert.InDelta(t, 0.54, syn[1], 1e-9)
	assert.InDelta(t, 0.49, syn[2], 1e-9)
}

func TestBulkLearnClampsPermanence(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1}}}, set(), 0, 0, 0.99))
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn}}, set(1), 0.5, 0, 0))
	assert.InDelta(t, 1.0, g.InSynapses(target)[1], 1e-9)

	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn}}, set(), 0, 5.0, 0))
	assert.InDelta(t, 0.0, g.InSynapses(target)[1], 1e-9)
}

func TestBulkLearnPunishOnlyDecaysActive(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1, 2}}}, set(), 0, 0, 0.5))

	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpPunish}}, set(1), 0, 0.1, 0))
	syn := g.InSynapses(target)
	assert.InDelta(t, 0.4, syn[1], 1e-9)
	assert.InDelta(t, 0.5, syn[2], 1e-9)
}

func TestBulkLearnReinforce(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1, 2}}}, set(), 0, 0, 0.5))

	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpReinforce}}, set(1), 0.1, 0.05, 0))
	syn := g.InSynapses(target)
	assert.InDelta(t, 0.6, syn[1], 1e-9)
	assert.InDelta(t, 0.45, syn[2], 1e-9)
}

func TestBulkLearnRejectsDuplicateTargets(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	err := g.BulkLearn([]Update{
		{Target: target, Op: OpLearn},
		{Target: target, Op: OpPunish},
	}, set(), 0, 0, 0)
	require.Error(t, err)
}

func TestBulkLearnRejectsGrowOfExistingSource(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1}}}, set(), 0, 0, 0.5))
	err := g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1}}}, set(), 0, 0, 0.5)
	require.Error(t, err)
}

func TestBulkLearnRejectsDieOfMissingSource(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	err := g.BulkLearn([]Update{{Target: target, Op: OpLearn, Die: []int{9}}}, set(), 0, 0, 0.5)
	require.Error(t, err)
}

func TestExcitationsRespectsStimulusThreshold(t *testing.T) {
	g := New()
	target := Path{2, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1, 2, 3, 4}}}, set(), 0, 0, 0.5))

	exc := g.Excitations(set(1, 2, 3), 0.2, 3)
	assert.Equal(t, 3, exc[target])

	exc = g.Excitations(set(1, 2), 0.2, 3)
	assert.NotContains(t, exc, target)
}

func TestExcitationsOnlyCountsConnectedSynapses(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1}}}, set(), 0, 0, 0.1))
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{2}}}, set(), 0, 0, 0.9))

	exc := g.Excitations(set(1, 2), 0.2, 1)
	assert.Equal(t, 1, exc[target])
}

func TestExcitationsAllSynapsesIgnoresConnection(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1}}}, set(), 0, 0, 0.01))

	exc := g.ExcitationsAllSynapses(set(1), 1)
	assert.Equal(t, 1, exc[target])
}

func TestSegmentIndicesOnlyCountsNonEmpty(t *testing.T) {
	g := New()
	require.NoError(t, g.BulkLearn([]Update{
		{Target: Path{5, 2, 0}, Op: OpLearn, Grow: []int{1}},
		{Target: Path{5, 2, 2}, Op: OpLearn, Grow: []int{1}},
	}, set(), 0, 0, 0.5))

	assert.Equal(t, []int{0, 2}, g.SegmentIndices(5, 2))
	assert.Empty(t, g.SegmentIndices(5, 1))
}

func TestDeleteTargetClearsReverseIndex(t *testing.T) {
	g := New()
	target := Path{0, 0, 0}
	require.NoError(t, g.BulkLearn([]Update{{Target: target, Op: OpLearn, Grow: []int{1, 2}}}, set(), 0, 0, 0.5))
	g.DeleteTarget(target)
	assert.Empty(t, g.TargetsConnectedFrom(1, 0))
	assert.False(t, g.HasSegment(target))
}
