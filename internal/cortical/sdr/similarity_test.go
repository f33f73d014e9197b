package sdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateAllSimilaritiesReportsEachMetric(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(32, []int{1, 2, 3, 4})
	b, _ := NewSDR(32, []int{3, 4, 5, 6})

	metrics := calc.CalculateAllSimilarities(a, b)
	require.True(t, metrics.IsValid)
	assert.Equal(t, 2, metrics.OverlapCount)
	assert.Greater(t, metrics.JaccardSimilarity, 0.0)
	assert.Greater(t, metrics.CosineSimilarity, 0.0)
}

func TestCalculateAllSimilaritiesRejectsMismatchedWidths(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(32, []int{1})
	b, _ := NewSDR(16, []int{1})

	metrics := calc.CalculateAllSimilarities(a, b)
	assert.False(t, metrics.IsValid)
	assert.NotEmpty(t, metrics.Error)
}

func TestCalculateAllSimilaritiesRejectsNilSDR(t *testing.T) {
	calc := NewSimilarityCalculator()
	b, _ := NewSDR(16, []int{1})

	metrics := calc.CalculateAllSimilarities(nil, b)
	assert.False(t, metrics.IsValid)
}

func TestDiceSimilarityOfIdenticalEmptySDRsIsOne(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewEmptySDR(16)
	b, _ := NewEmptySDR(16)
	assert.Equal(t, 1.0, calc.DiceSimilarity(a, b))
}

func TestHammingDistanceCountsNonOverlappingBits(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(16, []int{1, 2, 3})
	b, _ := NewSDR(16, []int{2, 3, 4})
	assert.Equal(t, 2, calc.HammingDistance(a, b))
}

func TestHammingDistanceRejectsMismatchedWidths(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(16, []int{1})
	b, _ := NewSDR(8, []int{1})
	assert.Equal(t, -1, calc.HammingDistance(a, b))
}

func TestEuclideanDistanceIsSqrtOfHammingDistance(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(16, []int{1, 2, 3})
	b, _ := NewSDR(16, []int{2, 3, 4})
	assert.InDelta(t, 1.4142, calc.EuclideanDistance(a, b), 0.001)
}

func TestBatchSimilarityProducesSymmetricMatrixWithUnitDiagonal(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(16, []int{1, 2})
	b, _ := NewSDR(16, []int{2, 3})
	c, _ := NewSDR(16, []int{8, 9})

	matrix, err := calc.BatchSimilarity([]*SDR{a, b, c}, OverlapMetric)
	require.NoError(t, err)
	assert.Equal(t, 1.0, matrix[0][0])
	assert.Equal(t, matrix[0][1], matrix[1][0])
	assert.Zero(t, matrix[0][2])
}

func TestBatchSimilarityRejectsMismatchedWidths(t *testing.T) {
	calc := NewSimilarityCalculator()
	a, _ := NewSDR(16, []int{1})
	b, _ := NewSDR(8, []int{1})
	_, err := calc.BatchSimilarity([]*SDR{a, b}, OverlapMetric)
	require.Error(t, err)
}

func TestAnalyzeSemanticPreservationScoresViolations(t *testing.T) {
	analyzer := NewSemanticSimilarityAnalyzer(0.5, 0.1)

	inA, _ := NewSDR(32, []int{1, 2, 3, 4})
	inB, _ := NewSDR(32, []int{1, 2, 3, 4})
	outA, _ := NewSDR(32, []int{10, 11, 12, 13})
	outB, _ := NewSDR(32, []int{20, 21, 22, 23})

	analysis, err := analyzer.AnalyzeSemanticPreservation([]*SDR{inA, inB}, []*SDR{outA, outB})
	require.NoError(t, err)
	assert.Equal(t, 1, analysis.SemanticViolations)
	assert.Zero(t, analysis.PreservationScore)
}

func TestAnalyzeSemanticPreservationRejectsMismatchedLengths(t *testing.T) {
	analyzer := NewSemanticSimilarityAnalyzer(0.5, 0.1)
	a, _ := NewSDR(16, []int{1})
	_, err := analyzer.AnalyzeSemanticPreservation([]*SDR{a}, []*SDR{})
	require.Error(t, err)
}

func TestTemporalSimilarityTrackerNeedsTwoSnapshotsForStability(t *testing.T) {
	tracker := NewTemporalSimilarityTracker(5)
	a, _ := NewSDR(16, []int{1, 2})
	b, _ := NewSDR(16, []int{2, 3})

	require.NoError(t, tracker.AddSnapshot(1, []*SDR{a, b}))
	assert.False(t, tracker.GetStabilityMetrics().HasSufficientData)

	require.NoError(t, tracker.AddSnapshot(2, []*SDR{a, b}))
	metrics := tracker.GetStabilityMetrics()
	assert.True(t, metrics.HasSufficientData)
	assert.Equal(t, 2, metrics.SnapshotCount)
}

func TestTemporalSimilarityTrackerRespectsWindowSize(t *testing.T) {
	tracker := NewTemporalSimilarityTracker(2)
	a, _ := NewSDR(16, []int{1, 2})
	b, _ := NewSDR(16, []int{2, 3})

	for i := int64(0); i < 5; i++ {
		require.NoError(t, tracker.AddSnapshot(i, []*SDR{a, b}))
	}

	assert.Equal(t, 2, tracker.GetStabilityMetrics().SnapshotCount)
}
