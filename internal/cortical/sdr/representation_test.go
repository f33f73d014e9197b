package sdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDistributionOfEmptySDRReportsMaximalGap(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	empty, _ := NewEmptySDR(64)

	dist := analyzer.AnalyzeDistribution(empty)
	assert.Zero(t, dist.UniformityScore)
	assert.Equal(t, 64, dist.MaxGap)
}

func TestAnalyzeDistributionOfClusteredBitsHasHighClusteringIndex(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	clustered, _ := NewSDR(64, []int{10, 11, 12, 13})

	dist := analyzer.AnalyzeDistribution(clustered)
	assert.Equal(t, 1.0, dist.ClusteringIndex)
}

func TestValidateRepresentationAcceptsWellFormedSDR(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	s, err := NewSDR(200, []int{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	result := analyzer.ValidateRepresentation(s)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
}

func TestValidateRepresentationFlagsUnsortedActiveBits(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	malformed := &SDR{Width: 16, ActiveBits: []int{5, 1}, Sparsity: 2.0 / 16.0}

	result := analyzer.ValidateRepresentation(malformed)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Issues)
}

func TestValidateRepresentationReportsNonCompliantSparsityAsIssueNotFailure(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	tooSparse, err := NewSDR(1000, []int{1})
	require.NoError(t, err)

	result := analyzer.ValidateRepresentation(tooSparse)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Issues)
}

func TestCalculateCapacityRejectsInvalidParameters(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	capacity := analyzer.CalculateCapacity(10, 20)
	assert.False(t, capacity.IsValid)
}

func TestCalculateCapacityFlagsHTMAndActivationLevelRecommendations(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	capacity := analyzer.CalculateCapacity(200, 8)

	require.True(t, capacity.IsValid)
	assert.True(t, capacity.RecommendedForHTM)
	assert.True(t, capacity.RecommendedForActivationLevel)
	assert.Greater(t, capacity.CombinationalCapacity, 0.0)
}

func TestCompareRepresentationsRejectsMismatchedWidths(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	a, _ := NewSDR(16, []int{1})
	b, _ := NewSDR(32, []int{1})

	result := analyzer.CompareRepresentations(a, b)
	assert.False(t, result.IsComparable)
}

func TestCompareRepresentationsReportsOverlapAndSizeDifference(t *testing.T) {
	analyzer := NewRepresentationAnalyzer(0.02, 0.05)
	a, _ := NewSDR(32, []int{1, 2, 3, 4})
	b, _ := NewSDR(32, []int{3, 4, 5})

	result := analyzer.CompareRepresentations(a, b)
	require.True(t, result.IsComparable)
	assert.Equal(t, 2, result.Overlap)
	assert.Equal(t, 1, result.SizeComparison["difference"])
}
