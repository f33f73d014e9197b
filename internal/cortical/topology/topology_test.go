package topology

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New([]int{4, 0, 2})
	require.Error(t, err)

	_, err = New([]int{4, -1})
	require.Error(t, err)
}

func TestSizeIsProductOfDims(t *testing.T) {
	tp, err := New([]int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, 20, tp.Size())
	assert.Equal(t, []int{4, 5}, tp.Dimensions())
}

func TestCoordIndexRoundTrip(t *testing.T) {
	tp, err := New([]int{4, 5, 3})
	require.NoError(t, err)

	for idx := 0; idx < tp.Size(); idx++ {
		coord, err := tp.CoordOf(idx)
		require.NoError(t, err)
		back, err := tp.IndexOf(coord)
		require.NoError(t, err)
		assert.Equal(t, idx, back)
	}
}

func TestCoordOfOutOfRange(t *testing.T) {
	tp, _ := New([]int{4})
	_, err := tp.CoordOf(-1)
	require.Error(t, err)
	_, err = tp.CoordOf(4)
	require.Error(t, err)
}

func TestIndexOfRejectsBadCoordinate(t *testing.T) {
	tp, _ := New([]int{4, 5})
	_, err := tp.IndexOf([]int{1})
	require.Error(t, err)
	_, err = tp.IndexOf([]int{4, 0})
	require.Error(t, err)
}

func TestCoordDistanceIsChebyshev(t *testing.T) {
	tp, _ := New([]int{10, 10})
	assert.Equal(t, 3, tp.CoordDistance([]int{0, 0}, []int{3, 1}))
	assert.Equal(t, 0, tp.CoordDistance([]int{5, 5}, []int{5, 5}))
}

func Test1DNeighboursAnnulus(t *testing.T) {
	tp, _ := New([]int{10})
	// disc radius 2 around column 5, excluding distance 0 (the column itself)
	got := tp.Neighbours([]int{5}, 2, 0)
	sort.Ints(got)
	assert.Equal(t, []int{3, 4, 6, 7}, got)

	// true annulus: keep only the ring at distance 2..3
	got = tp.Neighbours([]int{5}, 3, 1)
	sort.Ints(got)
	assert.Equal(t, []int{2, 3, 7, 8}, got)
}

func Test2DNeighboursClampedAtEdge(t *testing.T) {
	tp, _ := New([]int{3, 3})
	got := tp.Neighbours([]int{0, 0}, 1, 0)
	sort.Ints(got)
	// corner: only 3 neighbours exist within the grid
	idx01, _ := tp.IndexOf([]int{0, 1})
	idx10, _ := tp.IndexOf([]int{1, 0})
	idx11, _ := tp.IndexOf([]int{1, 1})
	want := []int{idx01, idx10, idx11}
	sort.Ints(want)
	assert.Equal(t, want, got)
}

func TestNeighboursExcludesSelfAtZeroRadius(t *testing.T) {
	tp, _ := New([]int{5, 5})
	got := tp.Neighbours([]int{2, 2}, 0, 0)
	assert.Empty(t, got)
}
