package layer

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/htm-cortex/layer/internal/cortical/synapse"
)

// CellID identifies a single cell: its column and its depth index
// within that column.
type CellID struct {
	Column int
	Index  int
}

// BitOf returns the global feed-forward bit id for this cell:
// cell_id = column*depth + cell_index.
func (c CellID) BitOf(depth int) int {
	return c.Column*depth + c.Index
}

// CellOfBit decodes a global bit id back into a CellID.
func CellOfBit(bit, depth int) CellID {
	return CellID{Column: bit / depth, Index: bit % depth}
}

func intSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

// cellSetKeys returns the key set of a cell-id set, e.g. pred_cells
// from the per-cell distal excitation map.
func cellSetKeys(m map[CellID]struct{}) []CellID {
	return maps.Keys(m)
}

// activeState is the snapshot produced by Activate and consumed by
// Learn and (partially) by the next Depolarise call.
type activeState struct {
	inFFBits       map[int]struct{}
	inStableFFBits map[int]struct{}

	activeColumns    map[int]struct{}
	burstingColumns  map[int]struct{}
	activeCells      map[CellID]struct{}
	winnerCells      map[int]CellID // per column
	learningCells    []CellID
	tpExc            map[CellID]float64
	engaged          bool
	newlyEngaged     bool
	activeFraction   float64
	wellMatchingProx map[int]synapse.Path // per column
	bestMatchingProx map[int]synapse.Path // per column

	outFFBits       map[int]struct{}
	outStableFFBits map[int]struct{}
}

// distalState is the snapshot produced by Depolarise.
type distalState struct {
	activeSources    map[int]struct{} // on_bits (+motor+topdown) used for excitation matching
	learnableSources map[int]struct{} // on_lc_bits (+motor+topdown) used for synapse growth sampling

	cellExcitation       map[CellID]float64
	predictedCells       map[CellID]struct{}
	matchingSegments     map[CellID]synapse.Path
	wellMatchingSegments map[CellID]synapse.Path
}

func emptyDistalState() *distalState {
	return &distalState{
		activeSources:        make(map[int]struct{}),
		learnableSources:     make(map[int]struct{}),
		cellExcitation:       make(map[CellID]float64),
		predictedCells:       make(map[CellID]struct{}),
		matchingSegments:     make(map[CellID]synapse.Path),
		wellMatchingSegments: make(map[CellID]synapse.Path),
	}
}

// State is the read-only observation projection of a layer after a
// processing step, safe to copy and inspect without touching the
// layer's internal maps.
type State struct {
	Timestep             int
	ActiveColumns        []int
	BurstingColumns      []int
	ActiveCells          []CellID
	WinnerCells          []CellID
	PredictiveCells      []CellID // nil until the first depolarise of the current step
	PriorPredictiveCells []CellID
	InFFBits             []int
	InStableFFBits       []int
	OutFFBits            []int
	OutStableFFBits      []int
}

func sortedIntKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
