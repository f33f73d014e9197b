// Package layer implements the per-timestep state machine of one HTM
// cortical layer: proximal overlap, column inhibition and boosting,
// within-column cell selection, winner-cell tracking, segment
// learning, and distal depolarisation. It owns the two synapse graphs
// (proximal and distal) and the active/distal state snapshots, and
// exposes the activate -> learn -> depolarise -> break lifecycle.
package layer

import (
	"github.com/htm-cortex/layer/internal/cortical/boost"
	"github.com/htm-cortex/layer/internal/cortical/synapse"
	"github.com/htm-cortex/layer/internal/cortical/topology"
	"github.com/htm-cortex/layer/internal/domain/htm"
)

// BreakKind selects which part of a layer's state an Break call resets.
type BreakKind int

const (
	BreakTM BreakKind = iota
	BreakTP
	BreakWinners
)

// Layer is the mutable state machine described above. The zero value
// is not usable; construct with New.
type Layer struct {
	params Parameters

	columnTopo *topology.Topology
	inputTopo  *topology.Topology

	proximal *synapse.Graph
	distal   *synapse.Graph

	boostState       *boost.State
	inhibitionRadius int
	rng              *stream

	timestep int

	active         *activeState // snapshot from the most recent activate
	distState      *distalState // snapshot from the most recent depolarise
	priorDistState *distalState // snapshot replaced by distState

	priorWinners        map[int]CellID
	priorActiveFraction float64
	priorActiveCells    map[CellID]struct{}

	activated   bool
	depolarised bool
}

// New constructs a layer from a validated parameter set, with an empty
// distal synapse graph and a proximal graph whose potential pools are
// seeded from ff_potential_radius / ff_init_frac.
func New(params Parameters) (*Layer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	columnTopo, err := topology.New(params.ColumnDimensions)
	if err != nil {
		return nil, htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
	}
	inputTopo, err := topology.New(params.InputDimensions)
	if err != nil {
		return nil, htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
	}
	boostState, err := boost.New(params.NumColumns(), params.MaxBoost)
	if err != nil {
		return nil, htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
	}

	l := &Layer{
		params:              params,
		columnTopo:          columnTopo,
		inputTopo:           inputTopo,
		proximal:            synapse.New(),
		distal:              synapse.New(),
		boostState:          boostState,
		inhibitionRadius:    1,
		rng:                 newStream(params.RandomSeed),
		distState:           emptyDistalState(),
		priorDistState:      emptyDistalState(),
		priorWinners:        make(map[int]CellID),
		priorActiveFraction: 0,
		priorActiveCells:    make(map[CellID]struct{}),
	}
	l.seedProximalPotentialPools()
	return l, nil
}

// seedProximalPotentialPools wires each column's proximal segment 0
// to a random subset of the input bits within ff_potential_radius of
// its mapped input coordinate, the classic HTM potential-pool
// initialisation: a fraction ff_init_frac of the candidate bits gets a
// synapse, split between ff_perm_init_hi (above perm_connected) and
// ff_perm_init_lo (below it) so a column starts partially connected.
func (l *Layer) seedProximalPotentialPools() {
	p := l.params.Proximal
	inputDims := l.inputTopo.Dimensions()
	longest := 0
	for _, d := range inputDims {
		if d > longest {
			longest = d
		}
	}
	radius := int(p.FFPotentialRadius * float64(longest))
	if radius < 1 {
		radius = 1
	}

	numColumns := l.params.NumColumns()
	inputWidth := l.params.InputWidth()
	for col := 0; col < numColumns; col++ {
		center := mapColumnToInputCoord(col, numColumns, inputWidth, l.columnTopo, l.inputTopo)
		candidates := l.inputTopo.Neighbours(center, radius, -1)
		if len(candidates) == 0 {
			continue
		}
		rng := l.rng.split()
		target := synapse.Path{Column: col, Cell: 0, Segment: 0}
		for _, bit := range candidates {
			if rng.Float64() >= p.FFInitFrac {
				continue
			}
			perm := p.FFPermInitLo
			if rng.Float64() < 0.5 {
				perm = p.FFPermInitHi
			}
			l.proximal.BulkLearn([]synapse.Update{
				{Target: target, Op: synapse.OpLearn, Grow: []int{bit}},
			}, map[int]struct{}{}, 0, 0, perm)
		}
	}
}

// mapColumnToInputCoord proportionally maps a column index onto a
// coordinate in the input topology, the same center-mapping used by
// classic spatial-pooler potential-pool initialisation.
func mapColumnToInputCoord(col, numColumns, inputWidth int, columnTopo, inputTopo *topology.Topology) []int {
	if numColumns <= 1 {
		idx := 0
		if inputWidth > 0 {
			idx = inputWidth / 2
		}
		coord, _ := inputTopo.CoordOf(idx)
		return coord
	}
	frac := float64(col) / float64(numColumns-1)
	idx := int(frac * float64(inputWidth-1))
	coord, err := inputTopo.CoordOf(idx)
	if err != nil {
		coord, _ = inputTopo.CoordOf(0)
	}
	return coord
}

// Timestep returns the current timestep (0 before the first activate).
func (l *Layer) Timestep() int { return l.timestep }

// State returns the read-only layer-state projection for the most
// recently completed activate/depolarise calls.
func (l *Layer) State() State {
	s := State{Timestep: l.timestep}
	if l.active != nil {
		s.ActiveColumns = sortedIntKeys(l.active.activeColumns)
		s.BurstingColumns = sortedIntKeys(l.active.burstingColumns)
		s.ActiveCells = cellSetKeys(l.active.activeCells)
		for _, c := range l.active.winnerCells {
			s.WinnerCells = append(s.WinnerCells, c)
		}
		s.InFFBits = sortedIntKeys(l.active.inFFBits)
		s.InStableFFBits = sortedIntKeys(l.active.inStableFFBits)
		s.OutFFBits = sortedIntKeys(l.active.outFFBits)
		s.OutStableFFBits = sortedIntKeys(l.active.outStableFFBits)
	}
	if l.depolarised {
		s.PredictiveCells = cellSetKeys(l.distState.predictedCells)
	}
	s.PriorPredictiveCells = cellSetKeys(l.priorDistState.predictedCells)
	return s
}

// Break implements three interrupt variants.
func (l *Layer) Break(kind BreakKind) {
	switch kind {
	case BreakTM:
		l.distState = emptyDistalState()
		l.priorDistState = emptyDistalState()
		l.depolarised = false
	case BreakTP:
		if l.active != nil {
			l.active.tpExc = make(map[CellID]float64)
		}
	case BreakWinners:
		l.priorWinners = make(map[int]CellID)
		if l.active != nil {
			l.active.winnerCells = make(map[int]CellID)
		}
	}
}

// isHigherLevel reports whether this layer is NOT a first-level layer
// (proximal.max_segments == 1 identifies a first-level layer per
// step 2).
func (l *Layer) isHigherLevel() bool {
	return l.params.Proximal.MaxSegments != 1
}

func floorDiv2(v int) int {
	return v >> 1
}
