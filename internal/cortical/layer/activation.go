package layer

import (
	"sort"

	"github.com/htm-cortex/layer/internal/cortical/inhibition"
	"github.com/htm-cortex/layer/internal/cortical/synapse"
	"github.com/htm-cortex/layer/internal/domain/htm"
)

// Activate runs the activation engine for one timestep:
// proximal overlap, engagement gating, temporal-pooling accumulation,
// column inhibition, within-column cell selection, and winner
// tracking. It advances the timestep by exactly one.
func (l *Layer) Activate(ffBits, stableFFBits []int) error {
	inputWidth := l.params.InputWidth()
	for _, b := range ffBits {
		if b < 0 || b >= inputWidth {
			return htm.NewLayerError(htm.LayerErrPrecondition, "layer: ff_bits contains an index out of range")
		}
	}
	ffSet := intSet(ffBits)
	stableSet := intSet(stableFFBits)
	for b := range stableSet {
		if _, ok := ffSet[b]; !ok {
			return htm.NewLayerError(htm.LayerErrPrecondition, "layer: stable_ff_bits is not a subset of ff_bits")
		}
	}

	rawExc, bestSeg, wellSeg := l.proximalExcitation(ffSet)

	engaged, newlyEngaged := l.engagementGate(len(stableSet), len(ffSet))

	tpExc := l.decayedPriorTPExc(newlyEngaged)

	colExc := l.columnExcitation(rawExc, wellSeg, engaged)

	absExc := l.absoluteCellExcitation(colExc, tpExc)

	activeColumns, activeFraction := l.selectActiveColumns(absExc, newlyEngaged, engaged)

	burstingColumns := make(map[int]struct{})
	activeCells := make(map[CellID]struct{})
	winnerCells := make(map[int]CellID)

	for _, col := range activeColumns {
		cellsInCol, winner, bursting := l.selectCellsInColumn(col, tpExc, newlyEngaged)
		for _, c := range cellsInCol {
			activeCells[c] = struct{}{}
		}
		winnerCells[col] = winner
		if bursting {
			burstingColumns[col] = struct{}{}
		}
	}

	learningCells := l.computeLearningCells(winnerCells, newlyEngaged)

	nextTPExc := l.computeNextTPExc(tpExc, activeCells, newlyEngaged)

	outFFBits := make(map[int]struct{}, len(activeCells))
	outStableFFBits := make(map[int]struct{})
	for c := range activeCells {
		bit := c.BitOf(l.params.Depth)
		outFFBits[bit] = struct{}{}
		if _, burst := burstingColumns[c.Column]; !burst {
			outStableFFBits[bit] = struct{}{}
		}
	}

	l.active = &activeState{
		inFFBits:         ffSet,
		inStableFFBits:   stableSet,
		activeColumns:    intSetFromSlice(activeColumns),
		burstingColumns:  burstingColumns,
		activeCells:      activeCells,
		winnerCells:       winnerCells,
		learningCells:    learningCells,
		tpExc:            nextTPExc,
		engaged:          engaged,
		newlyEngaged:     newlyEngaged,
		activeFraction:   activeFraction,
		wellMatchingProx: wellSeg,
		bestMatchingProx: bestSeg,
		outFFBits:        outFFBits,
		outStableFFBits:  outStableFFBits,
	}

	l.priorWinners = l.active.winnerCells
	l.priorActiveCells = l.active.activeCells
	l.priorActiveFraction = l.active.activeFraction

	l.timestep++
	l.activated = true
	l.depolarised = false
	return nil
}

func intSetFromSlice(xs []int) map[int]struct{} { return intSet(xs) }

// proximalExcitation reduces the proximal synapse graph's per-segment
// excitations to per-column values: the threshold-filtered raw
// excitation used for column selection, the best (any excitation)
// matching segment, and the well-matching segment.
func (l *Layer) proximalExcitation(ffSet map[int]struct{}) (raw map[int]float64, best, well map[int]synapse.Path) {
	p := l.params.Proximal
	rawCounts := l.proximal.Excitations(ffSet, p.PermConnected, p.StimulusThreshold)
	anyCounts := l.proximal.Excitations(ffSet, p.PermConnected, 0)
	wellCounts := l.proximal.Excitations(ffSet, p.PermConnected, p.NewSynapseCount)

	raw = reduceToColumnMax(rawCounts)
	best = reduceToColumnBestPath(anyCounts)
	well = reduceToColumnBestPath(wellCounts)
	return
}

func reduceToColumnMax(counts map[synapse.Path]int) map[int]float64 {
	out := make(map[int]float64, len(counts))
	for p, c := range counts {
		if cur, ok := out[p.Column]; !ok || float64(c) > cur {
			out[p.Column] = float64(c)
		}
	}
	return out
}

func reduceToColumnBestPath(counts map[synapse.Path]int) map[int]synapse.Path {
	best := make(map[int]int)
	out := make(map[int]synapse.Path)
	for p, c := range counts {
		if cur, ok := best[p.Column]; !ok || c > cur {
			best[p.Column] = c
			out[p.Column] = p
		}
	}
	return out
}

// engagementGate implements step 2.
func (l *Layer) engagementGate(stableCount, ffCount int) (engaged, newlyEngaged bool) {
	firstLevel := !l.isHigherLevel()
	if firstLevel {
		return true, true
	}
	engaged = float64(stableCount) > l.params.StableInbitFracThreshold*float64(ffCount)
	newlyEngaged = engaged && !l.priorEngagedOrFalse()
	return engaged, newlyEngaged
}

func (l *Layer) priorEngagedOrFalse() bool {
	if l.active == nil {
		return false
	}
	return l.active.engaged
}

// decayedPriorTPExc implements step 3.
func (l *Layer) decayedPriorTPExc(newlyEngaged bool) map[CellID]float64 {
	out := make(map[CellID]float64)
	if newlyEngaged || l.active == nil {
		return out
	}
	for c, v := range l.active.tpExc {
		nv := v - l.params.TemporalPoolingFall
		if nv > 0 {
			out[c] = nv
		}
	}
	return out
}

// columnExcitation implements step 4.
func (l *Layer) columnExcitation(raw map[int]float64, wellSeg map[int]synapse.Path, engaged bool) map[int]float64 {
	out := make(map[int]float64, len(raw))
	for col, v := range raw {
		if !engaged {
			if _, ok := wellSeg[col]; !ok {
				continue
			}
		}
		out[col] = v * l.boostState.Factor[col]
	}
	return out
}

// absoluteCellExcitation implements step 5.
func (l *Layer) absoluteCellExcitation(colExc map[int]float64, tpExc map[CellID]float64) map[CellID]float64 {
	depth := l.params.Depth
	abs := make(map[CellID]float64)

	for col, base := range colExc {
		for ci := 0; ci < depth; ci++ {
			c := CellID{Column: col, Index: ci}
			v := base
			if tv, ok := tpExc[c]; ok {
				v += tv
			}
			if l.params.DistalVsProximalWeight != 0 {
				if dv, ok := l.distState.cellExcitation[c]; ok {
					v += l.params.DistalVsProximalWeight * dv
				}
			}
			abs[c] = v
		}
	}

	if l.params.SpontaneousActivation {
		for c, dv := range l.distState.cellExcitation {
			if _, exists := abs[c]; exists {
				continue
			}
			v := l.params.DistalVsProximalWeight * dv
			if tv, ok := tpExc[c]; ok {
				v += tv
			}
			abs[c] = v
		}
	}
	return abs
}

// selectActiveColumns implements step 6.
func (l *Layer) selectActiveColumns(abs map[CellID]float64, newlyEngaged, engaged bool) ([]int, float64) {
	colMax := make(map[int]float64)
	for c, v := range abs {
		if cur, ok := colMax[c.Column]; !ok || v > cur {
			colMax[c.Column] = v
		}
	}

	activationLevel := l.params.ActivationLevel
	if !newlyEngaged && engaged {
		activationLevel = l.priorActiveFraction + 0.5*l.params.ActivationLevel
		if activationLevel > l.params.ActivationLevelMax {
			activationLevel = l.params.ActivationLevelMax
		}
	}

	nOn := inhibition.TargetActiveCount(activationLevel, l.params.NumColumns())

	var active []int
	if l.params.GlobalInhibition {
		active = inhibition.Global(colMax, l.params.NumColumns(), nOn)
	} else {
		active, _ = inhibition.Local(colMax, l.columnTopo, l.inhibitionRadius, l.params.InhibitionBaseDistance, nOn)
	}

	fraction := float64(len(active)) / float64(l.params.NumColumns())
	return active, fraction
}

// distalContextScore computes a single cell's within-column context
// score for step 7, before adding tp-exc.
func (l *Layer) distalContextScore(c CellID) float64 {
	distal := l.params.Distal
	if v, predicted := l.distState.cellExcitation[c]; predicted {
		return v
	}
	if prevWinner, ok := l.priorWinners[c.Column]; ok && prevWinner == c {
		return float64(floorDiv2(distal.LearnThreshold))
	}

	segs := l.distal.SegmentIndices(c.Column, c.Index)
	if len(segs) == 0 {
		return 0
	}
	for _, segIdx := range segs {
		path := synapse.Path{Column: c.Column, Cell: c.Index, Segment: segIdx}
		syn := l.distal.InSynapses(path)
		count := 0
		for src := range syn {
			if _, active := l.distState.activeSources[src]; active {
				count++
			}
		}
		if count >= distal.LearnThreshold {
			return float64(floorDiv2(distal.LearnThreshold))
		}
	}
	return -float64(floorDiv2(distal.LearnThreshold)) * float64(len(segs))
}

// selectCellsInColumn implements steps 7-8, returning the
// set of active cells in the column, its winner, and whether it
// should be classified as bursting per the separate classification
// rule of step 8.
func (l *Layer) selectCellsInColumn(col int, tpExc map[CellID]float64, newlyEngaged bool) (cells []CellID, winner CellID, bursting bool) {
	depth := l.params.Depth
	scores := make([]float64, depth)
	for ci := 0; ci < depth; ci++ {
		c := CellID{Column: col, Index: ci}
		score := l.distalContextScore(c)
		if tv, ok := tpExc[c]; ok {
			score += tv
		}
		scores[ci] = score
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var best []int
	secondScore := negInf
	for ci, s := range scores {
		if s == maxScore {
			best = append(best, ci)
		} else if s > secondScore {
			secondScore = s
		}
	}

	prevWinner, hadPrevWinner := l.priorWinners[col]
	winnerIdx := best[0]
	if hadPrevWinner && prevWinner.Column == col && contains(best, prevWinner.Index) {
		winnerIdx = prevWinner.Index
	} else if len(best) > 1 {
		rng := l.rng.split()
		winnerIdx = best[rng.Intn(len(best))]
	}
	winner = CellID{Column: col, Index: winnerIdx}

	distal := l.params.Distal
	switch {
	case maxScore < float64(distal.StimulusThreshold):
		cells = allCells(col, depth)
	case maxScore-secondScore >= l.params.DominanceMargin:
		for _, ci := range best {
			cells = append(cells, CellID{Column: col, Index: ci})
		}
	default:
		for ci, s := range scores {
			if s >= float64(distal.StimulusThreshold) {
				cells = append(cells, CellID{Column: col, Index: ci})
			}
		}
	}

	continuingTP := !newlyEngaged && hadPrevWinner && prevWinner == winner
	if continuingTP {
		bursting = len(cells) == depth
	} else {
		_, predicted := l.distState.predictedCells[winner]
		_, inTP := tpExc[winner]
		bursting = !predicted && !inTP
	}
	return cells, winner, bursting
}

const negInf = -1e18

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func allCells(col, depth int) []CellID {
	out := make([]CellID, depth)
	for i := 0; i < depth; i++ {
		out[i] = CellID{Column: col, Index: i}
	}
	return out
}

// computeLearningCells implements step 9.
func (l *Layer) computeLearningCells(winners map[int]CellID, newlyEngaged bool) []CellID {
	var out []CellID
	for col, w := range winners {
		if !newlyEngaged {
			if pw, ok := l.priorWinners[col]; ok && pw == w {
				continue
			}
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// computeNextTPExc implements step 10.
func (l *Layer) computeNextTPExc(decayedPrior map[CellID]float64, activeCells map[CellID]struct{}, newlyEngaged bool) map[CellID]float64 {
	out := make(map[CellID]float64, len(decayedPrior))
	for c, v := range decayedPrior {
		out[c] = v
	}
	if !l.isHigherLevel() {
		return out
	}

	for c := range activeCells {
		isNew := newlyEngaged
		if !newlyEngaged {
			_, wasActive := l.priorActiveCells[c]
			isNew = !wasActive
		}
		if !isNew {
			continue
		}
		if cur, ok := out[c]; !ok || l.params.TemporalPoolingMaxExc > cur {
			out[c] = l.params.TemporalPoolingMaxExc
		}
	}
	return out
}
