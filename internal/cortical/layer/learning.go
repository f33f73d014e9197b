package layer

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/htm-cortex/layer/internal/cortical/inhibition"
	"github.com/htm-cortex/layer/internal/cortical/synapse"
	"github.com/htm-cortex/layer/internal/domain/htm"
)

// segOwnerParams is the subset of ProximalParams/DistalParams the
// shared segment-learning procedure needs, independent of which
// SynapseGraph owns the segment.
type segOwnerParams struct {
	MaxSegments       int
	MaxSynapseCount   int
	NewSynapseCount   int
	LearnThreshold    int
	PermInit          float64
	PermConnected     float64
}

func (p ProximalParams) asOwner() segOwnerParams {
	return segOwnerParams{p.MaxSegments, p.MaxSynapseCount, p.NewSynapseCount, p.LearnThreshold, p.PermInit, p.PermConnected}
}

func (p DistalParams) asOwner() segOwnerParams {
	return segOwnerParams{p.MaxSegments, p.MaxSynapseCount, p.NewSynapseCount, p.LearnThreshold, p.PermInit, p.PermConnected}
}

// Learn runs the learning engine: distal segment learning
// against the previous depolarise's state, punishment of
// mis-predicting segments, and (when engaged) proximal segment
// learning with the stable-input reinforcement pass. Applies
// bulk_learn in the fixed order distal-learn, distal-punish,
// proximal-learn, proximal-stable-reinforce, then rolls duty cycles,
// boosts, and the inhibition radius forward.
func (l *Layer) Learn() error {
	if !l.activated {
		return htm.NewLayerError(htm.LayerErrStateSequencing, "layer: learn called before the first activate")
	}

	if err := l.learnDistal(); err != nil {
		return err
	}
	if err := l.punishDistal(); err != nil {
		return err
	}
	if l.active.engaged {
		if err := l.learnProximal(); err != nil {
			return err
		}
	}

	l.boostState.UpdateDutyCycle(l.active.activeColumns, l.params.DutyCyclePeriod)
	if l.params.BoostActiveEvery > 0 && l.timestep%l.params.BoostActiveEvery == 0 {
		if err := l.boostState.RecomputeBoosts(l.columnTopo, l.inhibitionRadius, l.params.BoostActiveDutyRatio); err != nil {
			return err
		}
	}
	if l.params.InhRadiusEvery > 0 && l.timestep%l.params.InhRadiusEvery == 0 {
		r, err := inhibition.RecomputeRadius(l.proximal, l.params.NumColumns(), l.inputTopo, l.columnTopo, l.params.Proximal.PermConnected)
		if err == nil {
			l.inhibitionRadius = r
		}
	}
	return nil
}

func (l *Layer) learnDistal() error {
	owner := l.params.Distal.asOwner()
	var updates []synapse.Update
	for _, cell := range l.active.learningCells {
		var well *synapse.Path
		if p, ok := l.distState.wellMatchingSegments[cell]; ok {
			well = &p
		}
		u := l.learnSegmentFor(l.distal, cell, well, l.distState.activeSources, l.distState.learnableSources, owner)
		if u != nil {
			updates = append(updates, *u)
		}
	}
	if err := l.distal.BulkLearn(updates, l.distState.activeSources, l.params.Distal.PermInc, l.params.Distal.PermDec, l.params.Distal.PermInit); err != nil {
		return htm.NewLayerError(htm.LayerErrPrecondition, err.Error())
	}
	return nil
}

// punishDistal implements punishment rule: cells predicted
// by the depolarise before last (priorDistState) that are no longer
// predicted by the most recent depolarise (distState) and did not
// actually become active get their prior matching segment punished.
func (l *Layer) punishDistal() error {
	if !l.params.Distal.Punish {
		return nil
	}
	var updates []synapse.Update
	for cell := range l.priorDistState.predictedCells {
		if _, stillPredicted := l.distState.predictedCells[cell]; stillPredicted {
			continue
		}
		if _, active := l.active.activeCells[cell]; active {
			continue
		}
		if p, ok := l.priorDistState.matchingSegments[cell]; ok {
			updates = append(updates, synapse.Update{Target: p, Op: synapse.OpPunish})
		}
	}
	if err := l.distal.BulkLearn(updates, l.priorDistState.activeSources, 0, l.params.Distal.PermPunish, 0); err != nil {
		return htm.NewLayerError(htm.LayerErrPrecondition, err.Error())
	}
	return nil
}

func (l *Layer) learnProximal() error {
	p := l.params.Proximal
	owner := p.asOwner()
	learnableFF := l.active.inFFBits
	if l.isHigherLevel() {
		learnableFF = l.active.inStableFFBits
	}

	columns := sortedIntKeys(l.active.activeColumns)
	var updates []synapse.Update
	targets := make(map[int]synapse.Path, len(columns))
	for _, col := range columns {
		cell := CellID{Column: col, Index: 0}
		var well *synapse.Path
		if wp, ok := l.active.wellMatchingProx[col]; ok {
			well = &wp
		}
		u := l.learnSegmentFor(l.proximal, cell, well, l.active.inFFBits, learnableFF, owner)
		if u != nil {
			updates = append(updates, *u)
			targets[col] = u.Target
		}
	}
	if err := l.proximal.BulkLearn(updates, l.active.inFFBits, p.PermInc, p.PermDec, p.PermInit); err != nil {
		return htm.NewLayerError(htm.LayerErrPrecondition, err.Error())
	}

	if p.PermStableInc > p.PermInc {
		var reinforce []synapse.Update
		for _, col := range columns {
			if target, ok := targets[col]; ok {
				reinforce = append(reinforce, synapse.Update{Target: target, Op: synapse.OpReinforce})
			}
		}
		if err := l.proximal.BulkLearn(reinforce, l.active.inStableFFBits, p.PermStableInc-p.PermInc, p.PermDec, 0); err != nil {
			return htm.NewLayerError(htm.LayerErrPrecondition, err.Error())
		}
	}
	return nil
}

// learnSegmentFor implements the shared segment-learning-map procedure
// of steps 1-6, used for both distal and proximal learning.
// It returns nil when the cell should be skipped (no well/best match
// found and too few learnable sources to seed a fresh segment).
func (l *Layer) learnSegmentFor(graph *synapse.Graph, cell CellID, wellMatching *synapse.Path, activeSources, learnableSources map[int]struct{}, owner segOwnerParams) *synapse.Update {
	if wellMatching != nil {
		return &synapse.Update{Target: *wellMatching, Op: synapse.OpLearn}
	}

	segs := graph.SegmentIndices(cell.Column, cell.Index)
	bestIdx, bestCount := -1, -1
	for _, idx := range segs {
		path := synapse.Path{Column: cell.Column, Cell: cell.Index, Segment: idx}
		count := 0
		for src := range graph.InSynapses(path) {
			if _, active := activeSources[src]; active {
				count++
			}
		}
		if count >= owner.LearnThreshold && count > bestCount {
			bestCount = count
			bestIdx = idx
		}
	}

	var segIdx int
	var growN int
	var existing map[int]float64
	isNewSegment := bestIdx < 0
	var culledPath *synapse.Path

	if !isNewSegment {
		segIdx = bestIdx
		growN = owner.NewSynapseCount - bestCount
		existing = graph.InSynapses(synapse.Path{Column: cell.Column, Cell: cell.Index, Segment: segIdx})
	} else if len(segs) < owner.MaxSegments {
		segIdx = firstFreeIndex(segs, owner.MaxSegments)
		growN = owner.NewSynapseCount
	} else {
		idx, path := l.chooseCullTarget(graph, cell, segs, owner.PermConnected)
		segIdx = idx
		culledPath = &path
		growN = owner.NewSynapseCount
	}

	rng := l.rng.split()
	grown := sampleLearnableSources(learnableSources, growN, existing, rng)
	if isNewSegment && len(grown) < owner.LearnThreshold {
		return nil
	}
	if len(grown) > owner.MaxSynapseCount {
		grown = grown[:owner.MaxSynapseCount]
	}

	var die []int
	if culledPath != nil {
		for src := range graph.InSynapses(*culledPath) {
			die = append(die, src)
		}
	} else if existing != nil {
		die = excessLowPermanenceSources(existing, len(grown), owner.MaxSynapseCount)
	}

	return &synapse.Update{
		Target: synapse.Path{Column: cell.Column, Cell: cell.Index, Segment: segIdx},
		Op:     synapse.OpLearn,
		Grow:   grown,
		Die:    die,
	}
}

// firstFreeIndex returns the lowest segment index in [0, maxSegments)
// not already present in segs, for appending a freshly grown segment.
func firstFreeIndex(segs []int, maxSegments int) int {
	used := make(map[int]bool, len(segs))
	for _, s := range segs {
		used[s] = true
	}
	for i := 0; i < maxSegments; i++ {
		if !used[i] {
			return i
		}
	}
	return len(segs)
}

// chooseCullTarget picks the existing segment with the fewest
// connected synapses, tie-broken by fewest total synapses then lowest
// index.
func (l *Layer) chooseCullTarget(graph *synapse.Graph, cell CellID, segs []int, permConnected float64) (int, synapse.Path) {
	type cand struct {
		idx       int
		connected int
		total     int
	}
	cands := make([]cand, 0, len(segs))
	for _, idx := range segs {
		path := synapse.Path{Column: cell.Column, Cell: cell.Index, Segment: idx}
		connected := len(graph.SourcesConnectedTo(path, permConnected))
		total := graph.SynapseCount(path)
		cands = append(cands, cand{idx, connected, total})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].connected != cands[j].connected {
			return cands[i].connected < cands[j].connected
		}
		if cands[i].total != cands[j].total {
			return cands[i].total < cands[j].total
		}
		return cands[i].idx < cands[j].idx
	})
	chosen := cands[0].idx
	path := synapse.Path{Column: cell.Column, Cell: cell.Index, Segment: chosen}
	graph.DeleteTarget(path)
	return chosen, path
}

// sampleLearnableSources samples n sources from pool with replacement,
// then dedups and drops sources already present on the target segment,
// matching step 3 ("may be fewer than requested").
func sampleLearnableSources(pool map[int]struct{}, n int, existing map[int]float64, rng *rand.Rand) []int {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	slice := make([]int, 0, len(pool))
	for p := range pool {
		slice = append(slice, p)
	}
	sort.Ints(slice)

	picked := make(map[int]struct{}, n)
	for i := 0; i < n; i++ {
		src := slice[rng.Intn(len(slice))]
		if _, already := existing[src]; already {
			continue
		}
		picked[src] = struct{}{}
	}
	out := make([]int, 0, len(picked))
	for p := range picked {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// excessLowPermanenceSources returns the sources to remove so that
// len(existing) + growCount does not exceed maxSynapseCount, picking
// the lowest-permanence existing synapses first.
func excessLowPermanenceSources(existing map[int]float64, growCount, maxSynapseCount int) []int {
	resulting := len(existing) + growCount
	if resulting <= maxSynapseCount {
		return nil
	}
	excess := resulting - maxSynapseCount
	type entry struct {
		src  int
		perm float64
	}
	entries := make([]entry, 0, len(existing))
	for src, perm := range existing {
		entries = append(entries, entry{src, perm})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].perm != entries[j].perm {
			return entries[i].perm < entries[j].perm
		}
		return entries[i].src < entries[j].src
	})
	if excess > len(entries) {
		excess = len(entries)
	}
	out := make([]int, excess)
	for i := 0; i < excess; i++ {
		out[i] = entries[i].src
	}
	return out
}
