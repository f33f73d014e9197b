// Package synapse implements the sparse per-target-segment synapse
// store shared by proximal (column) and distal/apical (cell) dendrite
// segments. A Graph is a sparse map from a segment path to a map of
// source bit index to permanence, plus a reverse index for efficient
// excitation queries, and exposes the bulk permanence-update primitive
// the learning engine drives.
package synapse

import (
	"fmt"
	"sort"
)

// Path identifies a single segment: the owning column, the cell index
// within that column (0 for proximal/column segments), and the
// segment's index within the cell's ordered segment list.
type Path struct {
	Column  int
	Cell    int
	Segment int
}

func (p Path) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Column, p.Cell, p.Segment)
}

// Op names the three bulk-learning rules a SegUpdate can carry.
type Op int

const (
	// OpLearn reinforces active sources, decays the rest, and applies
	// any requested synapse growth/death.
	OpLearn Op = iota
	// OpPunish decays synapses whose source was active; no growth/death.
	OpPunish
	// OpReinforce adds a positive increment to active sources and
	// decays the rest; no growth/death. Used for the proximal
	// stable-input bonus pass.
	OpReinforce
)

// Update is a single segment-update record produced by the learning
// engine and consumed by Graph.BulkLearn.
type Update struct {
	Target Path
	Op     Op
	Grow   []int
	Die    []int
}

// Graph is a sparse store of segment -> (source bit -> permanence).
// The zero value is not usable; construct with New.
type Graph struct {
	segments map[Path]map[int]float64
	reverse  map[int]map[Path]struct{}
}

// New creates an empty synapse graph.
func New() *Graph {
	return &Graph{
		segments: make(map[Path]map[int]float64),
		reverse:  make(map[int]map[Path]struct{}),
	}
}

// InSynapses returns a copy of the segment's source->permanence
// mapping, or an empty (non-nil) map if the segment has no synapses.
func (g *Graph) InSynapses(target Path) map[int]float64 {
	out := make(map[int]float64, len(g.segments[target]))
	for src, perm := range g.segments[target] {
		out[src] = perm
	}
	return out
}

// SynapseCount returns the number of synapses on the target segment.
func (g *Graph) SynapseCount(target Path) int {
	return len(g.segments[target])
}

// HasSegment reports whether the target segment currently has any
// synapses at all (i.e. is "non-empty" for the max_segments invariant).
func (g *Graph) HasSegment(target Path) bool {
	return len(g.segments[target]) > 0
}

// SegmentIndices returns the sorted, currently-populated segment
// indices for the given (column, cell) owner.
func (g *Graph) SegmentIndices(column, cell int) []int {
	var out []int
	for p, syn := range g.segments {
		if p.Column == column && p.Cell == cell && len(syn) > 0 {
			out = append(out, p.Segment)
		}
	}
	sort.Ints(out)
	return out
}

// SourcesConnectedTo returns the source bit indices whose synapse on
// target has permanence >= pcon.
func (g *Graph) SourcesConnectedTo(target Path, pcon float64) []int {
	var out []int
	for src, perm := range g.segments[target] {
		if perm >= pcon {
			out = append(out, src)
		}
	}
	sort.Ints(out)
	return out
}

// TargetsConnectedFrom returns the segment paths that have a synapse
// from source with permanence >= pcon (the reverse-index query).
func (g *Graph) TargetsConnectedFrom(source int, pcon float64) []Path {
	var out []Path
	for p := range g.reverse[source] {
		if g.segments[p][source] >= pcon {
			out = append(out, p)
		}
	}
	return out
}

// Excitations computes, for every segment reachable from at least one
// active source, the number of its synapses with permanence >= pcon
// whose source is active. Segments whose count is below
// stimulusThreshold are omitted from the result.
func (g *Graph) Excitations(activeSources map[int]struct{}, pcon float64, stimulusThreshold int) map[Path]int {
	counts := make(map[Path]int)
	for src := range activeSources {
		for p := range g.reverse[src] {
			if g.segments[p][src] >= pcon {
				counts[p]++
			}
		}
	}
	for p, c := range counts {
		if c < stimulusThreshold {
			delete(counts, p)
		}
	}
	return counts
}

// ExcitationsAllSynapses is like Excitations but counts every synapse
// whose source is active regardless of permanence (pcon == 0 with no
// lower bound other than the synapse existing), used by the learning
// engine's "counting even disconnected" lookups and best-matching
// segment search.
func (g *Graph) ExcitationsAllSynapses(activeSources map[int]struct{}, stimulusThreshold int) map[Path]int {
	return g.Excitations(activeSources, 0, stimulusThreshold)
}

func (g *Graph) addSynapse(target Path, source int, perm float64) {
	syn, ok := g.segments[target]
	if !ok {
		syn = make(map[int]float64)
		g.segments[target] = syn
	}
	syn[source] = perm
	rev, ok := g.reverse[source]
	if !ok {
		rev = make(map[Path]struct{})
		g.reverse[source] = rev
	}
	rev[target] = struct{}{}
}

func (g *Graph) removeSynapse(target Path, source int) {
	if syn, ok := g.segments[target]; ok {
		delete(syn, source)
		if len(syn) == 0 {
			delete(g.segments, target)
		}
	}
	if rev, ok := g.reverse[source]; ok {
		delete(rev, target)
		if len(rev) == 0 {
			delete(g.reverse, source)
		}
	}
}

// DeleteTarget removes every synapse on target, e.g. when a segment is
// culled to make room for a freshly grown one.
func (g *Graph) DeleteTarget(target Path) {
	for src := range g.segments[target] {
		if rev, ok := g.reverse[src]; ok {
			delete(rev, target)
			if len(rev) == 0 {
				delete(g.reverse, src)
			}
		}
	}
	delete(g.segments, target)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BulkLearn applies a batch of segment updates sequentially. Two
// updates targeting the same segment are forbidden; every grow source
// must currently be absent from its target and every die source must
// currently be present.
func (g *Graph) BulkLearn(updates []Update, activeSources map[int]struct{}, pinc, pdec, pinit float64) error {
	seen := make(map[Path]struct{}, len(updates))
	for _, u := range updates {
		if _, dup := seen[u.Target]; dup {
			return fmt.Errorf("synapse: duplicate target %s in bulk_learn batch", u.Target)
		}
		seen[u.Target] = struct{}{}

		for _, src := range u.Grow {
			if _, exists := g.segments[u.Target][src]; exists {
				return fmt.Errorf("synapse: grow source %d already present on %s", src, u.Target)
			}
		}
		for _, src := range u.Die {
			if _, exists := g.segments[u.Target][src]; !exists {
				return fmt.Errorf("synapse: die source %d not present on %s", src, u.Target)
			}
		}

		switch u.Op {
		case OpLearn:
			g.applyPermanenceDelta(u.Target, activeSources, pinc, pdec)
			for _, src := range u.Grow {
				g.addSynapse(u.Target, src, clamp01(pinit))
			}
			for _, src := range u.Die {
				g.removeSynapse(u.Target, src)
			}
		case OpPunish:
			g.applyPunish(u.Target, activeSources, pdec)
		case OpReinforce:
			g.applyPermanenceDelta(u.Target, activeSources, pinc, pdec)
		default:
			return fmt.Errorf("synapse: unknown op %d for target %s", u.Op, u.Target)
		}
	}
	return nil
}

func (g *Graph) applyPermanenceDelta(target Path, activeSources map[int]struct{}, pinc, pdec float64) {
	syn, ok := g.segments[target]
	if !ok {
		return
	}
	for src, perm := range syn {
		if _, active := activeSources[src]; active {
			syn[src] = clamp01(perm + pinc)
		} else {
			syn[src] = clamp01(perm - pdec)
		}
	}
}

func (g *Graph) applyPunish(target Path, activeSources map[int]struct{}, pdec float64) {
	syn, ok := g.segments[target]
	if !ok {
		return
	}
	for src, perm := range syn {
		if _, active := activeSources[src]; active {
			syn[src] = clamp01(perm - pdec)
		}
	}
}
