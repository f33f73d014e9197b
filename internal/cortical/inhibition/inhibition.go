// Package inhibition selects the small set of active columns for a
// timestep given per-column excitation, either by a single global
// top-N competition or by scanning columns and admitting each one
// against its local topological neighbourhood.
package inhibition

import (
	"math"
	"sort"

	"github.com/htm-cortex/layer/internal/cortical/synapse"
	"github.com/htm-cortex/layer/internal/cortical/topology"
)

// TargetActiveCount returns n_on = max(1, round(activationLevel *
// numColumns)), the number of columns inhibition should admit.
func TargetActiveCount(activationLevel float64, numColumns int) int {
	n := int(math.Round(activationLevel * float64(numColumns)))
	if n < 1 {
		n = 1
	}
	return n
}

// orderedCandidates returns the columns with positive excitation,
// sorted by excitation descending and ties broken by ascending column
// id. Columns absent from excitation (or with a non-positive value)
// have no proximal overlap and are never candidates, so that an empty
// input yields zero candidates rather than padding the result with
// columns that did not fire.
func orderedCandidates(excitation map[int]float64) []int {
	cand := make([]int, 0, len(excitation))
	for col, score := range excitation {
		if score > 0 {
			cand = append(cand, col)
		}
	}
	sort.Slice(cand, func(i, j int) bool {
		ei, ej := excitation[cand[i]], excitation[cand[j]]
		if ei != ej {
			return ei > ej
		}
		return cand[i] < cand[j]
	})
	return cand
}

// Global selects the top nOn columns by excitation, ties broken by
// ascending column id. Columns with zero or absent excitation are
// never selected, so an input with no proximal overlap anywhere
// yields zero active columns rather than nOn arbitrary ones. The
// result is sorted ascending.
func Global(excitation map[int]float64, numColumns, nOn int) []int {
	cand := orderedCandidates(excitation)
	if nOn > len(cand) {
		nOn = len(cand)
	}
	result := append([]int(nil), cand[:nOn]...)
	sort.Ints(result)
	return result
}

// Local scans columns with positive excitation in descending order
// and admits a candidate unless an already-admitted neighbour at a
// distance in (baseDistance, radius] strictly outranks it, until nOn columns are
// admitted or candidates are exhausted. Columns with zero or absent
// excitation are never candidates. The result is sorted ascending.
func Local(excitation map[int]float64, topo *topology.Topology, radius, baseDistance, nOn int) ([]int, error) {
	cand := orderedCandidates(excitation)
	admitted := make(map[int]bool, nOn)
	var result []int

	for _, col := range cand {
		if len(result) >= nOn {
			break
		}
		coord, err := topo.CoordOf(col)
		if err != nil {
			return nil, err
		}
		neighbours := topo.Neighbours(coord, radius, baseDistance)
		blocked := false
		for _, nb := range neighbours {
			if admitted[nb] && excitation[nb] > excitation[col] {
				blocked = true
				break
			}
		}
		if !blocked {
			admitted[col] = true
			result = append(result, col)
		}
	}
	sort.Ints(result)
	return result, nil
}

func avgOf(dims []int) float64 {
	sum := 0
	for _, d := range dims {
		sum += d
	}
	return float64(sum) / float64(len(dims))
}

// RecomputeRadius derives the inhibition radius from the average
// per-column span (in input-topology coordinates) of each column's
// connected proximal synapses, scaled onto the column topology.
// Called every inh_radius_every steps.
func RecomputeRadius(proximal *synapse.Graph, numColumns int, inputTopo, columnTopo *topology.Topology, permConnected float64) (int, error) {
	dims := inputTopo.Dimensions()
	var totalSpan float64
	counted := 0

	for col := 0; col < numColumns; col++ {
		target := synapse.Path{Column: col, Cell: 0, Segment: 0}
		connected := proximal.SourcesConnectedTo(target, permConnected)
		if len(connected) == 0 {
			continue
		}
		mins := make([]int, len(dims))
		maxs := make([]int, len(dims))
		for i := range dims {
			mins[i] = math.MaxInt
			maxs[i] = -1
		}
		for _, bit := range connected {
			coord, err := inputTopo.CoordOf(bit)
			if err != nil {
				return 0, err
			}
			for d, c := range coord {
				if c < mins[d] {
					mins[d] = c
				}
				if c > maxs[d] {
					maxs[d] = c
				}
			}
		}
		var span float64
		for d := range dims {
			span += float64(maxs[d] - mins[d] + 1)
		}
		span /= float64(len(dims))
		totalSpan += span
		counted++
	}

	if counted == 0 {
		return 1, nil
	}
	avgSpan := totalSpan / float64(counted)
	diameter := avgSpan * avgOf(columnTopo.Dimensions()) / avgOf(dims)
	radius := int(math.Round((diameter - 1) / 2))
	if radius < 1 {
		radius = 1
	}
	return radius, nil
}
