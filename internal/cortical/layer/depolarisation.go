package layer

import (
	"github.com/htm-cortex/layer/internal/domain/htm"
)

// Depolarise runs the depolarisation engine: it builds the
// distal source vector for the step that just activated, computes
// distal excitation, marks predicted cells for the next activate, and
// rolls distState forward, preserving the replaced value as
// priorDistState for punishment.
func (l *Layer) Depolarise(distalFFBits, apicalFBBits, apicalFBWCBits []int) error {
	if !l.activated {
		return htm.NewLayerError(htm.LayerErrStateSequencing, "layer: depolarise called before the first activate")
	}

	activeSources := make(map[int]struct{})
	learnableSources := make(map[int]struct{})

	if l.params.LateralSynapses {
		for c := range l.active.activeCells {
			activeSources[c.BitOf(l.params.Depth)] = struct{}{}
		}
		for _, w := range l.active.winnerCells {
			learnableSources[w.BitOf(l.params.Depth)] = struct{}{}
		}
	}

	lateralWidth := l.params.LateralWidth()
	motorWidth := l.params.MotorWidth()
	for _, b := range distalFFBits {
		activeSources[lateralWidth+b] = struct{}{}
		learnableSources[lateralWidth+b] = struct{}{}
	}

	if l.params.UseFeedback {
		topdownOffset := lateralWidth + motorWidth
		for _, b := range apicalFBBits {
			activeSources[topdownOffset+b] = struct{}{}
		}
		for _, b := range apicalFBWCBits {
			learnableSources[topdownOffset+b] = struct{}{}
		}
	}

	distal := l.params.Distal
	counts := l.distal.Excitations(activeSources, distal.PermConnected, distal.StimulusThreshold)
	wellCounts := l.distal.Excitations(activeSources, distal.PermConnected, distal.NewSynapseCount)

	next := emptyDistalState()
	next.activeSources = activeSources
	next.learnableSources = learnableSources

	bestExc := make(map[CellID]int)
	for p, c := range counts {
		cell := CellID{Column: p.Column, Index: p.Cell}
		if cur, ok := bestExc[cell]; !ok || c > cur {
			bestExc[cell] = c
			next.matchingSegments[cell] = p
		}
	}
	for cell, c := range bestExc {
		next.cellExcitation[cell] = float64(c)
		next.predictedCells[cell] = struct{}{}
	}

	wellBest := make(map[CellID]int)
	for p, c := range wellCounts {
		cell := CellID{Column: p.Column, Index: p.Cell}
		if cur, ok := wellBest[cell]; !ok || c > cur {
			wellBest[cell] = c
			next.wellMatchingSegments[cell] = p
		}
	}

	l.priorDistState = l.distState
	l.distState = next
	l.depolarised = true
	return nil
}
