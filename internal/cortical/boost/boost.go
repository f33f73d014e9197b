// Package boost maintains the per-column rolling duty-cycle estimate
// and the boost factor that modulates proximal overlap before
// inhibition.
package boost

import (
	"fmt"
	"math"

	"github.com/htm-cortex/layer/internal/cortical/topology"
	"gonum.org/v1/gonum/floats"
)

// State holds the per-column duty cycle and boost factor vectors. The
// zero value is not usable; construct with New.
type State struct {
	DutyCycle []float64
	Factor    []float64
	maxBoost  float64
}

// New creates boost state for numColumns columns, with every boost
// factor initialised to 1.0 (no boosting applied yet).
func New(numColumns int, maxBoost float64) (*State, error) {
	if numColumns <= 0 {
		return nil, fmt.Errorf("boost: numColumns must be positive, got %d", numColumns)
	}
	if maxBoost < 1.0 {
		return nil, fmt.Errorf("boost: maxBoost must be >= 1.0, got %f", maxBoost)
	}
	factor := make([]float64, numColumns)
	for i := range factor {
		factor[i] = 1.0
	}
	return &State{
		DutyCycle: make([]float64, numColumns),
		Factor:    factor,
		maxBoost:  maxBoost,
	}, nil
}

// UpdateDutyCycle rolls the active-duty-cycle estimate forward by one
// step using an exponential moving average with the given window
// (duty_cycle_period).
func (s *State) UpdateDutyCycle(activeColumns map[int]struct{}, period float64) {
	if period < 1 {
		period = 1
	}
	for i := range s.DutyCycle {
		var sample float64
		if _, active := activeColumns[i]; active {
			sample = 1.0
		}
		s.DutyCycle[i] += (sample - s.DutyCycle[i]) / period
	}
}

// RecomputeBoosts updates every column's boost factor against the max
// duty cycle among its inhibition-radius neighbours (self included):
// a column whose duty cycle falls below boostActiveDutyRatio times
// that neighbourhood max gets boosted proportionally to the deficit;
// otherwise its boost relaxes linearly back toward 1.0.
func (s *State) RecomputeBoosts(topo *topology.Topology, radius int, boostActiveDutyRatio float64) error {
	n := len(s.DutyCycle)
	if topo.Size() != n {
		return fmt.Errorf("boost: topology size %d does not match column count %d", topo.Size(), n)
	}
	const relaxStepFraction = 0.1

	neighDuty := make([]float64, 0, 32)
	for col := 0; col < n; col++ {
		coord, err := topo.CoordOf(col)
		if err != nil {
			return err
		}
		// annulus lower bound -1 so distance 0 (the column itself) is included
		neighbours := topo.Neighbours(coord, radius, -1)

		neighDuty = neighDuty[:0]
		neighDuty = append(neighDuty, s.DutyCycle[col])
		for _, nb := range neighbours {
			neighDuty = append(neighDuty, s.DutyCycle[nb])
		}
		maxNeighDuty := floats.Max(neighDuty)

		threshold := boostActiveDutyRatio * maxNeighDuty
		if threshold > 0 && s.DutyCycle[col] < threshold {
			deficit := threshold - s.DutyCycle[col]
			ratio := math.Min(1.0, deficit/threshold)
			s.Factor[col] = 1.0 + ratio*(s.maxBoost-1.0)
		} else {
			s.Factor[col] -= (s.maxBoost - 1.0) * relaxStepFraction
		}
		s.Factor[col] = math.Max(1.0, math.Min(s.maxBoost, s.Factor[col]))
	}
	return nil
}
