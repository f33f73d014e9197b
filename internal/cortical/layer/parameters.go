package layer

import (
	"fmt"

	"github.com/htm-cortex/layer/internal/domain/htm"
)

// ProximalParams configures the column-segment (feed-forward) synapse
// graph and its learning thresholds.
type ProximalParams struct {
	MaxSegments       int
	MaxSynapseCount   int
	NewSynapseCount   int
	StimulusThreshold int
	LearnThreshold    int
	PermInc           float64
	PermStableInc     float64
	PermDec           float64
	PermConnected     float64
	PermInit          float64
	FFPotentialRadius float64
	FFInitFrac        float64
	FFPermInitHi      float64
	FFPermInitLo      float64
}

// DistalParams configures the cell-segment (lateral/apical) synapse
// graph and its learning thresholds.
type DistalParams struct {
	MaxSegments       int
	MaxSynapseCount   int
	NewSynapseCount   int
	StimulusThreshold int
	LearnThreshold    int
	PermInc           float64
	PermStableInc     float64
	PermDec           float64
	PermPunish        float64
	PermConnected     float64
	PermInit          float64
	Punish            bool
}

// Parameters is the full recognised parameter set of a layer.
type Parameters struct {
	InputDimensions        []int
	ColumnDimensions       []int
	Depth                  int
	DistalMotorDimensions  []int
	DistalTopdownDimensions []int
	LateralSynapses        bool
	UseFeedback            bool

	Proximal ProximalParams
	Distal   DistalParams

	ActivationLevel        float64
	ActivationLevelMax     float64
	GlobalInhibition       bool
	InhibitionBaseDistance int
	MaxBoost               float64
	DutyCyclePeriod        float64
	BoostActiveDutyRatio   float64
	BoostActiveEvery       int
	InhRadiusEvery         int

	DistalVsProximalWeight  float64
	SpontaneousActivation   bool
	DominanceMargin         float64
	StableInbitFracThreshold float64
	TemporalPoolingMaxExc   float64
	TemporalPoolingFall     float64
	RandomSeed              uint64
}

// DefaultParameters returns the parameter set with every default value
// from applied, given the required input_dimensions.
func DefaultParameters(inputDimensions []int) Parameters {
	return Parameters{
		InputDimensions:         append([]int(nil), inputDimensions...),
		ColumnDimensions:        []int{1000},
		Depth:                   5,
		DistalMotorDimensions:   []int{0},
		DistalTopdownDimensions: []int{0},
		LateralSynapses:         true,
		UseFeedback:             false,

		Proximal: ProximalParams{
			MaxSegments:       1,
			MaxSynapseCount:   300,
			NewSynapseCount:   12,
			StimulusThreshold: 2,
			LearnThreshold:    7,
			PermInc:           0.04,
			PermStableInc:     0.15,
			PermDec:           0.01,
			PermConnected:     0.20,
			PermInit:          0.16,
			FFPotentialRadius: 1.0,
			FFInitFrac:        0.25,
			FFPermInitHi:      0.25,
			FFPermInitLo:      0.10,
		},
		Distal: DistalParams{
			MaxSegments:       5,
			MaxSynapseCount:   22,
			NewSynapseCount:   12,
			StimulusThreshold: 9,
			LearnThreshold:    7,
			PermInc:           0.05,
			PermStableInc:     0.05,
			PermDec:           0.01,
			PermPunish:        0.002,
			PermConnected:     0.20,
			PermInit:          0.16,
			Punish:            true,
		},

		ActivationLevel:        0.02,
		ActivationLevelMax:     0.10,
		GlobalInhibition:       true,
		InhibitionBaseDistance: 1,
		MaxBoost:               1.5,
		DutyCyclePeriod:        1000,
		BoostActiveDutyRatio:   0.001,
		BoostActiveEvery:       1000,
		InhRadiusEvery:         1000,

		DistalVsProximalWeight:   0.0,
		SpontaneousActivation:    false,
		DominanceMargin:          4,
		StableInbitFracThreshold: 0.5,
		TemporalPoolingMaxExc:    50.0,
		TemporalPoolingFall:      5.0,
		RandomSeed:               42,
	}
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// NumColumns is the product of ColumnDimensions.
func (p Parameters) NumColumns() int { return product(p.ColumnDimensions) }

// InputWidth is the product of InputDimensions.
func (p Parameters) InputWidth() int { return product(p.InputDimensions) }

// LateralWidth is the distal source sub-range width contributed by
// this layer's own cells, zero when lateral synapses are disabled.
func (p Parameters) LateralWidth() int {
	if !p.LateralSynapses {
		return 0
	}
	return p.NumColumns() * p.Depth
}

// MotorWidth is the distal source sub-range width for motor context.
func (p Parameters) MotorWidth() int { return product(p.DistalMotorDimensions) }

// TopdownWidth is the distal source sub-range width for apical
// feedback, zero when feedback is disabled.
func (p Parameters) TopdownWidth() int {
	if !p.UseFeedback {
		return 0
	}
	return product(p.DistalTopdownDimensions)
}

func validateDims(name string, dims []int) error {
	if len(dims) == 0 {
		return fmt.Errorf("layer: %s must have at least one dimension", name)
	}
	for _, d := range dims {
		if d <= 0 {
			return fmt.Errorf("layer: %s contains non-positive dimension %d", name, d)
		}
	}
	return nil
}

func validatePerm(name string, v float64) error {
	if v < 0.0 || v > 1.0 {
		return fmt.Errorf("layer: %s must be in [0,1], got %f", name, v)
	}
	return nil
}

// Validate checks for unset or non-positive dimensions, out-of-range
// permanences, and negative thresholds. It returns an htm.LayerError
// wrapping the first problem found.
func (p Parameters) Validate() error {
	if err := validateDims("input_dimensions", p.InputDimensions); err != nil {
		return htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
	}
	if err := validateDims("column_dimensions", p.ColumnDimensions); err != nil {
		return htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
	}
	if p.Depth <= 0 {
		return htm.NewLayerError(htm.LayerErrConfiguration, "layer: depth must be positive")
	}
	for _, pc := range []struct {
		name string
		v    float64
	}{
		{"proximal.perm_inc", p.Proximal.PermInc},
		{"proximal.perm_stable_inc", p.Proximal.PermStableInc},
		{"proximal.perm_dec", p.Proximal.PermDec},
		{"proximal.perm_connected", p.Proximal.PermConnected},
		{"proximal.perm_init", p.Proximal.PermInit},
		{"distal.perm_inc", p.Distal.PermInc},
		{"distal.perm_stable_inc", p.Distal.PermStableInc},
		{"distal.perm_dec", p.Distal.PermDec},
		{"distal.perm_punish", p.Distal.PermPunish},
		{"distal.perm_connected", p.Distal.PermConnected},
		{"distal.perm_init", p.Distal.PermInit},
	} {
		if err := validatePerm(pc.name, pc.v); err != nil {
			return htm.NewLayerError(htm.LayerErrConfiguration, err.Error())
		}
	}
	if p.Proximal.StimulusThreshold < 0 || p.Proximal.LearnThreshold < 0 ||
		p.Distal.StimulusThreshold < 0 || p.Distal.LearnThreshold < 0 {
		return htm.NewLayerError(htm.LayerErrConfiguration, "layer: thresholds must be non-negative")
	}
	if p.Proximal.MaxSegments <= 0 || p.Distal.MaxSegments <= 0 {
		return htm.NewLayerError(htm.LayerErrConfiguration, "layer: max_segments must be positive")
	}
	return nil
}
