package layer

import "fmt"

// ParameterAdvisor tunes a Parameters value for a declared use case,
// the way a human operator would hand-pick settings before standing
// up a layer. It never mutates the Parameters it was built from;
// every method returns an adjusted copy.
type ParameterAdvisor struct {
	base Parameters
}

// NewParameterAdvisor builds an advisor around the given baseline
// parameters.
func NewParameterAdvisor(base Parameters) *ParameterAdvisor {
	return &ParameterAdvisor{base: base}
}

// OptimizeForThroughput favours low per-step latency over
// representation quality: boosting is switched off, boost and
// inhibition-radius recomputation are stretched out, and spontaneous
// activation is disabled. Learning itself is left unchanged.
func (a *ParameterAdvisor) OptimizeForThroughput() Parameters {
	p := a.base
	p.MaxBoost = 1.0
	p.BoostActiveEvery = 10000
	p.InhRadiusEvery = 10000
	p.SpontaneousActivation = false
	return p
}

// OptimizeForAccuracy favours representation quality: boosting is
// strengthened and duty-cycle bookkeeping runs more often so columns
// and segments adapt faster.
func (a *ParameterAdvisor) OptimizeForAccuracy() Parameters {
	p := a.base
	p.MaxBoost = 3.0
	p.BoostActiveDutyRatio = 0.01
	p.BoostActiveEvery = 100
	p.InhRadiusEvery = 100
	p.DominanceMargin = 2
	return p
}

// ValidateParameterConsistency reports parameter combinations that
// are individually valid but jointly suspect, e.g. an activation
// level that would select fewer than one column.
func (a *ParameterAdvisor) ValidateParameterConsistency() []string {
	p := a.base
	var issues []string

	expectedActive := float64(p.NumColumns()) * p.ActivationLevel
	if expectedActive < 1 {
		issues = append(issues, "activation_level too low: would produce < 1 active column")
	}
	if p.ActivationLevel > p.ActivationLevelMax {
		issues = append(issues, "activation_level > activation_level_max")
	}
	if p.MaxBoost > 1.0 && p.BoostActiveDutyRatio == 0 {
		issues = append(issues, "max_boost > 1 but boost_active_duty_ratio is zero")
	}
	if p.InhibitionBaseDistance >= p.NumColumns() {
		issues = append(issues, "inhibition_base_distance >= column count")
	}
	return issues
}

// GetParameterRecommendations returns a preset parameter set for one
// of a small number of named use cases, seeded from this advisor's
// input/column dimensions.
func (a *ParameterAdvisor) GetParameterRecommendations(useCase string) (Parameters, error) {
	base := DefaultParameters(a.base.InputDimensions)
	base.ColumnDimensions = append([]int(nil), a.base.ColumnDimensions...)
	base.Depth = a.base.Depth

	switch useCase {
	case "high_throughput":
		base.MaxBoost = 1.0
		base.BoostActiveEvery = 10000
		base.InhRadiusEvery = 10000

	case "high_accuracy":
		base.MaxBoost = 3.0
		base.BoostActiveDutyRatio = 0.01
		base.BoostActiveEvery = 100
		base.DominanceMargin = 2

	case "balanced":
		// DefaultParameters already strikes a balance.

	case "memory_efficient":
		base.Proximal.MaxSynapseCount = base.Proximal.NewSynapseCount * 4
		base.Distal.MaxSegments = 2
		base.ActivationLevel = 0.02

	default:
		return Parameters{}, fmt.Errorf("layer: unknown use case %q", useCase)
	}

	return base, nil
}
