package layer

import "github.com/htm-cortex/layer/internal/domain/htm"

// ConfigFromDTO converts the wire-format configuration into a
// Parameters value. It does not validate; callers should call
// Parameters.Validate (or New, which validates) on the result.
func ConfigFromDTO(c htm.LayerConfig) Parameters {
	return Parameters{
		InputDimensions:         append([]int(nil), c.InputDimensions...),
		ColumnDimensions:        append([]int(nil), c.ColumnDimensions...),
		Depth:                   c.Depth,
		DistalMotorDimensions:   append([]int(nil), c.DistalMotorDimensions...),
		DistalTopdownDimensions: append([]int(nil), c.DistalTopdownDimensions...),
		LateralSynapses:         c.LateralSynapses,
		UseFeedback:             c.UseFeedback,

		Proximal: ProximalParams{
			MaxSegments:       c.Proximal.MaxSegments,
			MaxSynapseCount:   c.Proximal.MaxSynapseCount,
			NewSynapseCount:   c.Proximal.NewSynapseCount,
			StimulusThreshold: c.Proximal.StimulusThreshold,
			LearnThreshold:    c.Proximal.LearnThreshold,
			PermInc:           c.Proximal.PermInc,
			PermStableInc:     c.Proximal.PermStableInc,
			PermDec:           c.Proximal.PermDec,
			PermConnected:     c.Proximal.PermConnected,
			PermInit:          c.Proximal.PermInit,
			FFPotentialRadius: c.Proximal.FFPotentialRadius,
			FFInitFrac:        c.Proximal.FFInitFrac,
			FFPermInitHi:      c.Proximal.FFPermInitHi,
			FFPermInitLo:      c.Proximal.FFPermInitLo,
		},
		Distal: DistalParams{
			MaxSegments:       c.Distal.MaxSegments,
			MaxSynapseCount:   c.Distal.MaxSynapseCount,
			NewSynapseCount:   c.Distal.NewSynapseCount,
			StimulusThreshold: c.Distal.StimulusThreshold,
			LearnThreshold:    c.Distal.LearnThreshold,
			PermInc:           c.Distal.PermInc,
			PermStableInc:     c.Distal.PermStableInc,
			PermDec:           c.Distal.PermDec,
			PermPunish:        c.Distal.PermPunish,
			PermConnected:     c.Distal.PermConnected,
			PermInit:          c.Distal.PermInit,
			Punish:            c.Distal.Punish,
		},

		ActivationLevel:        c.ActivationLevel,
		ActivationLevelMax:     c.ActivationLevelMax,
		GlobalInhibition:       c.GlobalInhibition,
		InhibitionBaseDistance: c.InhibitionBaseDistance,
		MaxBoost:               c.MaxBoost,
		DutyCyclePeriod:        c.DutyCyclePeriod,
		BoostActiveDutyRatio:   c.BoostActiveDutyRatio,
		BoostActiveEvery:       c.BoostActiveEvery,
		InhRadiusEvery:         c.InhRadiusEvery,

		DistalVsProximalWeight:   c.DistalVsProximalWeight,
		SpontaneousActivation:    c.SpontaneousActivation,
		DominanceMargin:          c.DominanceMargin,
		StableInbitFracThreshold: c.StableInbitFracThreshold,
		TemporalPoolingMaxExc:    c.TemporalPoolingMaxExc,
		TemporalPoolingFall:      c.TemporalPoolingFall,
		RandomSeed:               c.RandomSeed,
	}
}

// ConfigToDTO converts a Parameters value into its wire format.
func ConfigToDTO(p Parameters) htm.LayerConfig {
	return htm.LayerConfig{
		InputDimensions:         append([]int(nil), p.InputDimensions...),
		ColumnDimensions:        append([]int(nil), p.ColumnDimensions...),
		Depth:                   p.Depth,
		DistalMotorDimensions:   append([]int(nil), p.DistalMotorDimensions...),
		DistalTopdownDimensions: append([]int(nil), p.DistalTopdownDimensions...),
		LateralSynapses:         p.LateralSynapses,
		UseFeedback:             p.UseFeedback,

		Proximal: htm.ProximalConfig{
			MaxSegments:       p.Proximal.MaxSegments,
			MaxSynapseCount:   p.Proximal.MaxSynapseCount,
			NewSynapseCount:   p.Proximal.NewSynapseCount,
			StimulusThreshold: p.Proximal.StimulusThreshold,
			LearnThreshold:    p.Proximal.LearnThreshold,
			PermInc:           p.Proximal.PermInc,
			PermStableInc:     p.Proximal.PermStableInc,
			PermDec:           p.Proximal.PermDec,
			PermConnected:     p.Proximal.PermConnected,
			PermInit:          p.Proximal.PermInit,
			FFPotentialRadius: p.Proximal.FFPotentialRadius,
			FFInitFrac:        p.Proximal.FFInitFrac,
			FFPermInitHi:      p.Proximal.FFPermInitHi,
			FFPermInitLo:      p.Proximal.FFPermInitLo,
		},
		Distal: htm.DistalConfig{
			MaxSegments:       p.Distal.MaxSegments,
			MaxSynapseCount:   p.Distal.MaxSynapseCount,
			NewSynapseCount:   p.Distal.NewSynapseCount,
			StimulusThreshold: p.Distal.StimulusThreshold,
			LearnThreshold:    p.Distal.LearnThreshold,
			PermInc:           p.Distal.PermInc,
			PermStableInc:     p.Distal.PermStableInc,
			PermDec:           p.Distal.PermDec,
			PermPunish:        p.Distal.PermPunish,
			PermConnected:     p.Distal.PermConnected,
			PermInit:          p.Distal.PermInit,
			Punish:            p.Distal.Punish,
		},

		ActivationLevel:        p.ActivationLevel,
		ActivationLevelMax:     p.ActivationLevelMax,
		GlobalInhibition:       p.GlobalInhibition,
		InhibitionBaseDistance: p.InhibitionBaseDistance,
		MaxBoost:               p.MaxBoost,
		DutyCyclePeriod:        p.DutyCyclePeriod,
		BoostActiveDutyRatio:   p.BoostActiveDutyRatio,
		BoostActiveEvery:       p.BoostActiveEvery,
		InhRadiusEvery:         p.InhRadiusEvery,

		DistalVsProximalWeight:   p.DistalVsProximalWeight,
		SpontaneousActivation:    p.SpontaneousActivation,
		DominanceMargin:          p.DominanceMargin,
		StableInbitFracThreshold: p.StableInbitFracThreshold,
		TemporalPoolingMaxExc:    p.TemporalPoolingMaxExc,
		TemporalPoolingFall:      p.TemporalPoolingFall,
		RandomSeed:               p.RandomSeed,
	}
}

// DefaultConfigDTO returns the wire-format default parameter set for
// the given input dimensions.
func DefaultConfigDTO(inputDimensions []int) htm.LayerConfig {
	return ConfigToDTO(DefaultParameters(inputDimensions))
}
