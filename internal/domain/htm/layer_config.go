package htm

// LayerConfig is the wire-format mirror of a cortical layer's recognised
// parameter set, with validation tags for the HTTP configuration
// endpoints. The cortical/layer package owns conversion to and from its
// own Parameters type, since that package already depends on htm for
// its error taxonomy and importing it back here would cycle.
type LayerConfig struct {
	InputDimensions         []int `json:"input_dimensions" validate:"required,min=1,dive,gt=0"`
	ColumnDimensions        []int `json:"column_dimensions" validate:"required,min=1,dive,gt=0"`
	Depth                   int   `json:"depth" validate:"required,gt=0"`
	DistalMotorDimensions   []int `json:"distal_motor_dimensions" validate:"omitempty,dive,gte=0"`
	DistalTopdownDimensions []int `json:"distal_topdown_dimensions" validate:"omitempty,dive,gte=0"`
	LateralSynapses         bool  `json:"lateral_synapses"`
	UseFeedback             bool  `json:"use_feedback"`

	Proximal ProximalConfig `json:"proximal" validate:"required"`
	Distal   DistalConfig   `json:"distal" validate:"required"`

	ActivationLevel        float64 `json:"activation_level" validate:"gt=0,lte=1"`
	ActivationLevelMax     float64 `json:"activation_level_max" validate:"gt=0,lte=1"`
	GlobalInhibition       bool    `json:"global_inhibition"`
	InhibitionBaseDistance int     `json:"inhibition_base_distance" validate:"gte=0"`
	MaxBoost               float64 `json:"max_boost" validate:"gte=1"`
	DutyCyclePeriod        float64 `json:"duty_cycle_period" validate:"gt=0"`
	BoostActiveDutyRatio   float64 `json:"boost_active_duty_ratio" validate:"gte=0,lte=1"`
	BoostActiveEvery       int     `json:"boost_active_every" validate:"gte=0"`
	InhRadiusEvery         int     `json:"inh_radius_every" validate:"gte=0"`

	DistalVsProximalWeight  float64 `json:"distal_vs_proximal_weight" validate:"gte=0,lte=1"`
	SpontaneousActivation   bool    `json:"spontaneous_activation"`
	DominanceMargin         float64 `json:"dominance_margin" validate:"gte=0"`
	StableInbitFracThreshold float64 `json:"stable_inbit_frac_threshold" validate:"gte=0,lte=1"`
	TemporalPoolingMaxExc   float64 `json:"temporal_pooling_max_exc" validate:"gte=0"`
	TemporalPoolingFall     float64 `json:"temporal_pooling_fall" validate:"gte=0"`
	RandomSeed              uint64  `json:"random_seed"`
}

// ProximalConfig is the wire-format mirror of layer.ProximalParams.
type ProximalConfig struct {
	MaxSegments       int     `json:"max_segments" validate:"required,gt=0"`
	MaxSynapseCount   int     `json:"max_synapse_count" validate:"required,gt=0"`
	NewSynapseCount   int     `json:"new_synapse_count" validate:"gte=0"`
	StimulusThreshold int     `json:"stimulus_threshold" validate:"gte=0"`
	LearnThreshold    int     `json:"learn_threshold" validate:"gte=0"`
	PermInc           float64 `json:"perm_inc" validate:"gte=0,lte=1"`
	PermStableInc     float64 `json:"perm_stable_inc" validate:"gte=0,lte=1"`
	PermDec           float64 `json:"perm_dec" validate:"gte=0,lte=1"`
	PermConnected     float64 `json:"perm_connected" validate:"gte=0,lte=1"`
	PermInit          float64 `json:"perm_init" validate:"gte=0,lte=1"`
	FFPotentialRadius float64 `json:"ff_potential_radius" validate:"gt=0"`
	FFInitFrac        float64 `json:"ff_init_frac" validate:"gte=0,lte=1"`
	FFPermInitHi      float64 `json:"ff_perm_init_hi" validate:"gte=0,lte=1"`
	FFPermInitLo      float64 `json:"ff_perm_init_lo" validate:"gte=0,lte=1"`
}

// DistalConfig is the wire-format mirror of layer.DistalParams.
type DistalConfig struct {
	MaxSegments       int     `json:"max_segments" validate:"required,gt=0"`
	MaxSynapseCount   int     `json:"max_synapse_count" validate:"required,gt=0"`
	NewSynapseCount   int     `json:"new_synapse_count" validate:"gte=0"`
	StimulusThreshold int     `json:"stimulus_threshold" validate:"gte=0"`
	LearnThreshold    int     `json:"learn_threshold" validate:"gte=0"`
	PermInc           float64 `json:"perm_inc" validate:"gte=0,lte=1"`
	PermStableInc     float64 `json:"perm_stable_inc" validate:"gte=0,lte=1"`
	PermDec           float64 `json:"perm_dec" validate:"gte=0,lte=1"`
	PermPunish        float64 `json:"perm_punish" validate:"gte=0,lte=1"`
	PermConnected     float64 `json:"perm_connected" validate:"gte=0,lte=1"`
	PermInit          float64 `json:"perm_init" validate:"gte=0,lte=1"`
	Punish            bool    `json:"punish"`
}
