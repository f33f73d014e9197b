package htm

import "time"

// LayerStepInput carries the bit vectors for a single activate/learn/
// depolarise cycle of a cortical layer: the feed-forward input, its
// stable subset, and the three distal source vectors consumed by
// Depolarise.
type LayerStepInput struct {
	ID              string `json:"id" validate:"required,uuid"`
	FFBits          []int  `json:"ff_bits" validate:"required,sparse_bits"`
	StableFFBits    []int  `json:"stable_ff_bits" validate:"omitempty,sparse_bits"`
	DistalFFBits    []int  `json:"distal_ff_bits" validate:"omitempty,sparse_bits"`
	ApicalFBBits    []int  `json:"apical_fb_bits" validate:"omitempty,sparse_bits"`
	ApicalFBWCBits  []int  `json:"apical_fb_wc_bits" validate:"omitempty,sparse_bits"`
	LearningEnabled bool   `json:"learning_enabled"`
	SensorID        string `json:"sensor_id,omitempty" validate:"omitempty,alphanum"`
}

// CellRef is the JSON-safe projection of a layer.CellID: domain/htm
// cannot import cortical/layer (layer already imports htm for its
// error taxonomy), so the service layer translates between the two.
type CellRef struct {
	Column int `json:"column"`
	Index  int `json:"index"`
}

// LayerStateSnapshot is the JSON projection of layer.State.
type LayerStateSnapshot struct {
	Timestep             int       `json:"timestep"`
	ActiveColumns        []int     `json:"active_columns"`
	BurstingColumns      []int     `json:"bursting_columns"`
	ActiveCells          []CellRef `json:"active_cells"`
	WinnerCells          []CellRef `json:"winner_cells"`
	PredictiveCells      []CellRef `json:"predictive_cells,omitempty"`
	PriorPredictiveCells []CellRef `json:"prior_predictive_cells,omitempty"`
	InFFBits             []int     `json:"in_ff_bits"`
	InStableFFBits       []int     `json:"in_stable_ff_bits"`
	OutFFBits            []int     `json:"out_ff_bits"`
	OutStableFFBits      []int     `json:"out_stable_ff_bits"`
}

// LayerStepResult is the output of a single step, splitting the state
// payload from run metadata.
type LayerStepResult struct {
	ID       string             `json:"id" validate:"required,uuid"`
	State    LayerStateSnapshot `json:"state"`
	Metadata StepMetadata       `json:"metadata"`
	Status   ProcessingStatus   `json:"status" validate:"required"`
}

// StepMetadata contains performance and stability context for a step.
type StepMetadata struct {
	ProcessingTimeMs int64     `json:"processing_time_ms" validate:"min=0"`
	InstanceID       string    `json:"instance_id" validate:"required"`
	AlgorithmVersion string    `json:"algorithm_version" validate:"required"`
	StabilityScore   float64   `json:"stability_score"`
	Timestamp        time.Time `json:"timestamp"`
}

// IsSuccessful returns true if the step completed without error.
func (r *LayerStepResult) IsSuccessful() bool {
	return r.Status == StatusSuccess || r.Status == StatusPartialSuccess
}

// BreakKindWire is the wire-format name of a layer.BreakKind value.
type BreakKindWire string

const (
	BreakKindTM      BreakKindWire = "temporal_memory"
	BreakKindTP      BreakKindWire = "temporal_pooling"
	BreakKindWinners BreakKindWire = "winner_cells"
)

// BreakRequest selects which part of a layer's state to reset.
type BreakRequest struct {
	Kind BreakKindWire `json:"kind" validate:"required,oneof=temporal_memory temporal_pooling winner_cells"`
}
