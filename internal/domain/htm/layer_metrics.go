package htm

// LayerMetrics tracks performance and behavioural statistics across
// steps of a cortical layer instance.
type LayerMetrics struct {
	TotalSteps              int64              `json:"total_steps"`
	LearningSteps           int64              `json:"learning_steps"`
	EngagedSteps            int64              `json:"engaged_steps"`
	AverageProcessingTimeMs int64              `json:"average_processing_time_ms"`
	AverageActiveColumns    float64            `json:"average_active_columns"`
	AverageBurstingRatio    float64            `json:"average_bursting_ratio"`
	AverageStabilityScore   float64            `json:"average_stability_score"`
	BoostRecomputations     int64              `json:"boost_recomputations"`
	SemanticContinuity      float64            `json:"semantic_continuity"`
	ErrorCounts             map[string]int64   `json:"error_counts"`
}

// NewLayerMetrics creates a new, empty metrics instance.
func NewLayerMetrics() *LayerMetrics {
	return &LayerMetrics{
		ErrorCounts: make(map[string]int64),
	}
}

// RecordStep records a completed step, maintaining running averages
// incrementally rather than replaying full history.
func (m *LayerMetrics) RecordStep(processingTimeMs int64, activeColumns, burstingColumns, numColumns int, stability float64, engaged, learned, boosted bool) {
	m.TotalSteps++

	if m.TotalSteps == 1 {
		m.AverageProcessingTimeMs = processingTimeMs
	} else {
		m.AverageProcessingTimeMs += (processingTimeMs - m.AverageProcessingTimeMs) / m.TotalSteps
	}

	activeFrac := 0.0
	burstingRatio := 0.0
	if numColumns > 0 {
		activeFrac = float64(activeColumns)
	}
	if activeColumns > 0 {
		burstingRatio = float64(burstingColumns) / float64(activeColumns)
	}

	if m.TotalSteps == 1 {
		m.AverageActiveColumns = activeFrac
		m.AverageBurstingRatio = burstingRatio
		m.AverageStabilityScore = stability
	} else {
		n := float64(m.TotalSteps)
		m.AverageActiveColumns += (activeFrac - m.AverageActiveColumns) / n
		m.AverageBurstingRatio += (burstingRatio - m.AverageBurstingRatio) / n
		m.AverageStabilityScore += (stability - m.AverageStabilityScore) / n
	}

	if engaged {
		m.EngagedSteps++
	}
	if learned {
		m.LearningSteps++
	}
	if boosted {
		m.BoostRecomputations++
	}
}

// RecordSemanticContinuity stores the most recently computed semantic
// continuity score (the fraction of sampled input-output SDR pairs
// that did not flip similarity class across the layer).
func (m *LayerMetrics) RecordSemanticContinuity(score float64) {
	m.SemanticContinuity = score
}

// RecordError records an error occurrence by its LayerErrorCode.
func (m *LayerMetrics) RecordError(code LayerErrorCode) {
	if m.ErrorCounts == nil {
		m.ErrorCounts = make(map[string]int64)
	}
	m.ErrorCounts[string(code)]++
}
