package htm

import "time"

// StepRequest wraps an incoming layer-step HTTP request with tracking
// metadata.
type StepRequest struct {
	Input     LayerStepInput  `json:"input" validate:"required"`
	RequestID string          `json:"request_id" validate:"required"`
	ClientID  string          `json:"client_id,omitempty" validate:"omitempty,alphanum"`
	Priority  RequestPriority `json:"priority" validate:"omitempty,oneof=low normal high"`
}

// GetPriority returns the request priority, defaulting to normal.
func (r *StepRequest) GetPriority() RequestPriority {
	if r.Priority == "" {
		return PriorityNormal
	}
	return r.Priority
}

// HasClientID returns true if a client ID is specified.
func (r *StepRequest) HasClientID() bool {
	return r.ClientID != ""
}

// IsHighPriority returns true if the request has high priority.
func (r *StepRequest) IsHighPriority() bool {
	return r.GetPriority() == PriorityHigh
}

// CreateProcessingContext builds a loggable context for this request.
func (r *StepRequest) CreateProcessingContext() map[string]interface{} {
	context := map[string]interface{}{
		"request_id": r.RequestID,
		"priority":   r.GetPriority().String(),
		"timestamp":  time.Now(),
	}
	if r.HasClientID() {
		context["client_id"] = r.ClientID
	}
	if r.Input.SensorID != "" {
		context["sensor_id"] = r.Input.SensorID
	}
	return context
}
