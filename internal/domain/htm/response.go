package htm

import "time"

// StepResponse wraps a layer-step HTTP response envelope.
type StepResponse struct {
	Result       *LayerStepResult `json:"result,omitempty"`
	Error        *APIError        `json:"error,omitempty"`
	RequestID    string           `json:"request_id" validate:"required"`
	ResponseTime time.Time        `json:"response_time" validate:"required"`
}

// NewSuccessResponse creates a successful step response.
func NewSuccessResponse(requestID string, result *LayerStepResult) *StepResponse {
	return &StepResponse{
		Result:       result,
		RequestID:    requestID,
		ResponseTime: time.Now(),
	}
}

// NewErrorResponse creates an error step response.
func NewErrorResponse(requestID string, apiError *APIError) *StepResponse {
	return &StepResponse{
		Error:        apiError,
		RequestID:    requestID,
		ResponseTime: time.Now(),
	}
}

// IsSuccess returns true if the response represents a successful step.
func (r *StepResponse) IsSuccess() bool {
	return r.Error == nil && r.Result != nil
}

// IsError returns true if the response represents an error.
func (r *StepResponse) IsError() bool {
	return r.Error != nil
}

// GetStatus returns the processing status if available.
func (r *StepResponse) GetStatus() ProcessingStatus {
	if r.Result != nil {
		return r.Result.Status
	}
	if r.Error != nil {
		return StatusFailed
	}
	return ""
}
