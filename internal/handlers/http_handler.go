package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/ports"
)

// HTTPHandlerImpl implements the HTTPHandler interface.
type HTTPHandlerImpl struct {
	layerService     ports.LayerService
	validationService ports.ValidationService
	metricsCollector ports.MetricsCollector
	processHandler   ports.ProcessHandler
	healthHandler    ports.HealthHandler
	metricsHandler   ports.MetricsHandler
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(
	layerService ports.LayerService,
	validationService ports.ValidationService,
	metricsCollector ports.MetricsCollector,
	processHandler ports.ProcessHandler,
	healthHandler ports.HealthHandler,
	metricsHandler ports.MetricsHandler,
) ports.HTTPHandler {
	return &HTTPHandlerImpl{
		layerService:      layerService,
		validationService: validationService,
		metricsCollector:  metricsCollector,
		processHandler:    processHandler,
		healthHandler:     healthHandler,
		metricsHandler:    metricsHandler,
	}
}

// StepLayer handles POST /api/v1/layer/step requests.
func (h *HTTPHandlerImpl) StepLayer(c *gin.Context) {
	start := time.Now()
	requestID := uuid.New().String()

	c.Set("request_id", requestID)

	defer func() {
		if h.metricsCollector != nil {
			h.metricsCollector.RecordProcessingTime(time.Since(start).Milliseconds())
			h.metricsCollector.IncrementRequestCount()
		}
	}()

	var stepRequest htm.StepRequest
	if err := c.ShouldBindJSON(&stepRequest); err != nil {
		h.handleError(c, requestID, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if stepRequest.RequestID == "" {
		stepRequest.RequestID = requestID
	}

	if h.processHandler == nil {
		h.handleError(c, requestID, http.StatusInternalServerError, "Process handler not available", fmt.Errorf("process handler is nil"))
		return
	}

	if err := h.processHandler.ValidateRequest(&stepRequest); err != nil {
		h.handleError(c, requestID, http.StatusBadRequest, "Request validation failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	response, err := h.processHandler.HandleStep(ctx, &stepRequest)
	if err != nil {
		h.handleError(c, requestID, http.StatusInternalServerError, "Step processing failed", err)
		return
	}

	if h.metricsCollector != nil {
		h.metricsCollector.IncrementRequestCount()
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck handles GET /health requests.
func (h *HTTPHandlerImpl) HealthCheck(c *gin.Context) {
	start := time.Now()

	defer func() {
		if h.metricsCollector != nil {
			h.metricsCollector.RecordProcessingTime(time.Since(start).Milliseconds())
			h.metricsCollector.IncrementRequestCount()
		}
	}()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	_, err := h.healthHandler.HandleHealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	httpStatus := http.StatusOK
	if err != nil {
		response["status"] = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, response)
}

// GetMetrics handles GET /metrics requests.
func (h *HTTPHandlerImpl) GetMetrics(c *gin.Context) {
	start := time.Now()

	defer func() {
		if h.metricsCollector != nil {
			h.metricsCollector.RecordProcessingTime(time.Since(start).Milliseconds())
			h.metricsCollector.IncrementRequestCount()
		}
	}()

	var metrics map[string]interface{}
	if h.metricsCollector != nil {
		collectorMetrics := h.metricsCollector.GetMetrics()
		metrics = map[string]interface{}{
			"request_count":       getMetricValue(collectorMetrics, "total_requests", 0),
			"response_times":      []float64{},
			"error_count":         getMetricValue(collectorMetrics, "failed_requests", 0),
			"concurrent_requests": getMetricValue(collectorMetrics, "active_requests", 0),
		}
	} else {
		metrics = map[string]interface{}{
			"request_count":       0,
			"response_times":      []float64{},
			"error_count":         0,
			"concurrent_requests": 0,
		}
	}

	c.JSON(http.StatusOK, metrics)
}

// Helper function to get metric values safely
func getMetricValue(metrics map[string]interface{}, key string, defaultValue int) int {
	if value, ok := metrics[key]; ok {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	return defaultValue
}

// handleError handles error responses consistently.
func (h *HTTPHandlerImpl) handleError(c *gin.Context, requestID string, statusCode int, message string, err error) {
	if h.metricsCollector != nil {
		h.metricsCollector.IncrementErrorCount()
	}

	if statusCode >= 400 && statusCode < 500 {
		errorResponse := map[string]interface{}{
			"error": map[string]interface{}{
				"code":      "VALIDATION_ERROR",
				"message":   message,
				"retryable": false,
			},
			"request_id": requestID,
		}
		c.JSON(statusCode, errorResponse)
	} else {
		errorResponse := map[string]interface{}{
			"error": map[string]interface{}{
				"code":      "INTERNAL_ERROR",
				"message":   message,
				"retryable": true,
			},
			"request_id": requestID,
		}
		c.JSON(statusCode, errorResponse)
	}
}

// ProcessHandlerImpl implements the ProcessHandler interface.
type ProcessHandlerImpl struct {
	layerService      ports.LayerService
	validationService ports.ValidationService
	metricsCollector  ports.MetricsCollector
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(
	layerService ports.LayerService,
	validationService ports.ValidationService,
	metricsCollector ports.MetricsCollector,
) ports.ProcessHandler {
	return &ProcessHandlerImpl{
		layerService:      layerService,
		validationService: validationService,
		metricsCollector:  metricsCollector,
	}
}

// HandleStep processes a layer step request.
func (ph *ProcessHandlerImpl) HandleStep(ctx context.Context, request *htm.StepRequest) (*htm.StepResponse, error) {
	start := time.Now()

	defer func() {
		if ph.metricsCollector != nil {
			ph.metricsCollector.RecordProcessingTime(time.Since(start).Milliseconds())
		}
	}()

	if err := ph.ValidateRequest(request); err != nil {
		return ph.CreateErrorResponse(request.RequestID, err), nil
	}

	result, err := ph.layerService.StepLayer(ctx, &request.Input)
	if err != nil {
		return ph.CreateErrorResponse(request.RequestID, err), nil
	}

	result.ID = request.RequestID

	return ph.CreateSuccessResponse(request.RequestID, result), nil
}

// ValidateRequest validates an incoming step request.
func (ph *ProcessHandlerImpl) ValidateRequest(request *htm.StepRequest) error {
	if request == nil {
		return &htm.ValidationError{
			Field:   "request",
			Message: "Request cannot be nil",
		}
	}

	if ph.validationService == nil {
		return &htm.ValidationError{
			Field:   "validation_service",
			Message: "Validation service not available",
		}
	}

	return ph.validationService.ValidateStepRequest(request)
}

// CreateSuccessResponse creates a successful response.
func (ph *ProcessHandlerImpl) CreateSuccessResponse(requestID string, result *htm.LayerStepResult) *htm.StepResponse {
	return &htm.StepResponse{
		RequestID:    requestID,
		Result:       result,
		ResponseTime: time.Now(),
	}
}

// CreateErrorResponse creates an error response.
func (ph *ProcessHandlerImpl) CreateErrorResponse(requestID string, err error) *htm.StepResponse {
	apiError := &htm.APIError{
		Code:    "PROCESSING_ERROR",
		Message: err.Error(),
		Details: make(map[string]interface{}),
	}

	if layerErr, ok := err.(*htm.LayerError); ok {
		apiError = layerErr.AsAPIError()
	}

	if validationErr, ok := err.(*htm.ValidationError); ok {
		apiError.Code = "VALIDATION_ERROR"
		apiError.Details["field"] = validationErr.Field
		apiError.Details["validation_message"] = validationErr.Message
	}

	return &htm.StepResponse{
		RequestID:    requestID,
		Error:        apiError,
		ResponseTime: time.Now(),
	}
}
