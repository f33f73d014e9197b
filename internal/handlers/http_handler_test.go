package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/htm-cortex/layer/internal/cortical/layer"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/services"
	"github.com/stretchr/testify/require"
)

func newTestProcessHandler(t *testing.T) *ProcessHandlerImpl {
	t.Helper()
	cfg := layer.DefaultConfigDTO([]int{64})
	cfg.ColumnDimensions = []int{32}
	cfg.Depth = 4

	layerService, err := services.NewLayerService(&cfg, "process-handler-test")
	require.NoError(t, err)
	validationService := services.NewValidationService(nil)

	return &ProcessHandlerImpl{
		layerService:      layerService,
		validationService: validationService,
	}
}

func TestProcessHandlerHandleStepSucceeds(t *testing.T) {
	ph := newTestProcessHandler(t)

	request := &htm.StepRequest{
		RequestID: uuid.New().String(),
		Input: htm.LayerStepInput{
			ID:     uuid.New().String(),
			FFBits: []int{1, 2, 3},
		},
	}

	response, err := ph.HandleStep(context.Background(), request)
	require.NoError(t, err)
	require.Nil(t, response.Error)
	require.NotNil(t, response.Result)
}

func TestProcessHandlerHandleStepReturnsErrorResponseOnInvalidInput(t *testing.T) {
	ph := newTestProcessHandler(t)

	request := &htm.StepRequest{
		RequestID: uuid.New().String(),
		Input: htm.LayerStepInput{
			ID:     uuid.New().String(),
			FFBits: []int{3, 2, 1},
		},
	}

	response, err := ph.HandleStep(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, response.Error)
	require.Nil(t, response.Result)
}

func TestProcessHandlerValidateRequestRejectsNil(t *testing.T) {
	ph := newTestProcessHandler(t)
	require.Error(t, ph.ValidateRequest(nil))
}

func newTestHTTPHandler(t *testing.T) *HTTPHandlerImpl {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ph := newTestProcessHandler(t)
	healthHandler := NewHealthHandler(ph.layerService, nil)
	metricsHandler := NewMetricsHandler(nil)

	return &HTTPHandlerImpl{
		layerService:      ph.layerService,
		validationService: ph.validationService,
		processHandler:    ph,
		healthHandler:     healthHandler,
		metricsHandler:    metricsHandler,
	}
}

func TestHTTPHandlerStepLayerReturnsOK(t *testing.T) {
	h := newTestHTTPHandler(t)

	request := htm.StepRequest{
		Input: htm.LayerStepInput{
			ID:     uuid.New().String(),
			FFBits: []int{1, 2, 3},
		},
	}

	resp := performRequest(http.MethodPost, "/api/v1/step", request, h.StepLayer)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestHTTPHandlerHealthCheckReportsHealthy(t *testing.T) {
	h := newTestHTTPHandler(t)

	resp := performRequest(http.MethodGet, "/health", nil, h.HealthCheck)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestHTTPHandlerGetMetricsReturnsDefaults(t *testing.T) {
	h := newTestHTTPHandler(t)

	resp := performRequest(http.MethodGet, "/metrics", nil, h.GetMetrics)
	require.Equal(t, http.StatusOK, resp.Code)
}

type noopMetricsCollector struct{}

func (noopMetricsCollector) IncrementRequestCount()             {}
func (noopMetricsCollector) IncrementErrorCount()               {}
func (noopMetricsCollector) RecordProcessingTime(duration int64) {}
func (noopMetricsCollector) RecordResponseTime(duration int64)   {}
func (noopMetricsCollector) SetConcurrentRequests(count int)     {}
func (noopMetricsCollector) GetMetrics() map[string]interface{}  { return nil }
func (noopMetricsCollector) Reset()                              {}

func TestHealthHandlerHandleHealthCheckReportsHealthy(t *testing.T) {
	ph := newTestProcessHandler(t)
	hh := NewHealthHandler(ph.layerService, noopMetricsCollector{})

	data, err := hh.HandleHealthCheck(context.Background())
	require.NoError(t, err)
	require.Equal(t, true, data["healthy"])
}

func TestMetricsHandlerGetPerformanceMetricsReportsUptime(t *testing.T) {
	mh := NewMetricsHandler(nil)
	perf := mh.GetPerformanceMetrics()
	require.Contains(t, perf, "uptime_seconds")
}

