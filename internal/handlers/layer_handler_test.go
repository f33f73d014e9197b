package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/htm-cortex/layer/internal/cortical/layer"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/services"
	"github.com/stretchr/testify/require"
)

func newTestLayerHandler(t *testing.T) *LayerHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := layer.DefaultConfigDTO([]int{64})
	cfg.ColumnDimensions = []int{32}
	cfg.Depth = 4

	layerService, err := services.NewLayerService(&cfg, "handler-test-instance")
	require.NoError(t, err)
	validationService := services.NewValidationService(nil)

	return NewLayerHandler(layerService, validationService)
}

func performRequest(method, path string, body interface{}, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	ctx.Request = req

	handle(ctx)
	return recorder
}

func TestStepLayerReturnsOKForWellFormedInput(t *testing.T) {
	h := newTestLayerHandler(t)

	input := htm.LayerStepInput{
		ID:              uuid.New().String(),
		FFBits:          []int{1, 2, 3},
		LearningEnabled: true,
	}

	resp := performRequest(http.MethodPost, "/api/v1/layer/step", input, h.StepLayer)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestStepLayerRejectsMissingID(t *testing.T) {
	h := newTestLayerHandler(t)

	input := htm.LayerStepInput{FFBits: []int{1, 2, 3}}

	resp := performRequest(http.MethodPost, "/api/v1/layer/step", input, h.StepLayer)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStepLayerRejectsNonIncreasingBits(t *testing.T) {
	h := newTestLayerHandler(t)

	input := htm.LayerStepInput{
		ID:     uuid.New().String(),
		FFBits: []int{3, 1, 2},
	}

	resp := performRequest(http.MethodPost, "/api/v1/layer/step", input, h.StepLayer)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetLayerConfigReturnsCurrentConfig(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodGet, "/api/v1/layer/config", nil, h.GetLayerConfig)
	require.Equal(t, http.StatusOK, resp.Code)

	var got htm.LayerConfig
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Equal(t, []int{32}, got.ColumnDimensions)
}

func TestUpdateLayerConfigAppliesValidConfig(t *testing.T) {
	h := newTestLayerHandler(t)

	cfg := layer.DefaultConfigDTO([]int{64})
	cfg.ColumnDimensions = []int{16}
	cfg.Depth = 4

	resp := performRequest(http.MethodPut, "/api/v1/layer/config", cfg, h.UpdateLayerConfig)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestUpdateLayerConfigRejectsInvalidConfig(t *testing.T) {
	h := newTestLayerHandler(t)

	cfg := layer.DefaultConfigDTO([]int{64})
	cfg.Depth = 0

	resp := performRequest(http.MethodPut, "/api/v1/layer/config", cfg, h.UpdateLayerConfig)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestValidateConfigRequestReportsValidity(t *testing.T) {
	h := newTestLayerHandler(t)

	cfg := layer.DefaultConfigDTO([]int{64})
	resp := performRequest(http.MethodPost, "/api/v1/layer/config/validate", cfg, h.ValidateConfigRequest)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, true, body["valid"])
}

func TestGetLayerMetricsReturnsSnapshot(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodGet, "/api/v1/layer/metrics", nil, h.GetLayerMetrics)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestResetLayerMetricsSucceeds(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodPost, "/api/v1/layer/metrics/reset", nil, h.ResetLayerMetrics)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBreakLayerAcceptsKnownKind(t *testing.T) {
	h := newTestLayerHandler(t)

	req := htm.BreakRequest{Kind: htm.BreakKindTM}
	resp := performRequest(http.MethodPost, "/api/v1/layer/break", req, h.BreakLayer)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBreakLayerRejectsUnknownKind(t *testing.T) {
	h := newTestLayerHandler(t)

	body := map[string]string{"kind": "nonsense"}
	resp := performRequest(http.MethodPost, "/api/v1/layer/break", body, h.BreakLayer)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetLayerHealthReportsHealthy(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodGet, "/api/v1/layer/health", nil, h.GetLayerHealth)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestGetLayerStatusReportsOperational(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodGet, "/api/v1/layer/status", nil, h.GetLayerStatus)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "operational", body["status"])
}

func TestGetHTMPropertiesReportsCompliance(t *testing.T) {
	h := newTestLayerHandler(t)

	resp := performRequest(http.MethodGet, "/api/v1/layer/validation/htm-properties", nil, h.GetHTMProperties)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Contains(t, body, "htm_compliance")
	require.Contains(t, body, "validation_status")
}
