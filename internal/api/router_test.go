package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/htm-cortex/layer/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHTTPHandler struct{ calls map[string]int }

func newStubHTTPHandler() *stubHTTPHandler { return &stubHTTPHandler{calls: make(map[string]int)} }

func (s *stubHTTPHandler) StepLayer(c *gin.Context)   { s.calls["step"]++; c.Status(http.StatusOK) }
func (s *stubHTTPHandler) HealthCheck(c *gin.Context) { s.calls["health"]++; c.Status(http.StatusOK) }
func (s *stubHTTPHandler) GetMetrics(c *gin.Context)  { s.calls["metrics"]++; c.Status(http.StatusOK) }

type stubLayerHandler struct{ calls map[string]int }

func newStubLayerHandler() *stubLayerHandler { return &stubLayerHandler{calls: make(map[string]int)} }

func (s *stubLayerHandler) mark(name string, c *gin.Context) {
	s.calls[name]++
	c.Status(http.StatusOK)
}

func (s *stubLayerHandler) StepLayer(c *gin.Context)            { s.mark("step", c) }
func (s *stubLayerHandler) GetLayerConfig(c *gin.Context)       { s.mark("get_config", c) }
func (s *stubLayerHandler) UpdateLayerConfig(c *gin.Context)    { s.mark("update_config", c) }
func (s *stubLayerHandler) GetLayerMetrics(c *gin.Context)      { s.mark("metrics", c) }
func (s *stubLayerHandler) ResetLayerMetrics(c *gin.Context)    { s.mark("reset_metrics", c) }
func (s *stubLayerHandler) BreakLayer(c *gin.Context)           { s.mark("break", c) }
func (s *stubLayerHandler) GetLayerStatus(c *gin.Context)       { s.mark("status", c) }
func (s *stubLayerHandler) GetLayerHealth(c *gin.Context)       { s.mark("health", c) }
func (s *stubLayerHandler) GetHTMProperties(c *gin.Context)     { s.mark("htm_properties", c) }
func (s *stubLayerHandler) ValidateConfigRequest(c *gin.Context) { s.mark("validate_config", c) }

func newTestEngine(t *testing.T, withLayerHandler bool) (*gin.Engine, *stubHTTPHandler, *stubLayerHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	httpHandler := newStubHTTPHandler()

	var router ports.Router
	var layerHandler *stubLayerHandler

	if withLayerHandler {
		layerHandler = newStubLayerHandler()
		router = NewRouter(httpHandler, layerHandler, nil, nil, nil, nil)
	} else {
		router = NewRouterWithoutLayerHandler(httpHandler, nil, nil, nil, nil)
	}

	engine := gin.New()
	require.NoError(t, router.SetupRoutes(engine))
	return engine, httpHandler, layerHandler
}

func TestSetupRoutesRegistersGenericAndHealthRoutes(t *testing.T) {
	engine, _, _ := newTestEngine(t, false)

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/metrics", "/"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code, "path %s", path)
	}
}

func TestSetupRoutesRegistersLayerRoutesWhenHandlerPresent(t *testing.T) {
	engine, _, layerHandler := newTestEngine(t, true)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/layer/step"},
		{http.MethodGet, "/api/v1/layer/config"},
		{http.MethodPut, "/api/v1/layer/config"},
		{http.MethodPost, "/api/v1/layer/config/validate"},
		{http.MethodGet, "/api/v1/layer/validation/htm-properties"},
		{http.MethodGet, "/api/v1/layer/metrics"},
		{http.MethodPost, "/api/v1/layer/metrics/reset"},
		{http.MethodPost, "/api/v1/layer/break"},
		{http.MethodGet, "/api/v1/layer/status"},
		{http.MethodGet, "/api/v1/layer/health"},
	}

	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		engine.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code, "%s %s", tc.method, tc.path)
	}

	assert.NotZero(t, layerHandler.calls["step"])
}

func TestSetupRoutesOmitsLayerRoutesWithoutHandler(t *testing.T) {
	engine, _, _ := newTestEngine(t, false)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/layer/config", nil)
	engine.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleRootListsLayerFeatureWhenHandlerPresent(t *testing.T) {
	engine, _, _ := newTestEngine(t, true)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	engine.ServeHTTP(recorder, req)

	assert.Contains(t, recorder.Body.String(), "cortical_layer")
	assert.Contains(t, recorder.Body.String(), "layer_step")
}

func TestRegisterAPIRoutesFailsWithoutHTTPHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := &RouterImpl{}
	engine := gin.New()
	err := router.RegisterAPIRoutes(engine.Group("/api/v1"))
	require.Error(t, err)
}

func TestMiddlewareFactoryCreatesAllMiddleware(t *testing.T) {
	factory := NewMiddlewareFactory()
	assert.NotNil(t, factory.CreateLoggingMiddleware())
	assert.NotNil(t, factory.CreateErrorMiddleware())
	assert.NotNil(t, factory.CreateMetricsMiddleware(nil))
	assert.NotNil(t, factory.CreateCORSMiddleware())
}
