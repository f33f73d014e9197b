package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/htm-cortex/layer/internal/cortical/layer"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() htm.LayerConfig {
	cfg := layer.DefaultConfigDTO([]int{64})
	cfg.ColumnDimensions = []int{32}
	cfg.Depth = 4
	return cfg
}

func newTestService(t *testing.T) *layerService {
	t.Helper()
	cfg := testConfig()
	svc, err := NewLayerService(&cfg, "instance-under-test")
	require.NoError(t, err)
	impl, ok := svc.(*layerService)
	require.True(t, ok)
	return impl
}

func stepInput(ffBits []int, learn bool) *htm.LayerStepInput {
	return &htm.LayerStepInput{
		ID:              uuid.New().String(),
		FFBits:          ffBits,
		LearningEnabled: learn,
	}
}

func TestNewLayerServiceRejectsNilConfig(t *testing.T) {
	_, err := NewLayerService(nil, "x")
	require.Error(t, err)
}

func TestNewLayerServiceCreatesEngineFromDefaults(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, 32, svc.numColumns)
	assert.Equal(t, 32*4, svc.outputWidth)
}

func TestStepLayerProducesResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.StepLayer(ctx, stepInput([]int{1, 5, 9}, true))
	require.NoError(t, err)
	assert.Equal(t, htm.StatusSuccess, result.Status)
	assert.Equal(t, "instance-under-test", result.Metadata.InstanceID)
	assert.Equal(t, LayerAlgorithmVersion, result.Metadata.AlgorithmVersion)
}

func TestStepLayerRejectsCancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.StepLayer(ctx, stepInput([]int{1, 2}, false))
	require.Error(t, err)
}

func TestStepLayerRecordsStabilityAcrossSteps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.StepLayer(ctx, stepInput([]int{1, 2, 3}, true))
	require.NoError(t, err)
	_, err = svc.StepLayer(ctx, stepInput([]int{1, 2, 3}, true))
	require.NoError(t, err)

	metrics, err := svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), metrics.TotalSteps)
	assert.Equal(t, int64(2), metrics.LearningSteps)
}

func TestBreakResetsRequestedState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Break(ctx, &htm.BreakRequest{Kind: htm.BreakKindWinners})
	require.NoError(t, err)
}

func TestBreakRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Break(ctx, &htm.BreakRequest{Kind: htm.BreakKindWire("not_a_real_kind")})
	require.Error(t, err)
}

func TestGetAndUpdateConfiguration(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{32}, cfg.ColumnDimensions)

	cfg.ColumnDimensions = []int{16}
	cfg.Depth = 4
	require.NoError(t, svc.UpdateConfiguration(ctx, cfg))

	updated, err := svc.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{16}, updated.ColumnDimensions)
	assert.Equal(t, 16, svc.numColumns)
}

func TestUpdateConfigurationRejectsInvalidDimensions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.GetConfiguration(ctx)
	require.NoError(t, err)
	cfg.ColumnDimensions = []int{0}
	require.Error(t, svc.UpdateConfiguration(ctx, cfg))
}

func TestResetMetricsClearsCounters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.StepLayer(ctx, stepInput([]int{1, 2}, true))
	require.NoError(t, err)

	require.NoError(t, svc.ResetMetrics(ctx))
	metrics, err := svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), metrics.TotalSteps)
}

func TestValidateConfigurationRejectsBadConfig(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := testConfig()
	bad.ColumnDimensions = nil
	require.Error(t, svc.ValidateConfiguration(ctx, &bad))
}

func TestHealthCheckOnFreshService(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.HealthCheck(context.Background()))
}

func TestGetInstanceInfoReportsTimestep(t *testing.T) {
	svc := newTestService(t)
	info := svc.GetInstanceInfo(context.Background())
	assert.Equal(t, "instance-under-test", info["instance_id"])
	assert.Contains(t, info, "timestep")
}

type recordingObserver struct {
	started   int
	completed int
	failed    int
}

func (o *recordingObserver) OnStepStarted(inputID string, input *htm.LayerStepInput)   { o.started++ }
func (o *recordingObserver) OnStepCompleted(inputID string, result *htm.LayerStepResult) {
	o.completed++
}
func (o *recordingObserver) OnStepFailed(inputID string, err error) { o.failed++ }
func (o *recordingObserver) OnConfigurationChanged(oldConfig, newConfig *htm.LayerConfig) {}
func (o *recordingObserver) OnMetricsUpdated(metrics *htm.LayerMetrics)                   {}

var _ ports.LayerObserver = (*recordingObserver)(nil)

func TestObserverReceivesStepNotifications(t *testing.T) {
	svc := newTestService(t)
	obs := &recordingObserver{}
	svc.AddObserver(obs)

	_, err := svc.StepLayer(context.Background(), stepInput([]int{1, 2}, false))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.started)
	assert.Equal(t, 1, obs.completed)
	assert.Equal(t, 0, obs.failed)

	svc.RemoveObserver(obs)
	_, err = svc.StepLayer(context.Background(), stepInput([]int{1, 2}, false))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.started)
}

func TestStepLayerPopulatesSemanticContinuityOnceWindowFills(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	metrics, err := svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.Zero(t, metrics.SemanticContinuity)

	for i := 0; i < continuityWindowSize; i++ {
		_, err := svc.StepLayer(ctx, stepInput([]int{1, 2, 3}, true))
		require.NoError(t, err)
	}

	metrics, err = svc.GetMetrics(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.SemanticContinuity, 0.0)
	assert.LessOrEqual(t, metrics.SemanticContinuity, 1.0)
}

func TestUpdateConfigurationResetsContinuityWindow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < continuityWindowSize; i++ {
		_, err := svc.StepLayer(ctx, stepInput([]int{1, 2, 3}, true))
		require.NoError(t, err)
	}

	cfg, err := svc.GetConfiguration(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateConfiguration(ctx, cfg))

	assert.Empty(t, svc.continuityWindowIn)
	assert.Empty(t, svc.continuityWindowOut)
}

func TestLayerServiceFactoryCreatesService(t *testing.T) {
	factory := NewLayerServiceFactory()
	cfg := testConfig()

	svc, err := factory.CreateService(&cfg, "factory-instance")
	require.NoError(t, err)
	require.NotNil(t, svc)

	require.NoError(t, factory.ValidateServiceConfiguration(&cfg))

	bad := testConfig()
	bad.Depth = 0
	require.Error(t, factory.ValidateServiceConfiguration(&bad))
}
