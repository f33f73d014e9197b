package ports

import (
	"context"

	"github.com/htm-cortex/layer/internal/domain/htm"
)

// LayerService defines the interface for cortical layer step operations.
type LayerService interface {
	// StepLayer runs one activate/learn/depolarise cycle over the
	// supplied input and returns the resulting state snapshot.
	StepLayer(ctx context.Context, input *htm.LayerStepInput) (*htm.LayerStepResult, error)

	// Break resets the requested part of the layer's temporal state.
	Break(ctx context.Context, req *htm.BreakRequest) error

	// GetConfiguration returns the current layer configuration.
	GetConfiguration(ctx context.Context) (*htm.LayerConfig, error)

	// UpdateConfiguration updates the layer configuration, replacing
	// the underlying engine with a fresh one built from it.
	UpdateConfiguration(ctx context.Context, config *htm.LayerConfig) error

	// GetMetrics returns layer performance and behavioural metrics.
	GetMetrics(ctx context.Context) (*htm.LayerMetrics, error)

	// ResetMetrics resets all performance metrics.
	ResetMetrics(ctx context.Context) error

	// ValidateConfiguration validates a layer configuration without
	// applying it.
	ValidateConfiguration(ctx context.Context, config *htm.LayerConfig) error

	// HealthCheck performs a health check on the layer service.
	HealthCheck(ctx context.Context) error

	// GetInstanceInfo returns layer instance information.
	GetInstanceInfo(ctx context.Context) map[string]interface{}
}

// LayerObserver defines the interface for monitoring layer step
// operations.
type LayerObserver interface {
	// OnStepStarted is called when a layer step begins.
	OnStepStarted(inputID string, input *htm.LayerStepInput)

	// OnStepCompleted is called when a layer step completes.
	OnStepCompleted(inputID string, result *htm.LayerStepResult)

	// OnStepFailed is called when a layer step fails.
	OnStepFailed(inputID string, err error)

	// OnConfigurationChanged is called when configuration is updated.
	OnConfigurationChanged(oldConfig, newConfig *htm.LayerConfig)

	// OnMetricsUpdated is called when metrics are updated.
	OnMetricsUpdated(metrics *htm.LayerMetrics)
}

// ValidationService defines the interface for input validation operations.
type ValidationService interface {
	// ValidateLayerStepInput validates a single step's bit vectors.
	ValidateLayerStepInput(input *htm.LayerStepInput) error

	// ValidateStepRequest validates a complete step request envelope.
	ValidateStepRequest(request *htm.StepRequest) error

	// ValidateLayerConfig validates a layer configuration.
	ValidateLayerConfig(config *htm.LayerConfig) error

	// ValidateBitsInRange validates that bit indices fall within
	// [0, width).
	ValidateBitsInRange(bits []int, width int, fieldName string) error

	// ValidateUUID validates UUID format.
	ValidateUUID(uuid string) error

	// ValidateSensorID validates sensor ID format.
	ValidateSensorID(sensorID string) error
}

// MetricsCollector defines the interface for collecting processing metrics.
type MetricsCollector interface {
	// IncrementRequestCount increments the total request counter
	IncrementRequestCount()

	// IncrementErrorCount increments the error counter
	IncrementErrorCount()

	// RecordProcessingTime records the time taken for processing
	RecordProcessingTime(duration int64)

	// RecordResponseTime records the total response time
	RecordResponseTime(duration int64)

	// SetConcurrentRequests sets the current number of concurrent requests
	SetConcurrentRequests(count int)

	// GetMetrics returns current metrics snapshot
	GetMetrics() map[string]interface{}

	// Reset resets all metrics
	Reset()
}
