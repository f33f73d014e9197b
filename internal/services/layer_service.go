package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/htm-cortex/layer/internal/cortical/layer"
	"github.com/htm-cortex/layer/internal/cortical/sdr"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/ports"
)

// layerService implements the LayerService interface, wrapping a
// *layer.Layer with concurrency control, metrics, and observer
// notification.
type layerService struct {
	mu         sync.RWMutex
	engine     *layer.Layer
	config     htm.LayerConfig
	metrics    *htm.LayerMetrics
	observers  []ports.LayerObserver
	instanceID string
	createdAt  time.Time
	lastStepAt time.Time

	similarity     *sdr.SimilarityCalculator
	stability      *sdr.TemporalSimilarityTracker
	representation *sdr.RepresentationAnalyzer
	outputOps      *sdr.LayerOutputOperations
	prevOutput     *sdr.SDR
	outputWidth    int
	inputWidth     int
	numColumns     int

	continuityWindowIn  []*sdr.SDR
	continuityWindowOut []*sdr.SDR
}

// continuityWindowSize bounds how many recent (input, output) SDR
// pairs are kept for the semantic continuity sample.
const continuityWindowSize = 10

// NewLayerService creates a new layer service from a wire-format
// configuration. A nil config is rejected with an error.
func NewLayerService(config *htm.LayerConfig, instanceID string) (ports.LayerService, error) {
	if config == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	params := layer.ConfigFromDTO(*config)
	engine, err := layer.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create layer engine: %w", err)
	}

	return &layerService{
		engine:         engine,
		config:         *config,
		metrics:        htm.NewLayerMetrics(),
		observers:      make([]ports.LayerObserver, 0),
		instanceID:     instanceID,
		createdAt:      time.Now(),
		similarity:     sdr.NewSimilarityCalculator(),
		stability:      sdr.NewTemporalSimilarityTracker(20),
		representation: sdr.NewRepresentationAnalyzer(params.ActivationLevel, params.ActivationLevelMax),
		outputOps:      sdr.NewLayerOutputOperations(params.ActivationLevel, params.ActivationLevelMax),
		outputWidth:    params.NumColumns() * params.Depth,
		inputWidth:     params.InputWidth(),
		numColumns:     params.NumColumns(),
	}, nil
}

// StepLayer runs one activate/learn/depolarise cycle.
func (s *layerService) StepLayer(ctx context.Context, input *htm.LayerStepInput) (*htm.LayerStepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	s.notifyStepStarted(input.ID, input)

	select {
	case <-ctx.Done():
		err := ctx.Err()
		s.notifyStepFailed(input.ID, err)
		return nil, err
	default:
	}

	if err := s.engine.Activate(input.FFBits, input.StableFFBits); err != nil {
		s.recordFailure(err)
		s.notifyStepFailed(input.ID, err)
		return nil, fmt.Errorf("activation failed: %w", err)
	}

	if input.LearningEnabled {
		if err := s.engine.Learn(); err != nil {
			s.recordFailure(err)
			s.notifyStepFailed(input.ID, err)
			return nil, fmt.Errorf("learning failed: %w", err)
		}
	}

	if err := s.engine.Depolarise(input.DistalFFBits, input.ApicalFBBits, input.ApicalFBWCBits); err != nil {
		s.recordFailure(err)
		s.notifyStepFailed(input.ID, err)
		return nil, fmt.Errorf("depolarisation failed: %w", err)
	}

	state := s.engine.State()
	snapshot := toStateSnapshot(state)
	stability := s.recordOutputStability(snapshot.OutFFBits)
	s.recordSemanticContinuity(snapshot.InFFBits, snapshot.OutFFBits)

	s.lastStepAt = time.Now()
	processingTimeMs := time.Since(start).Milliseconds()
	s.metrics.RecordStep(
		processingTimeMs,
		len(snapshot.ActiveColumns),
		len(snapshot.BurstingColumns),
		s.numColumns,
		stability,
		len(snapshot.ActiveColumns) > 0,
		input.LearningEnabled,
		false,
	)

	result := &htm.LayerStepResult{
		ID:    input.ID,
		State: snapshot,
		Metadata: htm.StepMetadata{
			ProcessingTimeMs: processingTimeMs,
			InstanceID:       s.instanceID,
			AlgorithmVersion: LayerAlgorithmVersion,
			StabilityScore:   stability,
			Timestamp:        s.lastStepAt,
		},
		Status: htm.StatusSuccess,
	}

	s.notifyStepCompleted(input.ID, result)
	return result, nil
}

// Break resets the requested part of the layer's temporal state.
func (s *layerService) Break(ctx context.Context, req *htm.BreakRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind, err := breakKindFromWire(req.Kind)
	if err != nil {
		return err
	}
	s.engine.Break(kind)
	return nil
}

// GetConfiguration returns the current layer configuration.
func (s *layerService) GetConfiguration(ctx context.Context) (*htm.LayerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configCopy := s.config
	return &configCopy, nil
}

// UpdateConfiguration updates the layer configuration, replacing the
// underlying engine with a fresh one built from it on every call.
func (s *layerService) UpdateConfiguration(ctx context.Context, config *htm.LayerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := layer.ConfigFromDTO(*config)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	newEngine, err := layer.New(params)
	if err != nil {
		return fmt.Errorf("failed to create new layer engine: %w", err)
	}

	oldConfig := s.config
	s.engine = newEngine
	s.config = *config
	s.outputWidth = params.NumColumns() * params.Depth
	s.inputWidth = params.InputWidth()
	s.numColumns = params.NumColumns()
	s.prevOutput = nil
	s.stability = sdr.NewTemporalSimilarityTracker(20)
	s.continuityWindowIn = nil
	s.continuityWindowOut = nil

	s.notifyConfigurationChanged(&oldConfig, config)
	return nil
}

// GetMetrics returns layer performance and behavioural metrics.
func (s *layerService) GetMetrics(ctx context.Context) (*htm.LayerMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metricsCopy := *s.metrics
	return &metricsCopy, nil
}

// ResetMetrics resets all performance metrics.
func (s *layerService) ResetMetrics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics = htm.NewLayerMetrics()
	return nil
}

// ValidateConfiguration validates a layer configuration without
// applying it.
func (s *layerService) ValidateConfiguration(ctx context.Context, config *htm.LayerConfig) error {
	return layer.ConfigFromDTO(*config).Validate()
}

// HealthCheck performs a health check on the layer service.
func (s *layerService) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.engine == nil {
		return fmt.Errorf("layer engine is not initialized")
	}
	params := layer.ConfigFromDTO(s.config)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}
	return nil
}

// GetInstanceInfo returns layer instance information.
func (s *layerService) GetInstanceInfo(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]interface{}{
		"instance_id":    s.instanceID,
		"created_at":     s.createdAt,
		"last_step_at":   s.lastStepAt,
		"uptime_seconds": time.Since(s.createdAt).Seconds(),
		"timestep":       s.engine.Timestep(),
		"configuration": map[string]interface{}{
			"column_dimensions": s.config.ColumnDimensions,
			"input_dimensions":  s.config.InputDimensions,
			"depth":             s.config.Depth,
		},
		"observer_count": len(s.observers),
	}

	if stability := s.stability.GetStabilityMetrics(); stability.HasSufficientData {
		info["stability_summary"] = map[string]interface{}{
			"similarity_variance": stability.SimilarityVariance,
			"similarity_trend":    stability.SimilarityTrend,
		}
	}

	return info
}

// AddObserver adds a step observer.
func (s *layerService) AddObserver(observer ports.LayerObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// RemoveObserver removes a step observer.
func (s *layerService) RemoveObserver(observer ports.LayerObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obs := range s.observers {
		if obs == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			break
		}
	}
}

// recordOutputStability computes the overlap similarity between this
// step's output bits and the prior step's, feeding both into the
// temporal tracker and returning the immediate score.
func (s *layerService) recordOutputStability(outFFBits []int) float64 {
	cur, err := sdr.NewSDR(s.outputWidth, outFFBits)
	if err != nil {
		return 0
	}
	if result := s.representation.ValidateRepresentation(cur); !result.IsValid {
		s.metrics.RecordError(htm.LayerErrStateSequencing)
	}

	score := 0.0
	if s.prevOutput != nil {
		score = s.similarity.OverlapSimilarity(s.prevOutput, cur)
		_ = s.stability.AddSnapshot(int64(s.engine.Timestep()), []*sdr.SDR{s.prevOutput, cur})
	}
	s.prevOutput = cur
	return score
}

// recordSemanticContinuity samples the current step's input/output SDR
// pair into a bounded window and, once the window is full, scores how
// often similar inputs stayed similar (and dissimilar inputs stayed
// dissimilar) on the way through the layer.
func (s *layerService) recordSemanticContinuity(inFFBits, outFFBits []int) {
	in, err := sdr.NewSDR(s.inputWidth, inFFBits)
	if err != nil {
		return
	}
	out, err := sdr.NewSDR(s.outputWidth, outFFBits)
	if err != nil {
		return
	}

	s.continuityWindowIn = append(s.continuityWindowIn, in)
	s.continuityWindowOut = append(s.continuityWindowOut, out)
	if len(s.continuityWindowIn) > continuityWindowSize {
		s.continuityWindowIn = s.continuityWindowIn[1:]
		s.continuityWindowOut = s.continuityWindowOut[1:]
	}
	if len(s.continuityWindowIn) < continuityWindowSize {
		return
	}

	const similarThreshold, differentThreshold = 0.3, 0.1
	score, err := s.outputOps.CalculateSemanticContinuity(s.continuityWindowIn, s.continuityWindowOut, similarThreshold, differentThreshold)
	if err != nil {
		return
	}
	s.metrics.RecordSemanticContinuity(score)
}

func (s *layerService) recordFailure(err error) {
	if layerErr, ok := err.(*htm.LayerError); ok {
		s.metrics.RecordError(layerErr.Code)
		return
	}
	s.metrics.RecordError(htm.LayerErrStateSequencing)
}

func (s *layerService) notifyStepStarted(inputID string, input *htm.LayerStepInput) {
	for _, observer := range s.observers {
		observer.OnStepStarted(inputID, input)
	}
}

func (s *layerService) notifyStepCompleted(inputID string, result *htm.LayerStepResult) {
	for _, observer := range s.observers {
		observer.OnStepCompleted(inputID, result)
	}
}

func (s *layerService) notifyStepFailed(inputID string, err error) {
	for _, observer := range s.observers {
		observer.OnStepFailed(inputID, err)
	}
}

func (s *layerService) notifyConfigurationChanged(oldConfig, newConfig *htm.LayerConfig) {
	for _, observer := range s.observers {
		observer.OnConfigurationChanged(oldConfig, newConfig)
	}
}

// toStateSnapshot projects a layer.State onto its JSON-safe DTO.
func toStateSnapshot(state layer.State) htm.LayerStateSnapshot {
	return htm.LayerStateSnapshot{
		Timestep:             state.Timestep,
		ActiveColumns:        state.ActiveColumns,
		BurstingColumns:      state.BurstingColumns,
		ActiveCells:          toCellRefs(state.ActiveCells),
		WinnerCells:          toCellRefs(state.WinnerCells),
		PredictiveCells:      toCellRefs(state.PredictiveCells),
		PriorPredictiveCells: toCellRefs(state.PriorPredictiveCells),
		InFFBits:             state.InFFBits,
		InStableFFBits:       state.InStableFFBits,
		OutFFBits:            state.OutFFBits,
		OutStableFFBits:      state.OutStableFFBits,
	}
}

func toCellRefs(cells []layer.CellID) []htm.CellRef {
	refs := make([]htm.CellRef, 0, len(cells))
	for _, c := range cells {
		refs = append(refs, htm.CellRef{Column: c.Column, Index: c.Index})
	}
	return refs
}

func breakKindFromWire(kind htm.BreakKindWire) (layer.BreakKind, error) {
	switch kind {
	case htm.BreakKindTM:
		return layer.BreakTM, nil
	case htm.BreakKindTP:
		return layer.BreakTP, nil
	case htm.BreakKindWinners:
		return layer.BreakWinners, nil
	default:
		return 0, fmt.Errorf("unknown break kind: %s", kind)
	}
}

// LayerAlgorithmVersion identifies the cortical layer algorithm
// revision reported in step metadata.
const LayerAlgorithmVersion = "1.0.0"

// LayerServiceFactory creates layer services.
type LayerServiceFactory struct{}

// NewLayerServiceFactory creates a new service factory.
func NewLayerServiceFactory() *LayerServiceFactory {
	return &LayerServiceFactory{}
}

// CreateService creates a layer service.
func (f *LayerServiceFactory) CreateService(config *htm.LayerConfig, instanceID string) (ports.LayerService, error) {
	return NewLayerService(config, instanceID)
}

// ValidateServiceConfiguration validates service configuration.
func (f *LayerServiceFactory) ValidateServiceConfiguration(config *htm.LayerConfig) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	return layer.ConfigFromDTO(*config).Validate()
}
