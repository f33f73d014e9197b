package services

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/htm-cortex/layer/internal/domain/htm"
	"github.com/htm-cortex/layer/internal/ports"
)

// ValidationServiceImpl implements the ValidationService interface.
type ValidationServiceImpl struct {
	validator *validator.Validate
	metrics   ports.MetricsCollector
}

// NewValidationService creates a new validation service.
func NewValidationService(metrics ports.MetricsCollector) ports.ValidationService {
	v := validator.New()
	v.RegisterValidation("sparse_bits", validateSparseBits)

	return &ValidationServiceImpl{
		validator: v,
		metrics:   metrics,
	}
}

// ValidateLayerStepInput validates a single step's bit vectors.
func (vs *ValidationServiceImpl) ValidateLayerStepInput(input *htm.LayerStepInput) error {
	if input == nil {
		return fmt.Errorf("input cannot be nil")
	}

	if err := vs.validator.Struct(input); err != nil {
		vs.countError()
		return fmt.Errorf("input validation failed: %w", err)
	}

	if err := vs.validateStableSubset(input.StableFFBits, input.FFBits); err != nil {
		vs.countError()
		return fmt.Errorf("business rule validation failed: %w", err)
	}

	return nil
}

// ValidateStepRequest validates a complete step request envelope.
func (vs *ValidationServiceImpl) ValidateStepRequest(request *htm.StepRequest) error {
	if request == nil {
		return fmt.Errorf("request cannot be nil")
	}

	if err := vs.validator.Struct(request); err != nil {
		vs.countError()
		return fmt.Errorf("request validation failed: %w", err)
	}

	if err := vs.ValidateLayerStepInput(&request.Input); err != nil {
		return fmt.Errorf("input validation within request failed: %w", err)
	}

	return nil
}

// ValidateLayerConfig validates a layer configuration.
func (vs *ValidationServiceImpl) ValidateLayerConfig(config *htm.LayerConfig) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := vs.validator.Struct(config); err != nil {
		vs.countError()
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// ValidateBitsInRange validates that bit indices fall within [0, width).
func (vs *ValidationServiceImpl) ValidateBitsInRange(bits []int, width int, fieldName string) error {
	for _, b := range bits {
		if b < 0 || b >= width {
			vs.countError()
			return fmt.Errorf("%s contains out-of-range bit %d (width %d)", fieldName, b, width)
		}
	}
	return nil
}

// ValidateUUID validates UUID format.
func (vs *ValidationServiceImpl) ValidateUUID(id string) error {
	if id == "" {
		return fmt.Errorf("UUID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID format: %w", err)
	}
	return nil
}

// ValidateSensorID validates sensor ID format.
func (vs *ValidationServiceImpl) ValidateSensorID(sensorID string) error {
	if len(sensorID) == 0 {
		return fmt.Errorf("sensor ID cannot be empty")
	}

	if len(sensorID) > 50 {
		return fmt.Errorf("sensor ID too long: maximum 50 characters")
	}

	for _, char := range sensorID {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9')) {
			return fmt.Errorf("sensor ID must contain only alphanumeric characters")
		}
	}

	return nil
}

// validateStableSubset enforces that every stable feed-forward bit is
// also present among the feed-forward bits, a precondition the
// engagement gate depends on.
func (vs *ValidationServiceImpl) validateStableSubset(stable, ff []int) error {
	if len(stable) == 0 {
		return nil
	}

	present := make(map[int]struct{}, len(ff))
	for _, b := range ff {
		present[b] = struct{}{}
	}

	missing := make([]int, 0)
	for _, b := range stable {
		if _, ok := present[b]; !ok {
			missing = append(missing, b)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return fmt.Errorf("stable_ff_bits contains bits not present in ff_bits: %v", missing)
	}
	return nil
}

func (vs *ValidationServiceImpl) countError() {
	if vs.metrics != nil {
		vs.metrics.IncrementErrorCount()
	}
}

// validateSparseBits validates that a []int field holds non-negative,
// strictly increasing bit indices.
func validateSparseBits(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	prev := -1
	for i := 0; i < field.Len(); i++ {
		v := int(field.Index(i).Int())
		if v < 0 || v <= prev {
			return false
		}
		prev = v
	}
	return true
}
