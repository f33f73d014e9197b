package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Validator wraps the go-playground validator with custom rules
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a validation error with structured information
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Error implements error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// New creates a new validator instance with custom validation rules
func New() *Validator {
	validate := validator.New()

	// Register custom validation functions
	validate.RegisterValidation("uuid", validateUUID)
	validate.RegisterValidation("sparse_bits", validateSparseBits)

	// Report json tag names instead of struct field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// Validate validates a struct and returns structured validation errors
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors ValidationErrors

	for _, err := range err.(validator.ValidationErrors) {
		validationError := ValidationError{
			Field: err.Field(),
			Tag:   err.Tag(),
			Value: fmt.Sprintf("%v", err.Value()),
		}

		// Create human-readable error messages
		switch err.Tag() {
		case "required":
			validationError.Message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "uuid":
			validationError.Message = fmt.Sprintf("Field '%s' must be a valid UUID", err.Field())
		case "min":
			validationError.Message = fmt.Sprintf("Field '%s' must have a minimum value/length of %s", err.Field(), err.Param())
		case "max":
			validationError.Message = fmt.Sprintf("Field '%s' must have a maximum value/length of %s", err.Field(), err.Param())
		case "oneof":
			validationError.Message = fmt.Sprintf("Field '%s' must be one of: %s", err.Field(), err.Param())
		case "alphanum":
			validationError.Message = fmt.Sprintf("Field '%s' must contain only alphanumeric characters", err.Field())
		case "sparse_bits":
			validationError.Message = fmt.Sprintf("Field '%s' must contain non-negative, strictly increasing bit indices", err.Field())
		default:
			validationError.Message = fmt.Sprintf("Field '%s' failed validation for tag '%s'", err.Field(), err.Tag())
		}

		validationErrors = append(validationErrors, validationError)
	}

	return validationErrors
}

// validateUUID validates that a string is a valid UUID
func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// validateSparseBits validates that a []int field holds non-negative,
// strictly increasing bit indices, the canonical shape of a sparse
// bit-vector field (ff_bits, stable_ff_bits, ...).
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

// ValidateBitsWithinWidth validates that every bit index in a sparse
// bit vector falls within [0, width).
func ValidateBitsWithinWidth(bits []int, width int) error {
	for _, b := range bits {
		if b < 0 || b >= width {
			return fmt.Errorf("bit %d out of range for width %d", b, width)
		}
	}
	return nil
}

// ValidateStableSubsetOfFF validates that every stable feed-forward
// bit also appears among the feed-forward bits.
func ValidateStableSubsetOfFF(stable, ff []int) error {
	present := make(map[int]struct{}, len(ff))
	for _, b := range ff {
		present[b] = struct{}{}
	}
	for _, b := range stable {
		if _, ok := present[b]; !ok {
			return fmt.Errorf("stable bit %d not present in feed-forward bits", b)
		}
	}
	return nil
}
