package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireSample struct {
	ID     string `json:"id" validate:"required,uuid"`
	FFBits []int  `json:"ff_bits" validate:"required,sparse_bits"`
}

func TestValidateAcceptsWellFormedStruct(t *testing.T) {
	v := New()
	sample := wireSample{ID: uuid.New().String(), FFBits: []int{0, 1, 5}}
	assert.Nil(t, v.Validate(&sample))
}

func TestValidateReportsRequiredField(t *testing.T) {
	v := New()
	sample := wireSample{FFBits: []int{1}}

	errs := v.Validate(&sample)
	require.NotNil(t, errs)

	found := false
	for _, e := range errs {
		if e.Field == "id" && e.Tag == "required" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateReportsInvalidUUID(t *testing.T) {
	v := New()
	sample := wireSample{ID: "not-a-uuid", FFBits: []int{1}}

	errs := v.Validate(&sample)
	require.NotNil(t, errs)
	assert.Equal(t, "uuid", errs[0].Tag)
}

func TestValidateReportsNonIncreasingSparseBits(t *testing.T) {
	v := New()
	sample := wireSample{ID: uuid.New().String(), FFBits: []int{5, 2}}

	errs := v.Validate(&sample)
	require.NotNil(t, errs)
	assert.Equal(t, "sparse_bits", errs[0].Tag)
	assert.Contains(t, errs.Error(), "ff_bits")
}

func TestValidateBitsWithinWidth(t *testing.T) {
	require.NoError(t, ValidateBitsWithinWidth([]int{0, 10, 63}, 64))
	require.Error(t, ValidateBitsWithinWidth([]int{64}, 64))
}

func TestValidateStableSubsetOfFF(t *testing.T) {
	require.NoError(t, ValidateStableSubsetOfFF([]int{1, 2}, []int{1, 2, 3}))
	require.Error(t, ValidateStableSubsetOfFF([]int{1, 9}, []int{1, 2, 3}))
}
