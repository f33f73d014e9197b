package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigRoundTripPreservesParameters(t *testing.T) {
	original := DefaultParameters([]int{128})
	original.ColumnDimensions = []int{64}
	original.Depth = 6

	dto := ConfigToDTO(original)
	restored := ConfigFromDTO(dto)

	assert.Equal(t, original.InputDimensions, restored.InputDimensions)
	assert.Equal(t, original.ColumnDimensions, restored.ColumnDimensions)
	assert.Equal(t, original.Depth, restored.Depth)
	assert.Equal(t, original.Proximal, restored.Proximal)
	assert.Equal(t, original.Distal, restored.Distal)
	assert.Equal(t, original.RandomSeed, restored.RandomSeed)
}

func TestDefaultConfigDTOProducesValidParameters(t *testing.T) {
	dto := DefaultConfigDTO([]int{256})
	params := ConfigFromDTO(dto)
	require.NoError(t, params.Validate())
	assert.Equal(t, []int{256}, params.InputDimensions)
}

func TestConfigFromDTOCopiesSlicesIndependently(t *testing.T) {
	dto := DefaultConfigDTO([]int{32})
	params := ConfigFromDTO(dto)

	params.InputDimensions[0] = 999
	assert.NotEqual(t, params.InputDimensions[0], dto.InputDimensions[0])
}
