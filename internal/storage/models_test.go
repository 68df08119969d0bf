package storage

import (
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredSpecRoundTrip(t *testing.T) {
	vendor, device := 310, 48
	decimals := int32(1)
	spec := &types.DeviceSpecification{
		Name:     "ifm-48-flow-temperature",
		Vendor:   "ifm electronic",
		VendorID: &vendor,
		DeviceID: &device,
		Fields: []types.ProcessDataField{{
			Name: "temperature", BitOffset: 16, BitWidth: 14, Encoding: types.EncodingUnsigned,
			Output: types.StateConfiguration{
				Name: "TemperatureRuecklauf", Type: types.SemanticNumber,
				ScalingFactor: 0.1, Decimals: &decimals, GenerateValue: true,
			},
		}},
	}

	row, err := newStoredSpec(spec)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, row.ID)
	assert.Equal(t, spec.Name, row.SpecName)
	assert.Equal(t, &vendor, row.VendorID)
	assert.Contains(t, string(row.Definition), `"deviceSpecName":"ifm-48-flow-temperature"`)

	back, err := row.Spec()
	require.NoError(t, err)
	assert.Equal(t, spec, back)
}

func TestStoredSpecBadDefinition(t *testing.T) {
	row := &StoredSpec{SpecName: "broken", Definition: []byte("{")}
	_, err := row.Spec()
	assert.ErrorContains(t, err, "broken")
}
