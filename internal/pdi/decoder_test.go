package pdi

import (
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func humiditySpec() *types.DeviceSpecification {
	return &types.DeviceSpecification{
		Name:              "ifm LDH100",
		ProcessDataLength: 80,
		Fields: []types.ProcessDataField{
			{
				Name:      "humidity",
				BitOffset: 0,
				BitWidth:  16,
				Encoding:  types.EncodingUnsigned,
				MinValue:  ptr(0.0),
				MaxValue:  ptr(100.0),
				Output: types.StateConfiguration{
					Name:           "Humidity",
					Unit:           "%",
					Type:           types.SemanticNumber,
					Role:           "value.humidity",
					ScalingFactor:  0.1,
					GenerateValue:  true,
					GenerateStatus: true,
				},
			},
			{
				Name:      "temperature",
				BitOffset: 32,
				BitWidth:  16,
				Encoding:  types.EncodingSigned,
				Output: types.StateConfiguration{
					Name:            "Temperature",
					Unit:            "°C",
					Type:            types.SemanticNumber,
					Role:            "value.temperature",
					ScalingFactor:   0.1,
					GenerateValue:   true,
					GenerateStatus:  true,
					GenerateChannel: true,
				},
			},
		},
	}
}

func TestDecodeHumidityTemperature(t *testing.T) {
	res, err := Decode("01A1FF00000CFFFF0000", humiditySpec())
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Fields, 2)

	hum := res.Fields[0]
	assert.Equal(t, "humidity", hum.ID)
	assert.Equal(t, uint64(417), hum.Raw)
	assert.Equal(t, 41.7, hum.Value)
	assert.Equal(t, types.StatusOK, hum.Status)
	assert.Equal(t, types.ShapeFlat, hum.Shape)
	assert.Equal(t, "humidity", hum.ValueID)
	assert.Equal(t, "humidity_status", hum.StatusID)
	assert.Equal(t, "%", hum.Unit)

	temp := res.Fields[1]
	assert.Equal(t, uint64(12), temp.Raw)
	assert.Equal(t, 1.2, temp.Value)
	assert.Equal(t, types.ShapeChannel, temp.Shape)
	assert.Equal(t, "temperature.value", temp.ValueID)
	assert.Equal(t, "temperature.status", temp.StatusID)
	assert.Equal(t, "value.temperature", temp.Role)
}

func TestDecodeOutOfRangeStatus(t *testing.T) {
	// 0x03E9 = 1001 -> 100.1 %
	res, err := Decode("03E9FF00000CFFFF0000", humiditySpec())
	require.NoError(t, err)

	hum, ok := res.Field("humidity")
	require.True(t, ok)
	assert.False(t, hum.InRange)
	assert.Equal(t, StatusOutOfRange, hum.Status)
	assert.Equal(t, 100.1, hum.Value)
	assert.False(t, hum.Failed(), "out of range is data, not a failure")
}

func TestDecodeIsolatesFieldFailures(t *testing.T) {
	spec := &types.DeviceSpecification{
		Name: "partial",
		Fields: []types.ProcessDataField{
			{Name: "head", BitOffset: 0, BitWidth: 8, Encoding: types.EncodingUnsigned,
				Output: types.StateConfiguration{Name: "head", Type: types.SemanticNumber, GenerateValue: true}},
			{Name: "tail", BitOffset: 60, BitWidth: 8, Encoding: types.EncodingUnsigned,
				Output: types.StateConfiguration{Name: "tail", Type: types.SemanticNumber, GenerateValue: true}},
			{Name: "flag", BitOffset: 8, BitWidth: 1, Encoding: types.EncodingBoolean,
				Output: types.StateConfiguration{Name: "flag", Type: types.SemanticBoolean, GenerateValue: true}},
			{Name: "mode", BitOffset: 12, BitWidth: 4, Encoding: types.EncodingEnumerated,
				Output: types.StateConfiguration{Name: "mode", Type: types.SemanticBoolean, GenerateValue: true},
				States: []types.StateEntry{{Value: 1, Name: "auto"}}},
			{Name: "silent", BitOffset: 16, BitWidth: 8, Encoding: types.EncodingUnsigned,
				Output: types.StateConfiguration{Name: "silent", Type: types.SemanticNumber}},
			{Name: "wide", BitOffset: 0, BitWidth: 0, Encoding: types.EncodingUnsigned,
				Output: types.StateConfiguration{Name: "wide", Type: types.SemanticNumber, GenerateValue: true}},
		},
	}

	res, err := Decode("A5817F0000000000", spec)
	require.NoError(t, err)
	require.Len(t, res.Fields, 6)
	require.Len(t, res.Failures, 4)

	head := res.Fields[0]
	assert.False(t, head.Failed())
	assert.Equal(t, 165.0, head.Value)

	tail := res.Fields[1]
	assert.ErrorIs(t, tail.Err, ErrOutOfBounds)
	assert.Equal(t, "OutOfBounds", tail.Status)
	assert.Equal(t, "OutOfBounds", tail.ErrorKind)
	assert.Nil(t, tail.Value)

	flag := res.Fields[2]
	assert.False(t, flag.Failed())
	assert.Equal(t, true, flag.Value)

	assert.ErrorIs(t, res.Fields[3].Err, ErrTypeMismatch)
	assert.ErrorIs(t, res.Fields[4].Err, ErrNoOutput)
	assert.Equal(t, "ConfigurationError", res.Fields[4].Status)
	assert.ErrorIs(t, res.Fields[5].Err, ErrInvalidWidth)

	assert.Equal(t, "tail", res.Failures[0].Field)
	assert.Equal(t, "OutOfBounds", res.Failures[0].Kind())
}

func TestDecodeEnumeratedUnknownCode(t *testing.T) {
	spec := &types.DeviceSpecification{
		Name: "port",
		Fields: []types.ProcessDataField{{
			Name:      "status",
			BitOffset: 4,
			BitWidth:  4,
			Encoding:  types.EncodingEnumerated,
			Output:    types.StateConfiguration{Name: "Device status", Type: types.SemanticString, Role: "info.status", GenerateStatus: true},
			States:    portStates,
		}},
	}

	res, err := Decode("07", spec)
	require.NoError(t, err)
	require.True(t, res.OK())

	f := res.Fields[0]
	assert.Equal(t, "device_status", f.ID)
	assert.Equal(t, "Unknown(7)", f.Status)
	assert.Equal(t, "device_status_status", f.StatusID)
	assert.Empty(t, f.ValueID)

	res, err = Decode("02", spec)
	require.NoError(t, err)
	assert.Equal(t, "Operate", res.Fields[0].Status)
}

func TestDecodeEnumeratedValueAndStatus(t *testing.T) {
	spec := &types.DeviceSpecification{
		Name: "switch",
		Fields: []types.ProcessDataField{{
			Name:     "state",
			BitWidth: 8,
			Encoding: types.EncodingEnumerated,
			Output:   types.StateConfiguration{Name: "State", Type: types.SemanticString, GenerateValue: true, GenerateChannel: true},
			States:   portStates,
		}},
	}

	res, err := Decode("03", spec)
	require.NoError(t, err)
	f := res.Fields[0]
	assert.Equal(t, "Communication error", f.Value)
	assert.Equal(t, "Communication error", f.Status)
	assert.Equal(t, "state.value", f.ValueID)
	assert.Equal(t, "state.status", f.StatusID)
}

func TestDecodeWithoutSpec(t *testing.T) {
	_, err := Decode("00", nil)
	assert.ErrorIs(t, err, ErrNoSpec)
}

func TestDecodeIdempotent(t *testing.T) {
	spec := humiditySpec()
	first, err := Decode("01A1FF00000CFFFF0000", spec)
	require.NoError(t, err)
	second, err := Decode("01A1FF00000CFFFF0000", spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeKeepsDeclarationOrder(t *testing.T) {
	spec := humiditySpec()
	spec.Fields[0], spec.Fields[1] = spec.Fields[1], spec.Fields[0]

	res, err := Decode("01A1FF00000CFFFF0000", spec)
	require.NoError(t, err)
	assert.Equal(t, "temperature", res.Fields[0].ID)
	assert.Equal(t, "humidity", res.Fields[1].ID)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode("XYZ", humiditySpec())
	assert.ErrorIs(t, err, ErrInvalidBuffer)

	_, err = Decode("00", nil)
	assert.Error(t, err)
}
