package types

import (
	"fmt"
	"strings"
)

// DeviceSpecification describes how to decode the process data of one IO-Link device type.
type DeviceSpecification struct {
	Name        string `json:"deviceSpecName" yaml:"deviceSpecName"`
	Vendor      string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	ProductName string `json:"productName,omitempty" yaml:"productName,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// VendorID and DeviceID select the spec for an attached device.
	VendorID *int `json:"vendorId,omitempty" yaml:"vendorId,omitempty"`
	DeviceID *int `json:"deviceId,omitempty" yaml:"deviceId,omitempty"`

	// ProcessDataLength is the PDI length in bits. Zero means undeclared.
	ProcessDataLength uint `json:"processDataLength,omitempty" yaml:"processDataLength,omitempty"`

	Fields []ProcessDataField `json:"processDataIn" yaml:"processDataIn"`
}

// ProcessDataField is one bit-addressed region of the process data.
type ProcessDataField struct {
	Name      string   `json:"name" yaml:"name"`
	BitOffset uint     `json:"bitOffset" yaml:"bitOffset"` // counted from the MSB of the buffer
	BitWidth  uint     `json:"bitWidth" yaml:"bitWidth"`
	Encoding  Encoding `json:"encoding" yaml:"encoding"`

	MinValue *float64 `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Clamp    bool     `json:"clamp,omitempty" yaml:"clamp,omitempty"`
	Alias    bool     `json:"alias,omitempty" yaml:"alias,omitempty"`

	Output StateConfiguration `json:"stateConfiguration" yaml:"stateConfiguration"`
	States []StateEntry       `json:"states,omitempty" yaml:"states,omitempty"`
}

// StateConfiguration controls what gets published for a field.
type StateConfiguration struct {
	Name          string       `json:"name" yaml:"name"`
	Unit          string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	Type          SemanticType `json:"type" yaml:"type"`
	Role          string       `json:"role,omitempty" yaml:"role,omitempty"`
	ScalingFactor float64      `json:"scalingFactor,omitempty" yaml:"scalingFactor,omitempty"`
	ScalingOffset float64      `json:"scalingOffset,omitempty" yaml:"scalingOffset,omitempty"`
	Decimals      *int32       `json:"decimals,omitempty" yaml:"decimals,omitempty"`

	GenerateValue   bool `json:"generateValue" yaml:"generateValue"`
	GenerateStatus  bool `json:"generateStatus" yaml:"generateStatus"`
	GenerateChannel bool `json:"generateChannel" yaml:"generateChannel"`
}

// StateEntry maps one raw code to its symbolic name.
type StateEntry struct {
	Value uint64 `json:"value" yaml:"value"`
	Name  string `json:"name" yaml:"name"`
}

type Encoding string

const (
	EncodingUnsigned   Encoding = "unsigned-integer"
	EncodingSigned     Encoding = "signed-integer"
	EncodingBoolean    Encoding = "boolean"
	EncodingEnumerated Encoding = "enumerated"
)

// Valid reports whether e is one of the known encodings.
func (e Encoding) Valid() bool {
	switch e {
	case EncodingUnsigned, EncodingSigned, EncodingBoolean, EncodingEnumerated:
		return true
	default:
		return false
	}
}

type SemanticType string

const (
	SemanticNumber  SemanticType = "number"
	SemanticString  SemanticType = "string"
	SemanticBoolean SemanticType = "boolean"
)

func (t SemanticType) Valid() bool {
	switch t {
	case SemanticNumber, SemanticString, SemanticBoolean:
		return true
	default:
		return false
	}
}

// Compatible reports whether values of encoding e can be published as semantic type t.
func (e Encoding) Compatible(t SemanticType) bool {
	switch e {
	case EncodingUnsigned, EncodingSigned:
		return t == SemanticNumber || t == SemanticString
	case EncodingBoolean:
		return t == SemanticBoolean || t == SemanticNumber
	case EncodingEnumerated:
		return t == SemanticString || t == SemanticNumber
	default:
		return false
	}
}

// DisplayName returns the published name, falling back to the field name.
func (f *ProcessDataField) DisplayName() string {
	if strings.TrimSpace(f.Output.Name) != "" {
		return f.Output.Name
	}
	return f.Name
}

// HasOutput reports whether at least one generate switch is set.
func (f *ProcessDataField) HasOutput() bool {
	return f.Output.GenerateValue || f.Output.GenerateStatus || f.Output.GenerateChannel
}

// End returns the first bit after the field.
func (f *ProcessDataField) End() uint {
	return f.BitOffset + f.BitWidth
}

// Matches reports whether the spec applies to the given vendor and device id.
func (s *DeviceSpecification) Matches(vendorID, deviceID int) bool {
	if s.DeviceID == nil || *s.DeviceID != deviceID {
		return false
	}
	return s.VendorID == nil || *s.VendorID == vendorID
}

func (s *DeviceSpecification) String() string {
	if s.DeviceID != nil {
		return fmt.Sprintf("%s (device %d)", s.Name, *s.DeviceID)
	}
	return s.Name
}
