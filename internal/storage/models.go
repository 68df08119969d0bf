package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/google/uuid"
)

// StoredSpec is a row of device_specs.
type StoredSpec struct {
	ID         uuid.UUID `json:"id"`
	SpecName   string    `json:"spec_name"`
	Vendor     string    `json:"vendor"`
	VendorID   *int      `json:"vendor_id,omitempty"`
	DeviceID   *int      `json:"device_id,omitempty"`
	Definition []byte    `json:"definition"` // JSONB
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newStoredSpec(spec *types.DeviceSpecification) (*StoredSpec, error) {
	def, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spec: %w", err)
	}

	return &StoredSpec{
		ID:         uuid.New(),
		SpecName:   spec.Name,
		Vendor:     spec.Vendor,
		VendorID:   spec.VendorID,
		DeviceID:   spec.DeviceID,
		Definition: def,
	}, nil
}

// Spec decodes the stored definition.
func (s *StoredSpec) Spec() (*types.DeviceSpecification, error) {
	var spec types.DeviceSpecification
	if err := json.Unmarshal(s.Definition, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec %s: %w", s.SpecName, err)
	}
	return &spec, nil
}
