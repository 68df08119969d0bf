package storage

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/jackc/pgx/v5"
)

// SaveSpec inserts or replaces a device spec by name.
func (p *PostgresClient) SaveSpec(ctx context.Context, spec *types.DeviceSpecification) error {
	row, err := newStoredSpec(spec)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO device_specs (id, spec_name, vendor, vendor_id, device_id, definition)
		VALUES (@id, @name, @vendor, @vendor_id, @device_id, @definition)
		ON CONFLICT (spec_name)
		DO UPDATE SET
			vendor = EXCLUDED.vendor,
			vendor_id = EXCLUDED.vendor_id,
			device_id = EXCLUDED.device_id,
			definition = EXCLUDED.definition,
			updated_at = NOW()
	`, pgx.NamedArgs{
		"id":         row.ID,
		"name":       row.SpecName,
		"vendor":     row.Vendor,
		"vendor_id":  row.VendorID,
		"device_id":  row.DeviceID,
		"definition": row.Definition,
	})

	if err != nil {
		return fmt.Errorf("failed to upsert spec: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListStoredSpecs returns all rows ordered by name.
func (p *PostgresClient) ListStoredSpecs(ctx context.Context) ([]StoredSpec, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, spec_name, vendor, vendor_id, device_id, definition, created_at, updated_at
		FROM device_specs
		ORDER BY spec_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query specs: %w", err)
	}
	defer rows.Close()

	stored := make([]StoredSpec, 0)
	for rows.Next() {
		var s StoredSpec
		err := rows.Scan(&s.ID, &s.SpecName, &s.Vendor, &s.VendorID, &s.DeviceID,
			&s.Definition, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan spec: %w", err)
		}
		stored = append(stored, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read specs: %w", err)
	}

	return stored, nil
}

// LoadAllSpecs decodes every stored spec.
func (p *PostgresClient) LoadAllSpecs(ctx context.Context) ([]*types.DeviceSpecification, error) {
	stored, err := p.ListStoredSpecs(ctx)
	if err != nil {
		return nil, err
	}

	specs := make([]*types.DeviceSpecification, 0, len(stored))
	for i := range stored {
		spec, err := stored[i].Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// DeleteSpec removes a spec by name. Specs loaded from files are never stored,
// so a missing row is not an error.
func (p *PostgresClient) DeleteSpec(ctx context.Context, name string) error {
	_, err := p.pool.Exec(ctx, `
		DELETE FROM device_specs
		WHERE spec_name = $1
	`, name)

	if err != nil {
		return fmt.Errorf("failed to delete spec: %w", err)
	}
	return nil
}
