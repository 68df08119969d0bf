package devices

import (
	"context"
	"fmt"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"go.uber.org/zap"
)

// SpecStore persists specifications across restarts.
type SpecStore interface {
	SaveSpec(ctx context.Context, spec *types.DeviceSpecification) error
	LoadAllSpecs(ctx context.Context) ([]*types.DeviceSpecification, error)
	DeleteSpec(ctx context.Context, name string) error
}

type Manager struct {
	loader   *SpecLoader
	registry *Registry
	store    SpecStore // optional
	logger   *zap.Logger
}

func NewManager(searchPaths []string, store SpecStore, logger *zap.Logger) (*Manager, error) {
	loader, err := NewSpecLoader(searchPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create spec loader: %w", err)
	}

	return &Manager{
		loader:   loader,
		registry: NewRegistry(),
		store:    store,
		logger:   logger,
	}, nil
}

func (m *Manager) Registry() *Registry   { return m.registry }
func (m *Manager) Validator() *Validator { return m.loader.Validator() }

// LoadAll fills the registry from the search paths and then from the store.
// Stored specs win over files of the same name. Invalid files are logged and
// skipped; a store error is returned.
func (m *Manager) LoadAll(ctx context.Context) error {
	return m.loadInto(ctx, m.registry)
}

// Reload rereads files and store into a fresh registry and swaps it in, so
// lookups never see a half loaded set. Specs whose file disappeared are gone
// afterwards.
func (m *Manager) Reload(ctx context.Context) error {
	m.loader.ClearCache()

	next := NewRegistry()
	if err := m.loadInto(ctx, next); err != nil {
		return err
	}
	m.registry.replace(next)
	return nil
}

func (m *Manager) loadInto(ctx context.Context, registry *Registry) error {
	specs, failed := m.loader.LoadAll()
	for path, err := range failed {
		m.logger.Warn("Skipping device spec",
			zap.String("path", path),
			zap.Error(err))
	}
	for _, spec := range specs {
		registry.Register(spec)
	}

	m.logger.Info("Device specs loaded from files",
		zap.Int("loaded", len(specs)),
		zap.Int("failed", len(failed)))

	if m.store == nil {
		return nil
	}

	stored, err := m.store.LoadAllSpecs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored specs: %w", err)
	}
	for _, spec := range stored {
		if err := m.loader.Validator().ValidateSpec(spec); err != nil {
			m.logger.Warn("Skipping stored device spec",
				zap.String("spec", spec.Name),
				zap.Error(err))
			continue
		}
		registry.Register(spec)
	}

	m.logger.Info("Device specs loaded from store", zap.Int("count", len(stored)))
	return nil
}

// Register validates a raw JSON document and adds the result to the registry.
// When a store is configured the spec is persisted first.
func (m *Manager) Register(ctx context.Context, data []byte) (*types.DeviceSpecification, error) {
	spec, err := m.loader.Validator().Parse(data)
	if err != nil {
		return nil, err
	}

	if m.store != nil {
		if err := m.store.SaveSpec(ctx, spec); err != nil {
			return nil, fmt.Errorf("failed to persist spec %s: %w", spec.Name, err)
		}
	}

	m.registry.Register(spec)
	m.logger.Info("Device spec registered",
		zap.String("spec", spec.Name),
		zap.Int("fields", len(spec.Fields)))

	return spec, nil
}

func (m *Manager) Remove(ctx context.Context, name string) error {
	if _, ok := m.registry.Get(name); !ok {
		return fmt.Errorf("%w: %s", ErrSpecNotFound, name)
	}

	if m.store != nil {
		if err := m.store.DeleteSpec(ctx, name); err != nil {
			return fmt.Errorf("failed to delete spec %s: %w", name, err)
		}
	}

	m.registry.Remove(name)
	m.logger.Info("Device spec removed", zap.String("spec", name))
	return nil
}

// Resolve finds a spec by name, falling back to the loader for names that are
// file paths relative to a search path.
func (m *Manager) Resolve(name string) (*types.DeviceSpecification, error) {
	if spec, ok := m.registry.Get(name); ok {
		return spec, nil
	}

	return m.loader.Load(name)
}

// LoadFile parses and validates a single spec file without registering it.
func (m *Manager) LoadFile(path string) (*types.DeviceSpecification, error) {
	return m.loader.LoadFile(path)
}

func (m *Manager) Lookup(vendorID, deviceID int) (*types.DeviceSpecification, error) {
	spec, ok := m.registry.Lookup(vendorID, deviceID)
	if !ok {
		return nil, fmt.Errorf("%w: vendor %d device %d", ErrSpecNotFound, vendorID, deviceID)
	}
	return spec, nil
}
