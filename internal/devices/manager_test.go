package devices

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryStore struct {
	mu      sync.Mutex
	specs   map[string]*types.DeviceSpecification
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{specs: make(map[string]*types.DeviceSpecification)}
}

func (s *memoryStore) SaveSpec(_ context.Context, spec *types.DeviceSpecification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.specs[spec.Name] = spec
	return nil
}

func (s *memoryStore) LoadAllSpecs(context.Context) ([]*types.DeviceSpecification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.DeviceSpecification, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec)
	}
	return out, nil
}

func (s *memoryStore) DeleteSpec(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.specs, name)
	return nil
}

func TestManagerRegisterPersists(t *testing.T) {
	store := newMemoryStore()
	m, err := NewManager(nil, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	spec, err := m.Register(ctx, []byte(validSpecJSON))
	require.NoError(t, err)
	assert.Contains(t, store.specs, spec.Name)

	found, err := m.Lookup(310, 135)
	require.NoError(t, err)
	assert.Same(t, spec, found)

	resolved, err := m.Resolve("test-sensor")
	require.NoError(t, err)
	assert.Same(t, spec, resolved)

	require.NoError(t, m.Remove(ctx, "test-sensor"))
	assert.Empty(t, store.specs)
	assert.ErrorIs(t, m.Remove(ctx, "test-sensor"), ErrSpecNotFound)

	_, err = m.Lookup(310, 135)
	assert.ErrorIs(t, err, ErrSpecNotFound)
}

func TestManagerRegisterRejectsInvalid(t *testing.T) {
	store := newMemoryStore()
	m, err := NewManager(nil, store, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = m.Register(context.Background(), []byte(`{"deviceSpecName": "x", "processDataIn": []}`))
	var verr *SpecValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, store.specs)
	assert.Equal(t, 0, m.Registry().Len())

	store.saveErr = errors.New("db down")
	_, err = m.Register(context.Background(), []byte(validSpecJSON))
	assert.Error(t, err)
	assert.Equal(t, 0, m.Registry().Len(), "nothing registered when persisting fails")
}

func TestManagerLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "json-sensor.json", validSpecJSON)
	writeFile(t, dir, "broken.yaml", "deviceSpecName: [")

	store := newMemoryStore()
	ifm, dev := 310, 99
	store.specs["stored"] = &types.DeviceSpecification{
		Name:     "stored",
		VendorID: &ifm,
		DeviceID: &dev,
		Fields: []types.ProcessDataField{{
			Name: "v", BitWidth: 8, Encoding: types.EncodingUnsigned,
			Output: types.StateConfiguration{Name: "V", Type: types.SemanticNumber, GenerateValue: true},
		}},
	}
	store.specs["invalid"] = &types.DeviceSpecification{Name: "invalid"}

	m, err := NewManager([]string{dir}, store, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.LoadAll(context.Background()))

	assert.Equal(t, 2, m.Registry().Len())
	_, err = m.Lookup(310, 99)
	assert.NoError(t, err)
	_, ok := m.Registry().Get("invalid")
	assert.False(t, ok)
}

func TestManagerReloadDropsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, dir, "json-sensor.json", validSpecJSON)
	writeFile(t, dir, "yaml-sensor.yaml", yamlSpec)

	m, err := NewManager([]string{dir}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.LoadAll(ctx))
	assert.Equal(t, 2, m.Registry().Len())

	registry := m.Registry()
	require.NoError(t, os.Remove(jsonPath))
	require.NoError(t, m.Reload(ctx))

	assert.Same(t, registry, m.Registry())
	assert.Equal(t, 1, registry.Len())
	_, ok := registry.Get("yaml-sensor")
	assert.True(t, ok)
	_, err = m.Lookup(310, 135)
	assert.ErrorIs(t, err, ErrSpecNotFound)
}
