package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const reloadSpec = `
deviceSpecName: reload-sensor
vendorId: 310
deviceId: 6
processDataIn:
  - name: temperature
    bitOffset: 0
    bitWidth: 16
    encoding: signed-integer
    stateConfiguration:
      name: Temperature
      type: number
      scalingFactor: 0.1
      generateValue: true
`

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to SystemState
		ok       bool
	}{
		{StateInitializing, StateRunning, true},
		{StateRunning, StateReloading, true},
		{StateReloading, StateRunning, true},
		{StateError, StateReloading, true},
		{StateInitializing, StateReloading, false},
		{StateReloading, StateReloading, false},
		{StateStopped, StateRunning, false},
		{SystemState(42), StateRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func newTestLifecycle(t *testing.T, dir string) *LifecycleManager {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.DeviceSpecs.SearchPaths = []string{dir}

	lm, err := NewLifecycleManager(nil, cfg, zap.NewNop())
	require.NoError(t, err)
	return lm
}

func TestReloadSpecs(t *testing.T) {
	dir := t.TempDir()
	lm := newTestLifecycle(t, dir)
	ctx := context.Background()

	assert.Error(t, lm.ReloadSpecs(ctx), "reload needs a running system")

	require.NoError(t, lm.SpecManager().LoadAll(ctx))
	require.NoError(t, lm.transition(StateRunning))
	assert.Equal(t, 0, lm.GetCurrentStatus().SpecCount)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "reload.yaml"), []byte(reloadSpec), 0o644))
	require.NoError(t, lm.ReloadSpecs(ctx))

	status := lm.GetCurrentStatus()
	assert.Equal(t, "RUNNING", status.State)
	assert.Equal(t, 1, status.SpecCount)
	assert.False(t, status.StorageEnabled)
	assert.Empty(t, status.Error)

	_, err := lm.SpecManager().Lookup(310, 6)
	assert.NoError(t, err)
}

func TestShutdownWithoutStart(t *testing.T) {
	lm := newTestLifecycle(t, t.TempDir())
	require.NoError(t, lm.Shutdown(context.Background()))
	require.NoError(t, lm.Shutdown(context.Background()))
	assert.Equal(t, StateStopped, lm.State())
}
