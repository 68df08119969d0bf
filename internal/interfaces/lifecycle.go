package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/metrics"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State          string `json:"state"`
	SpecCount      int    `json:"spec_count"`
	LiveClients    int    `json:"live_clients"`
	StorageEnabled bool   `json:"storage_enabled"`
	StartedAt      int64  `json:"started_at,omitempty"`
	Error          string `json:"error,omitempty"`
}

type LifecycleManager interface {
	Config() *config.Config
	SpecManager() *devices.Manager
	Metrics() *metrics.Metrics
	GetCurrentStatus() SystemStatus
	ReloadSpecs(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
