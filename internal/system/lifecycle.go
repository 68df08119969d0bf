package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/api/rest"
	"github.com/KevinKickass/OpenIOLink/internal/api/websocket"
	"github.com/KevinKickass/OpenIOLink/internal/auth"
	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/KevinKickass/OpenIOLink/internal/devices"
	"github.com/KevinKickass/OpenIOLink/internal/interfaces"
	"github.com/KevinKickass/OpenIOLink/internal/metrics"
	"github.com/KevinKickass/OpenIOLink/internal/storage"
	"go.uber.org/zap"
)

type LifecycleManager struct {
	config      *config.Config
	storage     *storage.PostgresClient // nil without database
	specManager *devices.Manager
	metrics     *metrics.Metrics
	wsHub       *websocket.Hub
	authService *auth.Service // nil when auth is disabled
	logger      *zap.Logger

	restServer *rest.Server
	hubCancel  context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState
	lastError    error
	startedAt    time.Time

	shutdownOnce sync.Once
}

// NewLifecycleManager wires the spec manager, metrics and live feed. db may be
// nil, in which case specs registered at runtime are not persisted.
func NewLifecycleManager(db *storage.PostgresClient, cfg *config.Config, logger *zap.Logger) (*LifecycleManager, error) {
	var store devices.SpecStore
	if db != nil {
		store = db
	}

	specManager, err := devices.NewManager(cfg.DeviceSpecs.SearchPaths, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create spec manager: %w", err)
	}

	var authService *auth.Service
	if cfg.Auth.Enabled {
		authService, err = auth.NewService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to create auth service: %w", err)
		}
	}

	m := metrics.New()

	return &LifecycleManager{
		config:       cfg,
		storage:      db,
		specManager:  specManager,
		metrics:      m,
		wsHub:        websocket.NewHub(logger, m.LiveClients),
		authService:  authService,
		logger:       logger,
		currentState: StateInitializing,
	}, nil
}

// Start loads all specs and brings up the live feed and the REST API.
func (lm *LifecycleManager) Start(ctx context.Context) error {
	lm.logger.Info("Starting OpenIOLink")

	hubCtx, cancel := context.WithCancel(context.Background())
	lm.hubCancel = cancel
	go lm.wsHub.Run(hubCtx)

	if err := lm.specManager.LoadAll(ctx); err != nil {
		// Stored specs are optional, file specs are already registered
		lm.logger.Warn("Failed to load stored device specs", zap.Error(err))
	}
	lm.metrics.SpecsRegistered.Set(float64(lm.specManager.Registry().Len()))

	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.wsHub, lm.authService)
	if err := lm.restServer.Start(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	lm.stateMu.Lock()
	lm.startedAt = time.Now()
	lm.stateMu.Unlock()

	if err := lm.transition(StateRunning); err != nil {
		return err
	}

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.Int("specs", lm.specManager.Registry().Len()),
		zap.Bool("storage_enabled", lm.storage != nil),
		zap.Bool("auth_enabled", lm.authService != nil))

	return nil
}

// ReloadSpecs rereads all device specs. Only one reload runs at a time.
func (lm *LifecycleManager) ReloadSpecs(ctx context.Context) error {
	if err := lm.transition(StateReloading); err != nil {
		return fmt.Errorf("cannot reload: %w", err)
	}

	start := time.Now()
	if err := lm.specManager.Reload(ctx); err != nil {
		lm.setError(err)
		return fmt.Errorf("failed to reload specs: %w", err)
	}

	count := lm.specManager.Registry().Len()
	lm.metrics.SpecsRegistered.Set(float64(count))
	lm.logger.Info("Device specs reloaded",
		zap.Int("specs", count),
		zap.Duration("took", time.Since(start)))

	return lm.transition(StateRunning)
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")
		lm.setState(StateStopping)
		lm.broadcastStatus()

		if lm.restServer != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, lm.config.Server.ShutdownTimeout)
			if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("rest api shutdown failed: %w", err)
			}
			cancel()
		}

		if lm.hubCancel != nil {
			lm.hubCancel()
		}

		lm.setState(StateStopped)
		lm.logger.Info("Graceful shutdown completed")
	})

	return shutdownErr
}

// transition moves to state if allowed and announces it on the live feed.
func (lm *LifecycleManager) transition(state SystemState) error {
	lm.stateMu.Lock()
	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.stateMu.Unlock()
		return err
	}
	lm.currentState = state
	if state != StateError {
		lm.lastError = nil
	}
	lm.stateMu.Unlock()

	lm.broadcastStatus()
	return nil
}

func (lm *LifecycleManager) setState(state SystemState) {
	lm.stateMu.Lock()
	defer lm.stateMu.Unlock()
	lm.currentState = state
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System error", zap.Error(err))

	lm.stateMu.Lock()
	lm.currentState = StateError
	lm.lastError = err
	lm.stateMu.Unlock()

	lm.broadcastStatus()
}

func (lm *LifecycleManager) broadcastStatus() {
	lm.wsHub.Broadcast(websocket.NewSystemStatusMessage(lm.GetCurrentStatus()))
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	status := interfaces.SystemStatus{
		State:          lm.currentState.String(),
		SpecCount:      lm.specManager.Registry().Len(),
		LiveClients:    lm.wsHub.GetClientCount(),
		StorageEnabled: lm.storage != nil,
	}
	if !lm.startedAt.IsZero() {
		status.StartedAt = lm.startedAt.Unix()
	}
	if lm.lastError != nil {
		status.Error = lm.lastError.Error()
	}
	return status
}

func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

func (lm *LifecycleManager) SpecManager() *devices.Manager {
	return lm.specManager
}

func (lm *LifecycleManager) Metrics() *metrics.Metrics {
	return lm.metrics
}

func (lm *LifecycleManager) Hub() *websocket.Hub {
	return lm.wsHub
}
