package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Syncer brings work areas in line with the current monitors and desktop.
type Syncer interface {
	Sync() (bool, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for monitor and desktop changes.
type Reconciler struct {
	interval time.Duration
	syncer   Syncer
	logger   *slog.Logger
	kick     chan struct{}
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, syncer Syncer) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		interval: interval,
		syncer:   syncer,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
}

// Run reconciles once, then on every tick or Kick until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	r.ReconcileNow()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.ReconcileNow()
		case <-r.kick:
			r.ReconcileNow()
		}
	}
}

// Kick requests a pass without waiting for the next tick.
func (r *Reconciler) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// ReconcileNow performs a single reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	changed, err := r.syncer.Sync()
	if err != nil {
		r.logger.Warn("reconciler: sync failed", "error", err)
		return
	}
	if changed {
		r.logger.Info("reconciler: monitors or desktop changed")
	}
}
