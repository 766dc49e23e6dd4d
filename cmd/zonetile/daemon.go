package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/zonetile/internal/apphistory"
	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/daemon"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/hotkeys"
	"github.com/1broseidon/zonetile/internal/ipc"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/x11"
)

func newDaemonCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the zonetile daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd.Context(), g)
		},
	}
}

func runDaemon(ctx context.Context, g *globals) error {
	path, err := g.resolveConfigPath()
	if err != nil {
		return err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config
	logger := g.logger(os.Stderr, cfg.LogLevel)
	logger.Info("configuration loaded", "path", path, "exists", res.Exists, "default_layout", cfg.DefaultLayout)

	session, err := x11.ResolveSession(cfg.Display, cfg.XAuthority, os.Environ())
	if err != nil {
		return err
	}
	conn, err := session.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to display %s: %w", session.Display, err)
	}
	backend := platform.NewLinuxBackend(conn)
	disconnect := sync.OnceFunc(backend.Disconnect)
	defer disconnect()
	logger.Info("connected to X11", "display", session.Display)

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.History.Enabled {
		store, err := apphistory.Open(cfg.History.Backend, cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open app history: %w", err)
		}
		defer store.Close()
		opts = append(opts, engine.WithHistory(store))
	}

	eng := engine.New(cfg, backend, opts...)
	if _, err := eng.Sync(); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	keys := hotkeys.NewHandler(backend.XUtil(), eng, logger)
	if err := keys.Register(cfg.Hotkeys); err != nil {
		logger.Warn("some hotkeys could not be bound", "error", err)
	}

	var reloadMu sync.Mutex
	reload := func() error {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		res, err := config.LoadFromPath(path)
		if err != nil {
			return err
		}
		if err := eng.Reload(res.Config); err != nil {
			return err
		}
		if err := keys.Rebind(res.Config.Hotkeys); err != nil {
			logger.Warn("some hotkeys could not be bound", "error", err)
		}
		return nil
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: time.Duration(cfg.MonitorPollSeconds) * time.Second,
		Logger:   logger,
	}, eng)
	tracker := daemon.NewClientTracker(eng, logger)
	if err := daemon.WatchClients(backend.XUtil(), tracker, reconciler); err != nil {
		logger.Warn("window tracking disabled", "error", err)
	}
	watcher := daemon.NewConfigWatcher(path, 0, func(string) {
		if err := reload(); err != nil {
			logger.Warn("config reload failed", "error", err)
			return
		}
		logger.Info("config reloaded", "path", path)
	}, logger)

	server, err := ipc.NewServer(g.socketPath, eng,
		ipc.WithReloadFunc(reload),
		ipc.WithSaveFunc(func(c *config.Config) error { return c.SaveTo(path) }),
		ipc.WithServerLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	logger.Info("zonetile daemon started", "socket", server.SocketPath(), "monitors", eng.Status().Monitors)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return reconciler.Run(gctx) })
	group.Go(func() error { return watcher.Run(gctx) })
	group.Go(func() error {
		backend.EventLoop()
		if gctx.Err() == nil {
			return errors.New("X11 event loop stopped")
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		server.Stop()
		backend.StopEventLoop()
		disconnect()
		return nil
	})

	err = group.Wait()
	logger.Info("zonetile daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
