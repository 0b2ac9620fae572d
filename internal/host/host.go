package host

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/surface"
)

const panelAttachTimeout = 15 * time.Second

var errEditorDetached = errors.New("editor detached")

// Host ties the editor connection, the surface server and the panel slots
// together for one `codeassist serve` process.
type Host struct {
	cfg        *config.Config
	editor     *editor.Stdio
	backend    *backend.Switch
	metrics    *backend.Metrics
	manager    *Manager
	propagator *Propagator
	commands   *Commands
	server     *surface.Server
	logger     *zap.Logger
}

func New(cfg *config.Config, ed *editor.Stdio, logger *zap.Logger) (*Host, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := backend.NewMetrics(registry)

	caller, err := backend.FromConfig(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	sw := backend.NewSwitch(caller)

	launcher := NewCommandLauncher(cfg.PanelCommand, panelAttachTimeout, logger)
	manager := NewManager(ed, sw, launcher, logger)

	server, err := surface.NewServer(manager.Attach, registry, logger)
	if err != nil {
		return nil, err
	}

	return &Host{
		cfg:        cfg,
		editor:     ed,
		backend:    sw,
		metrics:    metrics,
		manager:    manager,
		propagator: NewPropagator(cfg.Debounce, manager),
		commands:   NewCommands(manager, ed, sw, logger),
		server:     server,
		logger:     logger,
	}, nil
}

// Run serves until the editor disconnects or ctx is done
func (h *Host) Run(ctx context.Context) error {
	defer h.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.server.Serve(ctx, h.cfg.ListenAddr)
	})
	g.Go(func() error {
		err := h.editor.Run(ctx, editor.Handlers{
			OnSelection: h.propagator.OnSelectionChange,
			OnCommand: func(name string) {
				if err := h.commands.Run(ctx, name); err != nil {
					h.logger.Info("command finished with error", zap.String("command", name), zap.Error(err))
				}
			},
		})
		if err != nil {
			return err
		}
		return errEditorDetached
	})
	if h.cfg.Path() != "" {
		g.Go(func() error {
			return config.Watch(ctx, h.cfg.Path(), h.reload, h.logger)
		})
	}

	err := g.Wait()
	if errors.Is(err, errEditorDetached) {
		h.logger.Info("editor detached, shutting down")
		return nil
	}
	return err
}

func (h *Host) Close() {
	h.propagator.Stop()
	h.manager.Close()
}

func (h *Host) reload(cfg *config.Config) {
	caller, err := backend.FromConfig(cfg, h.logger, h.metrics)
	if err != nil {
		h.logger.Warn("keeping previous backend", zap.Error(err))
		return
	}
	h.backend.Set(caller)
}
