package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/panel"
	"github.com/Rorical/CodeAssist/internal/surface"
)

// Application manages one panel or sidebar from attach to exit
type Application struct {
	config     *config.Config
	conn       surface.Surface
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	controller *panel.Controller
	model      *AppModel
	logger     *zap.Logger
}

type Options struct {
	Kind surface.Kind
	// HostURL is the host's surface server, e.g. http://127.0.0.1:7531
	HostURL string
	Config  *config.Config
	Logger  *zap.Logger
}

// NewApplication attaches to the host and prepares the UI
func NewApplication(ctx context.Context, opts Options) (*Application, error) {
	if opts.Config == nil {
		return nil, errors.New("no configuration")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := surface.Dial(ctx, opts.HostURL, opts.Kind, logger)
	if err != nil {
		return nil, err
	}
	return newApplication(conn, opts.Config, logger)
}

func newApplication(conn surface.Surface, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	direct, err := backend.FromConfig(cfg, logger, nil)
	if err != nil {
		// the host can still make the call for us
		logger.Warn("no direct backend, routing every call through the host", zap.Error(err))
		direct = nil
	}

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Debug("event bus", zap.Error(e))
	})

	var disp *dispatcher.EventDispatcher
	ctrl := panel.NewController(conn, panel.Options{
		Direct:     direct,
		Endpoint:   cfg.Endpoint,
		PendingCap: cfg.PendingCap,
		OnChange:   func(s panel.Snapshot) { disp.Publish(s) },
		OnReveal:   func(preserveFocus bool) { disp.Reveal(preserveFocus) },
		Logger:     logger,
	})
	disp = dispatcher.NewEventDispatcher(eb, ctrl, logger)

	return &Application{
		config:     cfg,
		conn:       conn,
		eventBus:   eb,
		dispatcher: disp,
		controller: ctrl,
		model:      newAppModel(string(conn.Kind()), ctrl.Snapshot(), disp),
		logger:     logger,
	}, nil
}

func (app *Application) Start(ctx context.Context) error {
	app.dispatcher.Start()
	go func() {
		err := app.controller.Listen(ctx)
		app.logger.Info("host link closed", zap.Error(err))
		app.dispatcher.Detached(err)
	}()
	if err := app.controller.Start(); err != nil {
		return fmt.Errorf("request selection: %w", err)
	}

	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (app *Application) Stop() {
	_ = app.conn.Close()
	app.dispatcher.Stop()
	app.eventBus.Close()
}
