package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/protocol"
	"github.com/Rorical/CodeAssist/internal/surface"
)

var ErrSlotTaken = errors.New("a surface of this kind is already live")

// PanelFactory creates the floating panel on demand
type PanelFactory interface {
	NewPanel(ctx context.Context) (surface.Surface, error)
}

// offerer is implemented by factories that wait for the panel to attach
// on its own (see CommandLauncher)
type offerer interface {
	Offer(s surface.Surface) bool
}

// Manager owns at most one floating panel and one sidebar. Each slot is set
// when its surface goes live and cleared when the surface is disposed.
type Manager struct {
	mu      sync.Mutex
	panel   surface.Surface
	sidebar surface.Surface
	opening singleflight.Group

	editor  editor.Editor
	factory PanelFactory
	handler *Handler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(ed editor.Editor, caller backend.Caller, factory PanelFactory, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		editor:  ed,
		factory: factory,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	m.handler = NewHandler(ed, caller, m, logger)
	return m
}

// OpenOrRevealPanel focuses the live panel and refreshes its selection, or
// creates the panel when there is none. Concurrent calls create at most one.
func (m *Manager) OpenOrRevealPanel(ctx context.Context) error {
	if p := m.Panel(); p != nil {
		if err := p.Reveal(false); err != nil {
			m.logger.Debug("panel reveal failed", zap.Error(err))
		}
		m.pushSelection(ctx, p)
		return nil
	}

	_, err, _ := m.opening.Do("panel", func() (any, error) {
		if m.Panel() != nil {
			return nil, nil
		}
		if m.factory == nil {
			return nil, errors.New("no panel factory configured")
		}
		p, err := m.factory.NewPanel(ctx)
		if err != nil {
			return nil, fmt.Errorf("open panel: %w", err)
		}
		if !m.install(ctx, p) {
			_ = p.Close()
			return nil, ErrSlotTaken
		}
		return nil, nil
	})
	return err
}

// ResolveSidebar takes the docked surface once the host has resolved it
func (m *Manager) ResolveSidebar(ctx context.Context, s surface.Surface) error {
	if !m.install(ctx, s) {
		return ErrSlotTaken
	}
	return nil
}

// Attach routes a surface that connected on its own. A panel is handed to
// a pending OpenOrRevealPanel when one waits for it, otherwise it fills the
// empty slot. Surfaces for occupied slots are refused.
func (m *Manager) Attach(s surface.Surface) error {
	switch s.Kind() {
	case surface.KindSidebar:
		return m.ResolveSidebar(m.ctx, s)
	case surface.KindPanel:
		if o, ok := m.factory.(offerer); ok && o.Offer(s) {
			return nil
		}
		if !m.install(m.ctx, s) {
			return ErrSlotTaken
		}
		return nil
	}
	return fmt.Errorf("unknown surface kind %q", s.Kind())
}

func (m *Manager) Panel() surface.Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panel
}

func (m *Manager) Sidebar() surface.Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sidebar
}

func (m *Manager) RevealPanel(preserveFocus bool) error {
	p := m.Panel()
	if p == nil {
		return nil
	}
	return p.Reveal(preserveFocus)
}

// Broadcast posts msg to every live surface. Delivery failures are logged.
func (m *Manager) Broadcast(msg protocol.Message) {
	m.mu.Lock()
	live := make([]surface.Surface, 0, 2)
	for _, s := range []surface.Surface{m.panel, m.sidebar} {
		if s != nil {
			live = append(live, s)
		}
	}
	m.mu.Unlock()

	for _, s := range live {
		if err := s.Post(msg); err != nil {
			m.logger.Debug("broadcast not delivered",
				zap.String("surface", string(s.Kind())),
				zap.Error(err))
		}
	}
}

// Close disposes every live surface
func (m *Manager) Close() {
	m.cancel()
	m.mu.Lock()
	live := []surface.Surface{m.panel, m.sidebar}
	m.mu.Unlock()
	for _, s := range live {
		if s != nil {
			_ = s.Close()
		}
	}
}

func (m *Manager) install(ctx context.Context, s surface.Surface) bool {
	m.mu.Lock()
	slot := &m.panel
	if s.Kind() == surface.KindSidebar {
		slot = &m.sidebar
	}
	if *slot != nil {
		m.mu.Unlock()
		return false
	}
	*slot = s
	m.mu.Unlock()

	m.logger.Info("surface live", zap.String("surface", string(s.Kind())))
	m.pushSelection(ctx, s)
	go m.serve(s)
	return true
}

func (m *Manager) serve(s surface.Surface) {
	defer m.release(s)
	for {
		select {
		case <-s.Done():
			return
		case <-m.ctx.Done():
			return
		case msg, ok := <-s.Messages():
			if !ok {
				return
			}
			go m.handler.Handle(m.ctx, s, msg)
		}
	}
}

func (m *Manager) release(s surface.Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch s {
	case m.panel:
		m.panel = nil
	case m.sidebar:
		m.sidebar = nil
	default:
		return
	}
	m.logger.Info("surface disposed", zap.String("surface", string(s.Kind())))
}

func (m *Manager) pushSelection(ctx context.Context, s surface.Surface) {
	code := selectionOrEmpty(ctx, m.editor, m.logger)
	if err := s.Post(protocol.SelectedCode{Code: code}); err != nil {
		m.logger.Debug("selection push not delivered", zap.Error(err))
	}
}
