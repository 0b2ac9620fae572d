package dispatcher

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/panel"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// BusClosedMsg tells the program the core side is gone
type BusClosedMsg struct{}

// EventDispatcher routes UI events to the panel controller and controller
// output back to the UI
type EventDispatcher struct {
	eventBus   *eventbus.EventBus
	controller *panel.Controller
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func NewEventDispatcher(eventBus *eventbus.EventBus, controller *panel.Controller, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus:   eventBus,
		controller: controller,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start consumes UI events until Stop. Analyses run concurrently so a slow
// backend never blocks tab switches or typing.
func (ed *EventDispatcher) Start() {
	ed.wg.Add(1)
	go func() {
		defer ed.wg.Done()
		for {
			select {
			case <-ed.ctx.Done():
				return
			case ev, ok := <-ed.eventBus.UIToCore():
				if !ok {
					return
				}
				ed.handle(ev)
			}
		}
	}()
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
	ed.wg.Wait()
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}

// Publish forwards a controller snapshot to the UI
func (ed *EventDispatcher) Publish(s panel.Snapshot) {
	ed.send(eventbus.StateUpdateEvent{State: s})
}

func (ed *EventDispatcher) Reveal(preserveFocus bool) {
	ed.send(eventbus.RevealEvent{PreserveFocus: preserveFocus})
}

func (ed *EventDispatcher) Detached(err error) {
	ed.send(eventbus.DetachedEvent{Err: err})
}

// ListenForCoreEvents waits for the next core event
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ed.eventBus.CoreToUI()
		if !ok {
			return BusClosedMsg{}
		}
		return CoreEventMsg{Event: ev}
	}
}

func (ed *EventDispatcher) handle(ev eventbus.UIEvent) {
	c := ed.controller
	switch e := ev.(type) {
	case eventbus.SwitchTabEvent:
		c.SwitchTab(e.Mode)
	case eventbus.InputEvent:
		c.SetInput(e.Mode, e.Text)
	case eventbus.ClearEvent:
		c.Clear(e.Mode)
	case eventbus.AnalyzeEvent:
		ed.wg.Add(1)
		go func() {
			defer ed.wg.Done()
			err := c.Analyze(ed.ctx, e.Mode)
			if err != nil && !errors.Is(err, panel.ErrSuperseded) {
				ed.logger.Info("analysis failed", zap.String("mode", string(e.Mode)), zap.Error(err))
			}
		}()
	case eventbus.ApplyEvent:
		ed.notice(c.Apply(e.Mode), "Sent to editor")
	case eventbus.CopyEvent:
		ed.notice(c.Copy(e.Mode), "Copied to clipboard")
	default:
		ed.logger.Debug("unhandled ui event")
	}
}

func (ed *EventDispatcher) notice(err error, ok string) {
	if err != nil {
		ed.send(eventbus.NoticeEvent{Text: err.Error(), Error: true})
		return
	}
	ed.send(eventbus.NoticeEvent{Text: ok})
}

func (ed *EventDispatcher) send(ev eventbus.CoreEvent) {
	if err := ed.eventBus.SendToUI(ev); err != nil {
		ed.logger.Debug("core event dropped", zap.Error(err))
	}
}
