package host

import (
	"sync"
	"time"

	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/protocol"
)

// Debouncer runs only the last function triggered within the quiet period,
// once the period has passed without another trigger.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, fn)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

type broadcaster interface {
	Broadcast(msg protocol.Message)
}

// Propagator pushes the editor's selection to every live surface after the
// selection has been quiet for a while. Pushes with no surface live are
// dropped.
type Propagator struct {
	debounce *Debouncer
	surfaces broadcaster
}

func NewPropagator(quiet time.Duration, surfaces broadcaster) *Propagator {
	return &Propagator{
		debounce: NewDebouncer(quiet),
		surfaces: surfaces,
	}
}

func (p *Propagator) OnSelectionChange(ev editor.SelectionEvent) {
	if ev.Ranges == 0 {
		return
	}
	code := ev.Text
	p.debounce.Trigger(func() {
		p.surfaces.Broadcast(protocol.SelectedCode{Code: code})
	})
}

func (p *Propagator) Stop() {
	p.debounce.Stop()
}
