// Package panel is the headless side of a panel or sidebar: one tab per
// analysis kind, backend calls with a fallback through the host, and the
// apply/copy actions. Presentation lives in the bubbletea program, which
// observes the controller through snapshots.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/correlate"
	"github.com/Rorical/CodeAssist/internal/protocol"
)

// EmptyInputMessage is shown when analyze is pressed with nothing to send
const EmptyInputMessage = "Please enter some code to analyze."

var (
	ErrEmptyInput = errors.New("empty input")
	// ErrSuperseded is returned by Analyze when a newer request for the same
	// kind finished first; its reply was dropped.
	ErrSuperseded = errors.New("superseded by a newer request")
	ErrNoResult   = errors.New("nothing to apply")
	ErrNoCode     = errors.New("result has no code to copy")
	ErrDetached   = errors.New("not attached to a host")
)

// autoKinds is the order AutoAnalyze runs in
var autoKinds = []backend.Mode{backend.ModeHints, backend.ModeErrorFixing, backend.ModeExplanation}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRendered
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseRendered:
		return "rendered"
	case PhaseErrored:
		return "errored"
	}
	return "idle"
}

// Link is the panel's end of a surface
type Link interface {
	Post(msg protocol.Message) error
	Messages() <-chan protocol.Message
	Done() <-chan struct{}
}

type Tab struct {
	Mode   backend.Mode
	Input  string
	Phase  Phase
	Result Result
	Err    string

	seq uint64
}

// Snapshot is a copy of the controller state safe to hand to the UI
type Snapshot struct {
	Active backend.Mode
	Tabs   []Tab
	// Loading counts analyses in flight across all tabs
	Loading int
}

func (s Snapshot) Tab(mode backend.Mode) Tab {
	for _, t := range s.Tabs {
		if t.Mode == mode {
			return t
		}
	}
	return Tab{Mode: mode}
}

type Options struct {
	// Direct is tried first for every analysis. Nil means always go
	// through the host.
	Direct   backend.Caller
	Endpoint string
	// PendingCap bounds requests waiting on the host
	PendingCap int
	// OnChange receives a snapshot after every state change
	OnChange func(Snapshot)
	// OnReveal runs when the host asks the surface to come forward
	OnReveal func(preserveFocus bool)
	// WriteClipboard defaults to the system clipboard
	WriteClipboard func(string) error
	Logger         *zap.Logger
}

type Controller struct {
	mu      sync.Mutex
	active  backend.Mode
	tabs    map[backend.Mode]*Tab
	loading int

	link    Link
	pending *correlate.Table[any]
	opts    Options
	logger  *zap.Logger
}

func NewController(link Link, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WriteClipboard == nil {
		opts.WriteClipboard = clipboard.WriteAll
	}
	if opts.Endpoint == "" {
		opts.Endpoint = backend.DefaultEndpoint
	}
	c := &Controller{
		active:  backend.ModeHints,
		tabs:    make(map[backend.Mode]*Tab, len(backend.Modes)),
		link:    link,
		pending: correlate.NewTable[any](opts.PendingCap),
		opts:    opts,
		logger:  opts.Logger,
	}
	for _, m := range backend.Modes {
		c.tabs[m] = &Tab{Mode: m}
	}
	return c
}

// Start asks the host for the current selection so inputs are pre-filled
func (c *Controller) Start() error {
	if c.link == nil {
		return ErrDetached
	}
	return c.link.Post(protocol.RequestSelectedCode{})
}

// Listen feeds host messages to HandleHostMessage until the link closes or
// ctx is done. Requests waiting on the host give up when the link closes.
func (c *Controller) Listen(ctx context.Context) error {
	if c.link == nil {
		return ErrDetached
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.link.Done():
			return nil
		case msg, ok := <-c.link.Messages():
			if !ok {
				return nil
			}
			c.HandleHostMessage(msg)
		}
	}
}

func (c *Controller) HandleHostMessage(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.SelectedCode:
		c.mu.Lock()
		for _, t := range c.tabs {
			t.Input = m.Code
		}
		c.mu.Unlock()
		c.changed()
	case protocol.BackendResult:
		if !c.pending.Resolve(m.ID, m.Data) {
			c.logger.Debug("reply for unknown request", zap.String("id", m.ID))
		}
	case protocol.BackendError:
		text := m.Error
		if text == "" {
			text = "Backend error"
		}
		if !c.pending.Reject(m.ID, errors.New(text)) {
			c.logger.Debug("error for unknown request", zap.String("id", m.ID))
		}
	case protocol.Reveal:
		if c.opts.OnReveal != nil {
			c.opts.OnReveal(m.PreserveFocus)
		}
	default:
		c.logger.Debug("ignoring host message", zap.String("command", msg.Command()))
	}
}

func (c *Controller) SwitchTab(mode backend.Mode) {
	c.mu.Lock()
	if _, ok := c.tabs[mode]; !ok {
		c.mu.Unlock()
		return
	}
	c.active = mode
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) Active() backend.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) SetInput(mode backend.Mode, text string) {
	c.mu.Lock()
	t, ok := c.tabs[mode]
	if ok {
		t.Input = text
	}
	c.mu.Unlock()
	if ok {
		c.changed()
	}
}

// Clear empties one tab's input. Its result stays.
func (c *Controller) Clear(mode backend.Mode) {
	c.SetInput(mode, "")
}

// Analyze sends the tab's input to the backend and renders the reply into
// that tab. Only the newest request per kind may update the tab.
func (c *Controller) Analyze(ctx context.Context, mode backend.Mode) error {
	c.mu.Lock()
	t, ok := c.tabs[mode]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w %q", backend.ErrUnknownMode, mode)
	}
	code := strings.TrimSpace(t.Input)
	if code == "" {
		// the message goes to the tab being looked at, like the other errors
		c.setErrLocked(c.tabs[c.active], EmptyInputMessage)
		c.mu.Unlock()
		c.changed()
		return ErrEmptyInput
	}
	t.seq++
	seq := t.seq
	t.Phase = PhaseLoading
	t.Err = ""
	c.loading++
	c.mu.Unlock()
	c.changed()

	data, err := c.call(ctx, backend.NewRequest(mode, code))
	if err == nil && data == nil {
		err = backend.ErrEmptyReply
	}

	c.mu.Lock()
	c.loading--
	if t.seq != seq {
		c.mu.Unlock()
		c.changed()
		c.logger.Debug("dropping stale reply", zap.String("mode", string(mode)), zap.Uint64("seq", seq))
		return ErrSuperseded
	}
	if err != nil {
		c.setErrLocked(t, "Error: "+err.Error())
	} else {
		t.Result = Render(mode, backend.ResultText(data))
		t.Phase = PhaseRendered
	}
	c.mu.Unlock()
	c.changed()
	return err
}

// AutoAnalyze fills the hints, error fixing and explanation tabs with code
// and analyzes them one after another. The first failure stops the run.
func (c *Controller) AutoAnalyze(ctx context.Context, code string) error {
	for _, mode := range autoKinds {
		c.SetInput(mode, code)
	}
	for _, mode := range autoKinds {
		if err := c.Analyze(ctx, mode); err != nil {
			if errors.Is(err, ErrSuperseded) {
				continue
			}
			c.mu.Lock()
			c.setErrLocked(c.tabs[c.active], "Auto analysis failed: "+err.Error())
			c.mu.Unlock()
			c.changed()
			return err
		}
	}
	return nil
}

// Apply asks the host to replace the editor selection with the tab's result
func (c *Controller) Apply(mode backend.Mode) error {
	if c.link == nil {
		return ErrDetached
	}
	r, ok := c.result(mode)
	if !ok {
		return ErrNoResult
	}
	return c.link.Post(protocol.ReplaceSelection{Content: r.Raw, Mode: mode})
}

// Copy puts the tab's code result on the clipboard. Prose results have no
// copy action.
func (c *Controller) Copy(mode backend.Mode) error {
	r, ok := c.result(mode)
	if !ok {
		return ErrNoResult
	}
	if !r.Code {
		return ErrNoCode
	}
	return c.opts.WriteClipboard(r.Text)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{Active: c.active, Loading: c.loading, Tabs: make([]Tab, 0, len(backend.Modes))}
	for _, m := range backend.Modes {
		s.Tabs = append(s.Tabs, *c.tabs[m])
	}
	return s
}

func (c *Controller) result(mode backend.Mode) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tabs[mode]
	if !ok || t.Phase != PhaseRendered {
		return Result{}, false
	}
	return t.Result, true
}

// call tries the backend directly and falls back to the host on any failure
func (c *Controller) call(ctx context.Context, body backend.AnalysisRequest) (any, error) {
	if c.opts.Direct != nil {
		data, err := c.opts.Direct.Call(ctx, body, c.opts.Endpoint)
		if err == nil {
			return data, nil
		}
		if c.link == nil {
			return nil, err
		}
		c.logger.Debug("direct call failed, routing through host", zap.Error(err))
	}
	return c.routeThroughHost(ctx, body)
}

func (c *Controller) routeThroughHost(ctx context.Context, body backend.AnalysisRequest) (any, error) {
	if c.link == nil {
		return nil, ErrDetached
	}
	id, reply := c.pending.Register()
	if err := c.link.Post(protocol.CallBackend{ID: id, URL: c.opts.Endpoint, Body: body}); err != nil {
		c.pending.Forget(id)
		return nil, err
	}
	select {
	case r := <-reply:
		return r.Value, r.Err
	case <-ctx.Done():
		c.pending.Forget(id)
		return nil, ctx.Err()
	case <-c.link.Done():
		c.pending.Forget(id)
		return nil, ErrDetached
	}
}

func (c *Controller) setErrLocked(t *Tab, msg string) {
	t.Phase = PhaseErrored
	t.Err = msg
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.Snapshot())
	}
}
