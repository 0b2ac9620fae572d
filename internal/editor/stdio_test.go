package editor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlugin plays the editor side of the stdio protocol
type fakePlugin struct {
	toHost   *io.PipeWriter
	fromHost *bufio.Scanner
}

func newStdioPair(t *testing.T) (*Stdio, *fakePlugin) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	t.Cleanup(func() {
		_ = inW.Close()
		_ = outR.Close()
	})
	return NewStdio(inR, outW, nil), &fakePlugin{toHost: inW, fromHost: bufio.NewScanner(outR)}
}

func (p *fakePlugin) read(t *testing.T) map[string]any {
	t.Helper()
	require.True(t, p.fromHost.Scan(), "host wrote nothing")
	var msg map[string]any
	require.NoError(t, json.Unmarshal(p.fromHost.Bytes(), &msg))
	return msg
}

func (p *fakePlugin) send(t *testing.T, msg map[string]any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = p.toHost.Write(append(data, '\n'))
	require.NoError(t, err)
}

func TestStdio_SelectionRoundTrip(t *testing.T) {
	ed, plugin := newStdioPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ed.Run(ctx, Handlers{}) }()

	type result struct {
		text string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		text, err := ed.Selection(ctx)
		got <- result{text, err}
	}()

	req := plugin.read(t)
	assert.Equal(t, "request", req["type"])
	assert.Equal(t, "getSelection", req["method"])
	plugin.send(t, map[string]any{"type": "response", "id": req["id"], "ok": true, "text": "x := 1"})

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, "x := 1", r.text)
}

func TestStdio_ReplaceWithoutEditor(t *testing.T) {
	ed, plugin := newStdioPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ed.Run(ctx, Handlers{}) }()

	errc := make(chan error, 1)
	go func() { errc <- ed.ReplaceSelection(ctx, "new code") }()

	req := plugin.read(t)
	assert.Equal(t, "replaceSelection", req["method"])
	assert.Equal(t, map[string]any{"content": "new code"}, req["params"])
	plugin.send(t, map[string]any{"type": "response", "id": req["id"], "code": "no_active_editor", "error": "no editor"})

	assert.ErrorIs(t, <-errc, ErrNoActiveEditor)
}

func TestStdio_EventsAndNotify(t *testing.T) {
	ed, plugin := newStdioPair(t)
	selections := make(chan SelectionEvent, 1)
	commands := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = ed.Run(ctx, Handlers{
			OnSelection: func(ev SelectionEvent) { selections <- ev },
			OnCommand:   func(name string) { commands <- name },
		})
	}()

	plugin.send(t, map[string]any{"type": "selection", "text": "abc", "ranges": 1})
	plugin.send(t, map[string]any{"type": "command", "name": "codeAssistant.openUI"})

	assert.Equal(t, SelectionEvent{Text: "abc", Ranges: 1}, <-selections)
	assert.Equal(t, "codeAssistant.openUI", <-commands)

	go func() { _ = ed.Notify(ctx, LevelWarning, "careful") }()
	note := plugin.read(t)
	assert.Equal(t, map[string]any{"type": "notify", "level": "warning", "message": "careful"}, note)
}

func TestStdio_PendingCallFailsWhenStreamEnds(t *testing.T) {
	ed, plugin := newStdioPair(t)
	runDone := make(chan error, 1)
	go func() { runDone <- ed.Run(context.Background(), Handlers{}) }()

	errc := make(chan error, 1)
	go func() {
		_, err := ed.Selection(context.Background())
		errc <- err
	}()
	_ = plugin.read(t)
	require.NoError(t, plugin.toHost.Close())

	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the stream ended")
	}
	assert.ErrorIs(t, <-errc, ErrClosed)
}

func TestStdio_LargeSelectionDoesNotEndRun(t *testing.T) {
	ed, plugin := newStdioPair(t)
	selections := make(chan SelectionEvent, 2)
	runDone := make(chan error, 1)
	go func() {
		runDone <- ed.Run(context.Background(), Handlers{
			OnSelection: func(ev SelectionEvent) { selections <- ev },
		})
	}()

	big := strings.Repeat("x", 2<<20)
	plugin.send(t, map[string]any{"type": "selection", "text": big, "ranges": 1})
	plugin.send(t, map[string]any{"type": "selection", "text": "small", "ranges": 1})

	for _, want := range []string{big, "small"} {
		select {
		case ev := <-selections:
			assert.Equal(t, len(want), len(ev.Text))
		case err := <-runDone:
			t.Fatalf("Run ended early: %v", err)
		case <-time.After(5 * time.Second):
			t.Fatal("selection not delivered")
		}
	}

	require.NoError(t, plugin.toHost.Close())
	assert.NoError(t, <-runDone)
}

func TestStdio_ReplaceRangeSendsCapturedRange(t *testing.T) {
	ed, plugin := newStdioPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ed.Run(ctx, Handlers{}) }()

	type result struct {
		text string
		rng  *Range
		err  error
	}
	got := make(chan result, 1)
	go func() {
		text, rng, err := ed.SelectionRange(ctx)
		got <- result{text, rng, err}
	}()

	req := plugin.read(t)
	sel := map[string]any{
		"start": map[string]any{"line": 2.0, "character": 0.0},
		"end":   map[string]any{"line": 4.0, "character": 7.0},
	}
	plugin.send(t, map[string]any{"type": "response", "id": req["id"], "ok": true, "text": "var a", "range": sel})

	r := <-got
	require.NoError(t, r.err)
	assert.Equal(t, "var a", r.text)
	require.NotNil(t, r.rng)
	assert.Equal(t, Range{Start: Position{Line: 2}, End: Position{Line: 4, Character: 7}}, *r.rng)

	errc := make(chan error, 1)
	go func() { errc <- ed.ReplaceRange(ctx, *r.rng, "const a") }()
	req = plugin.read(t)
	assert.Equal(t, "replaceSelection", req["method"])
	assert.Equal(t, map[string]any{"content": "const a", "range": sel}, req["params"])
	plugin.send(t, map[string]any{"type": "response", "id": req["id"], "ok": true})
	assert.NoError(t, <-errc)
}
