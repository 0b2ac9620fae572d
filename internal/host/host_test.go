package host

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/config"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/protocol"
	"github.com/Rorical/CodeAssist/internal/surface"
)

type notification struct {
	level   editor.Level
	message string
}

type fakeEditor struct {
	mu         sync.Mutex
	selection  string
	selErr     error
	replaceErr error
	replaced   []string
	notes      []notification
}

func (e *fakeEditor) Selection(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection, e.selErr
}

func (e *fakeEditor) ReplaceSelection(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.replaceErr != nil {
		return e.replaceErr
	}
	e.replaced = append(e.replaced, text)
	return nil
}

func (e *fakeEditor) Notify(_ context.Context, level editor.Level, message string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notes = append(e.notes, notification{level, message})
	return nil
}

func (e *fakeEditor) notifications() []notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notification(nil), e.notes...)
}

type callerFunc func(ctx context.Context, body backend.AnalysisRequest, endpoint string) (any, error)

func (f callerFunc) Call(ctx context.Context, body backend.AnalysisRequest, endpoint string) (any, error) {
	return f(ctx, body, endpoint)
}

type fakeRevealer struct {
	mu    sync.Mutex
	calls []bool
}

func (r *fakeRevealer) RevealPanel(preserveFocus bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, preserveFocus)
	return nil
}

func receive(t *testing.T, s surface.Surface) protocol.Message {
	t.Helper()
	select {
	case msg := <-s.Messages():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func assertQuiet(t *testing.T, s surface.Surface) {
	t.Helper()
	select {
	case msg := <-s.Messages():
		t.Fatalf("unexpected message %T", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

// editorPipe plays the editor plugin on the other end of a Stdio
type editorPipe struct {
	toHost   *io.PipeWriter
	fromHost *bufio.Scanner
}

func newTestHost(t *testing.T, cfg *config.Config) (*Host, *editorPipe) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	t.Cleanup(func() {
		_ = inW.Close()
		_ = outR.Close()
	})
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.ListenAddr = "127.0.0.1:0"
	h, err := New(cfg, editor.NewStdio(inR, outW, nil), zap.NewNop())
	require.NoError(t, err)
	return h, &editorPipe{toHost: inW, fromHost: bufio.NewScanner(outR)}
}

func (p *editorPipe) send(t *testing.T, msg map[string]any) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	_, err = p.toHost.Write(append(data, '\n'))
	require.NoError(t, err)
}

func (p *editorPipe) read(t *testing.T) map[string]any {
	t.Helper()
	require.True(t, p.fromHost.Scan(), "host wrote nothing")
	var msg map[string]any
	require.NoError(t, json.Unmarshal(p.fromHost.Bytes(), &msg))
	return msg
}

func runHost(ctx context.Context, h *Host) <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop")
		return nil
	}
}

func TestHost_EditorDetachEndsRunCleanly(t *testing.T) {
	h, ed := newTestHost(t, nil)
	done := runHost(context.Background(), h)

	require.NoError(t, ed.toHost.Close())
	assert.NoError(t, waitRun(t, done))
}

func TestHost_CancelEndsRun(t *testing.T) {
	h, _ := newTestHost(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := runHost(ctx, h)

	cancel()
	assert.NoError(t, waitRun(t, done))
}

func TestHost_OptimizeCommandReplacesCapturedRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body backend.AnalysisRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, backend.ModeCleanCode, body.Mode)
		_, _ = w.Write([]byte(`{"optimizedCode":"const a = 1;"}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Endpoint = srv.URL
	h, ed := newTestHost(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runHost(ctx, h)

	ed.send(t, map[string]any{"type": "command", "name": CommandOptimizeSelection})

	req := ed.read(t)
	require.Equal(t, "getSelection", req["method"])
	sel := map[string]any{
		"start": map[string]any{"line": 1.0, "character": 0.0},
		"end":   map[string]any{"line": 1.0, "character": 7.0},
	}
	ed.send(t, map[string]any{"type": "response", "id": req["id"], "ok": true, "text": "var a=1", "range": sel})

	req = ed.read(t)
	require.Equal(t, "replaceSelection", req["method"])
	assert.Equal(t, map[string]any{"content": "const a = 1;", "range": sel}, req["params"])
	ed.send(t, map[string]any{"type": "response", "id": req["id"], "ok": true})

	note := ed.read(t)
	assert.Equal(t, "notify", note["type"])
	assert.Equal(t, "Selection optimized (Code Assistant).", note["message"])

	cancel()
	assert.NoError(t, waitRun(t, done))
}

func TestHost_ReloadSwapsBackend(t *testing.T) {
	newServer := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"result":"` + name + `"}`))
		}))
	}
	first, second := newServer("first"), newServer("second")
	defer first.Close()
	defer second.Close()

	cfg := config.Default()
	cfg.Endpoint = first.URL
	h, _ := newTestHost(t, cfg)
	defer h.Close()

	call := func() string {
		data, err := h.backend.Call(context.Background(), backend.NewRequest(backend.ModeHints, "x"), "")
		require.NoError(t, err)
		return backend.ResultText(data)
	}
	assert.Equal(t, "first", call())

	next := config.Default()
	next.Endpoint = second.URL
	h.reload(next)
	assert.Equal(t, "second", call())

	// an unusable config keeps the current backend
	broken := config.Default()
	broken.Backend = config.BackendOpenAI
	h.reload(broken)
	assert.Equal(t, "second", call())
}
