package editor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/correlate"
)

// ErrClosed is returned by calls made after the editor stream ended
var ErrClosed = errors.New("editor connection closed")

const codeNoActiveEditor = "no_active_editor"

// wireMessage is one line of the editor protocol, in either direction.
//
//	editor -> host: {"type":"selection","text":"...","ranges":1}
//	                {"type":"command","name":"codeAssistant.openUI"}
//	                {"type":"response","id":"...","ok":true,"text":"...","range":{...}}
//	host -> editor: {"type":"request","id":"...","method":"getSelection"}
//	                {"type":"request","id":"...","method":"replaceSelection","params":{"content":"...","range":{...}}}
//	                {"type":"notify","level":"info","message":"..."}
type wireMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Method  string `json:"method,omitempty"`
	Params  any    `json:"params,omitempty"`
	Text    string `json:"text,omitempty"`
	Ranges  int    `json:"ranges,omitempty"`
	Range   *Range `json:"range,omitempty"`
	Name    string `json:"name,omitempty"`
	OK      bool   `json:"ok,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Level   Level  `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// Stdio talks to an editor plugin over line-delimited JSON, typically the
// process's stdin and stdout.
type Stdio struct {
	in      io.Reader
	out     io.Writer
	writeMu sync.Mutex
	pending *correlate.Table[wireMessage]
	logger  *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewStdio(in io.Reader, out io.Writer, logger *zap.Logger) *Stdio {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stdio{
		in:      in,
		out:     out,
		pending: correlate.NewTable[wireMessage](0),
		logger:  logger,
		closed:  make(chan struct{}),
	}
}

// Run reads editor messages until the input ends or ctx is done. Commands
// are handled on their own goroutine so they may call back into the editor.
func (s *Stdio) Run(ctx context.Context, h Handlers) error {
	defer s.closeOnce.Do(func() { close(s.closed) })

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		// no line cap: a whole-file selection arrives as one line
		r := bufio.NewReader(s.in)
		for {
			line, err := r.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read editor stream: %w", err)
			}
			return nil
		case line := <-lines:
			s.dispatch(line, h)
		}
	}
}

func (s *Stdio) dispatch(line []byte, h Handlers) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	var msg wireMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		s.logger.Warn("malformed editor message", zap.Error(err))
		return
	}

	switch msg.Type {
	case "selection":
		if h.OnSelection != nil {
			h.OnSelection(SelectionEvent{Text: msg.Text, Ranges: msg.Ranges})
		}
	case "command":
		if h.OnCommand != nil {
			go h.OnCommand(msg.Name)
		}
	case "response":
		if !s.pending.Resolve(msg.ID, msg) {
			s.logger.Debug("response for unknown request", zap.String("id", msg.ID))
		}
	default:
		s.logger.Debug("ignoring editor message", zap.String("type", msg.Type))
	}
}

func (s *Stdio) Selection(ctx context.Context) (string, error) {
	resp, err := s.call(ctx, "getSelection", nil)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (s *Stdio) SelectionRange(ctx context.Context) (string, *Range, error) {
	resp, err := s.call(ctx, "getSelection", nil)
	if err != nil {
		return "", nil, err
	}
	return resp.Text, resp.Range, nil
}

func (s *Stdio) ReplaceSelection(ctx context.Context, text string) error {
	_, err := s.call(ctx, "replaceSelection", map[string]string{"content": text})
	return err
}

// ReplaceRange replaces r rather than the current selection
func (s *Stdio) ReplaceRange(ctx context.Context, r Range, text string) error {
	_, err := s.call(ctx, "replaceSelection", replaceParams{Content: text, Range: &r})
	return err
}

type replaceParams struct {
	Content string `json:"content"`
	Range   *Range `json:"range,omitempty"`
}

func (s *Stdio) Notify(_ context.Context, level Level, message string) error {
	return s.write(wireMessage{Type: "notify", Level: level, Message: message})
}

func (s *Stdio) call(ctx context.Context, method string, params any) (wireMessage, error) {
	id, ch := s.pending.Register()
	if err := s.write(wireMessage{Type: "request", ID: id, Method: method, Params: params}); err != nil {
		s.pending.Forget(id)
		return wireMessage{}, err
	}

	select {
	case r := <-ch:
		if r.Err != nil {
			return wireMessage{}, r.Err
		}
		if !r.Value.OK {
			if r.Value.Code == codeNoActiveEditor {
				return wireMessage{}, ErrNoActiveEditor
			}
			return wireMessage{}, fmt.Errorf("editor %s: %s", method, r.Value.Error)
		}
		return r.Value, nil
	case <-ctx.Done():
		s.pending.Forget(id)
		return wireMessage{}, ctx.Err()
	case <-s.closed:
		s.pending.Forget(id)
		return wireMessage{}, ErrClosed
	}
}

func (s *Stdio) write(msg wireMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode editor message: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write editor message: %w", err)
	}
	return nil
}
