package host

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/editor"
)

// Command names sent by the editor plugin
const (
	CommandOpenUI            = "codeAssistant.openUI"
	CommandOptimizeSelection = "codeAssistant.optimizeSelection"
)

var (
	ErrNoSelection    = errors.New("no text selected")
	ErrUnknownCommand = errors.New("unknown command")
)

type Commands struct {
	manager *Manager
	editor  editor.Editor
	backend backend.Caller
	logger  *zap.Logger
}

func NewCommands(m *Manager, ed editor.Editor, caller backend.Caller, logger *zap.Logger) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Commands{manager: m, editor: ed, backend: caller, logger: logger}
}

// Run executes the named command. Failures are reported to the editor as
// notifications and returned.
func (c *Commands) Run(ctx context.Context, name string) error {
	c.logger.Debug("editor command", zap.String("command", name))
	switch name {
	case CommandOpenUI:
		if err := c.manager.OpenOrRevealPanel(ctx); err != nil {
			c.logger.Warn("open panel failed", zap.Error(err))
			_ = c.editor.Notify(ctx, editor.LevelWarning, "Code Assistant: "+err.Error())
			return err
		}
		return nil
	case CommandOptimizeSelection:
		return Optimize(ctx, c.editor, c.backend)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// Optimize replaces the editor's selection with the backend's cleaned-up
// version of it. When the editor reports the selection range, that range is
// replaced even if the selection moved while the backend was working.
func Optimize(ctx context.Context, ed editor.Editor, caller backend.Caller) error {
	selected, pinned, err := captureSelection(ctx, ed)
	if errors.Is(err, editor.ErrNoActiveEditor) {
		_ = ed.Notify(ctx, editor.LevelInfo, "No active editor")
		return err
	}
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	if selected == "" {
		_ = ed.Notify(ctx, editor.LevelInfo, "No text selected")
		return ErrNoSelection
	}

	data, err := caller.Call(ctx, backend.NewOptimizeRequest(selected), "")
	if err != nil {
		_ = ed.Notify(ctx, editor.LevelError, "Error optimizing: "+err.Error())
		return err
	}

	if err := replace(ctx, ed, pinned, backend.ResultText(data)); err != nil {
		_ = ed.Notify(ctx, editor.LevelError, "Error optimizing: "+err.Error())
		return err
	}
	_ = ed.Notify(ctx, editor.LevelInfo, "Selection optimized (Code Assistant).")
	return nil
}

func captureSelection(ctx context.Context, ed editor.Editor) (string, *editor.Range, error) {
	if re, ok := ed.(editor.RangeEditor); ok {
		return re.SelectionRange(ctx)
	}
	text, err := ed.Selection(ctx)
	return text, nil, err
}

func replace(ctx context.Context, ed editor.Editor, pinned *editor.Range, text string) error {
	if re, ok := ed.(editor.RangeEditor); ok && pinned != nil {
		return re.ReplaceRange(ctx, *pinned, text)
	}
	return ed.ReplaceSelection(ctx, text)
}
