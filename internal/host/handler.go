package host

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/editor"
	"github.com/Rorical/CodeAssist/internal/protocol"
	"github.com/Rorical/CodeAssist/internal/surface"
)

type panelRevealer interface {
	RevealPanel(preserveFocus bool) error
}

// Handler answers messages sent by surfaces
type Handler struct {
	editor  editor.Editor
	backend backend.Caller
	panels  panelRevealer
	logger  *zap.Logger
}

func NewHandler(ed editor.Editor, caller backend.Caller, panels panelRevealer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{editor: ed, backend: caller, panels: panels, logger: logger}
}

func (h *Handler) Handle(ctx context.Context, s surface.Surface, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.RequestSelectedCode:
		h.reply(s, protocol.SelectedCode{Code: selectionOrEmpty(ctx, h.editor, h.logger)})
	case protocol.ReplaceSelection:
		h.replaceSelection(ctx, m)
	case protocol.CallBackend:
		h.callBackend(ctx, s, m)
	default:
		h.logger.Debug("ignoring surface message", zap.String("command", msg.Command()))
	}
}

func (h *Handler) replaceSelection(ctx context.Context, m protocol.ReplaceSelection) {
	err := h.editor.ReplaceSelection(ctx, m.Content)
	switch {
	case errors.Is(err, editor.ErrNoActiveEditor):
		h.notify(ctx, editor.LevelWarning, "No active editor to apply code")
		return
	case err != nil:
		h.logger.Warn("replace selection failed", zap.Error(err))
		h.notify(ctx, editor.LevelError, "Code Assistant: failed to apply code: "+err.Error())
		return
	}

	h.notify(ctx, editor.LevelInfo, "Code Assistant: selection replaced")
	// Keep input focus in the editor
	if err := h.panels.RevealPanel(true); err != nil {
		h.logger.Debug("reveal after replace failed", zap.Error(err))
	}
}

func (h *Handler) callBackend(ctx context.Context, s surface.Surface, m protocol.CallBackend) {
	data, err := h.backend.Call(ctx, m.Body, m.URL)
	if err != nil {
		h.reply(s, protocol.BackendError{ID: m.ID, Error: err.Error()})
		return
	}
	h.reply(s, protocol.BackendResult{ID: m.ID, Data: data})
}

func (h *Handler) reply(s surface.Surface, msg protocol.Message) {
	if err := s.Post(msg); err != nil {
		h.logger.Debug("reply not delivered",
			zap.String("surface", string(s.Kind())),
			zap.String("command", msg.Command()),
			zap.Error(err))
	}
}

func (h *Handler) notify(ctx context.Context, level editor.Level, message string) {
	if err := h.editor.Notify(ctx, level, message); err != nil {
		h.logger.Debug("editor notification failed", zap.Error(err))
	}
}

// selectionOrEmpty reads the current selection; no editor reads as ""
func selectionOrEmpty(ctx context.Context, ed editor.Editor, logger *zap.Logger) string {
	text, err := ed.Selection(ctx)
	if err != nil {
		if !errors.Is(err, editor.ErrNoActiveEditor) {
			logger.Debug("selection unavailable", zap.Error(err))
		}
		return ""
	}
	return text
}
