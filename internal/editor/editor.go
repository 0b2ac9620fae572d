package editor

import (
	"context"
	"errors"
)

// ErrNoActiveEditor means there is no editable selection to act on
var ErrNoActiveEditor = errors.New("no active editor")

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Editor is the host's view of the editor it serves
type Editor interface {
	// Selection returns the currently selected text, or ErrNoActiveEditor
	Selection(ctx context.Context) (string, error)
	// ReplaceSelection replaces the current selection range with text
	ReplaceSelection(ctx context.Context, text string) error
	Notify(ctx context.Context, level Level, message string) error
}

// Position is a zero-based line and character offset in a document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a selection as reported by the plugin
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// RangeEditor is implemented by editors that report where the selection is
// and can replace a given range later, whatever is selected by then.
type RangeEditor interface {
	// SelectionRange returns the selected text and its range. The range is
	// nil when the editor did not report one.
	SelectionRange(ctx context.Context) (string, *Range, error)
	ReplaceRange(ctx context.Context, r Range, text string) error
}

// SelectionEvent is one selection-change notification. Ranges is the number
// of selection ranges the editor reported; Text is the first range's text.
type SelectionEvent struct {
	Text   string
	Ranges int
}

// Handlers receive editor-initiated events. Either may be nil.
type Handlers struct {
	OnSelection func(SelectionEvent)
	OnCommand   func(name string)
}
