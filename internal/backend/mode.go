package backend

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("unknown analysis mode")

// Mode is one of the fixed analysis kinds understood by the backend
type Mode string

const (
	ModeHints       Mode = "hints"
	ModeSuggestions Mode = "suggestions"
	ModeExplanation Mode = "explanation"
	ModeCleanCode   Mode = "cleancode"
	ModeSolutions   Mode = "solutions"
	ModeErrorFixing Mode = "errorfixing"
)

// Modes lists the analysis kinds in tab order
var Modes = []Mode{
	ModeHints,
	ModeSuggestions,
	ModeExplanation,
	ModeCleanCode,
	ModeSolutions,
	ModeErrorFixing,
}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMode, s)
}

// Title is the heading shown above a rendered result
func (m Mode) Title() string {
	switch m {
	case ModeHints:
		return "💡 Code Hints"
	case ModeSuggestions:
		return "💭 Improvement Suggestions"
	case ModeExplanation:
		return "📚 Code Explanation"
	case ModeCleanCode:
		return "✨ Clean Code Suggestions"
	case ModeSolutions:
		return "🎯 Solution Approaches"
	case ModeErrorFixing:
		return "🐛 Error Fixing"
	}
	return "Result"
}

// Label is the short tab label
func (m Mode) Label() string {
	switch m {
	case ModeHints:
		return "Hints"
	case ModeSuggestions:
		return "Suggestions"
	case ModeExplanation:
		return "Explain"
	case ModeCleanCode:
		return "Clean Code"
	case ModeSolutions:
		return "Solutions"
	case ModeErrorFixing:
		return "Fix Errors"
	}
	return string(m)
}
