package models

import (
	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/panel"
)

// Focus is the pane that receives typed keys
type Focus int

const (
	FocusInput Focus = iota
	FocusResult
)

// AppModel represents the UI state - only local UI concerns. Tab contents
// come from the core as snapshots.
type AppModel struct {
	Kind        string         // "panel" or "sidebar"
	State       panel.Snapshot // Last snapshot pushed by the core
	Active      backend.Mode   // Visible tab, ahead of the core while a switch is in flight
	Focus       Focus
	Status      string // Status bar text
	StatusError bool
	Detached    bool // Host link is gone
	Width       int  // Terminal width
	Height      int  // Terminal height
}

// ActiveTab is the snapshot of the visible tab
func (m AppModel) ActiveTab() panel.Tab {
	return m.State.Tab(m.Active)
}

func (m AppModel) Loading() bool {
	return m.State.Loading > 0
}
