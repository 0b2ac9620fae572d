package update

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
)

// KeyMap lists the panel's bindings
type KeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Analyze key.Binding
	Apply   key.Binding
	Copy    key.Binding
	Clear   key.Binding
	Focus   key.Binding
	Quit    key.Binding
}

var Keys = KeyMap{
	Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	Analyze: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "analyze")),
	Apply:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "apply")),
	Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
	Clear:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Focus:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "scroll/edit")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// KeyResult tells the program what a key did
type KeyResult int

const (
	// KeyPassThrough means the focused widget should get the key
	KeyPassThrough KeyResult = iota
	KeyHandled
	KeyTabChanged
	KeyFocusChanged
)

// HandleKeyMsg handles the panel bindings using the event bus
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) (KeyResult, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, Keys.Quit):
		return KeyHandled, tea.Quit
	case key.Matches(keyMsg, Keys.Next):
		switchTab(appModel, eb, 1)
		return KeyTabChanged, nil
	case key.Matches(keyMsg, Keys.Prev):
		switchTab(appModel, eb, -1)
		return KeyTabChanged, nil
	case key.Matches(keyMsg, Keys.Analyze):
		send(appModel, eb, eventbus.AnalyzeEvent{Mode: appModel.Active})
		return KeyHandled, nil
	case key.Matches(keyMsg, Keys.Apply):
		send(appModel, eb, eventbus.ApplyEvent{Mode: appModel.Active})
		return KeyHandled, nil
	case key.Matches(keyMsg, Keys.Copy):
		send(appModel, eb, eventbus.CopyEvent{Mode: appModel.Active})
		return KeyHandled, nil
	case key.Matches(keyMsg, Keys.Clear):
		send(appModel, eb, eventbus.ClearEvent{Mode: appModel.Active})
		return KeyHandled, nil
	case key.Matches(keyMsg, Keys.Focus):
		if appModel.Focus == models.FocusInput {
			appModel.Focus = models.FocusResult
		} else {
			appModel.Focus = models.FocusInput
		}
		return KeyFocusChanged, nil
	}
	return KeyPassThrough, nil
}

func switchTab(appModel *models.AppModel, eb *eventbus.EventBus, step int) {
	idx := 0
	for i, m := range backend.Modes {
		if m == appModel.Active {
			idx = i
			break
		}
	}
	n := len(backend.Modes)
	appModel.Active = backend.Modes[(idx+step+n)%n]
	send(appModel, eb, eventbus.SwitchTabEvent{Mode: appModel.Active})
}

func send(appModel *models.AppModel, eb *eventbus.EventBus, ev eventbus.UIEvent) {
	if err := eb.SendToCore(ev); err != nil {
		appModel.Status = "Error sending event: " + err.Error()
		appModel.StatusError = true
	}
}

// HandleCoreEvent processes events from the core. It reports whether the
// tab contents changed.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg dispatcher.CoreEventMsg) (bool, tea.Cmd) {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.State = event.State
		if appModel.Loading() {
			appModel.Status = "Analyzing"
			appModel.StatusError = false
		} else if appModel.Status == "Analyzing" {
			appModel.Status = "Ready"
		}
		return true, nil
	case eventbus.NoticeEvent:
		appModel.Status = event.Text
		appModel.StatusError = event.Error
	case eventbus.RevealEvent:
		appModel.Status = "Code Assistant"
		appModel.StatusError = false
		if !event.PreserveFocus {
			appModel.Focus = models.FocusInput
		}
		return false, nil
	case eventbus.DetachedEvent:
		appModel.Detached = true
		return false, tea.Quit
	}
	return false, nil
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}
