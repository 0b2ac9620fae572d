package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/panel"
	"github.com/Rorical/CodeAssist/internal/update"
	"github.com/Rorical/CodeAssist/ui/components"
)

const (
	inputHeight = 8
	// tab bar, input border, status bar and spacing
	chromeHeight = 6
)

type AppModel struct {
	appModel   models.AppModel
	input      textarea.Model
	result     viewport.Model
	spinner    spinner.Model
	dispatcher *dispatcher.EventDispatcher

	// sent holds input pushed to the core per tab and not yet echoed back,
	// so that echoes of our own typing do not overwrite newer keystrokes
	sent map[backend.Mode][]string
}

func newAppModel(kind string, initial panel.Snapshot, disp *dispatcher.EventDispatcher) *AppModel {
	ta := textarea.New()
	ta.Placeholder = "Paste or select code in the editor..."
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &AppModel{
		appModel: models.AppModel{
			Kind:   kind,
			State:  initial,
			Active: initial.Active,
			Status: "Ready",
		},
		input:      ta,
		result:     viewport.New(80, 10),
		spinner:    spin,
		dispatcher: disp,
		sent:       make(map[backend.Mode][]string),
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	eb := m.dispatcher.GetEventBus()

	if s, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(s)
		if m.appModel.Loading() {
			m.refreshResult()
		}
		return m, cmd
	}

	out, cmd := update.HandleUpdate(&m.appModel, msg, eb)
	cmds := []tea.Cmd{cmd}

	switch msg.(type) {
	case dispatcher.CoreEventMsg:
		m.applyFocus()
		cmds = append(cmds, m.dispatcher.ListenForCoreEvents())
	case tea.KeyMsg:
		switch out.Key {
		case update.KeyPassThrough:
			cmds = append(cmds, m.routeKey(msg))
		case update.KeyFocusChanged:
			m.applyFocus()
		}
	}

	if out.Resized {
		m.layout()
	}
	if out.StateChanged || out.Key == update.KeyTabChanged {
		m.syncInput(out.Key == update.KeyTabChanged)
		m.refreshResult()
	}
	return m, tea.Batch(cmds...)
}

func (m *AppModel) View() string {
	width := m.appModel.Width
	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderTabs(m.appModel.State, m.appModel.Active, width),
		components.RenderInput(m.input.View(), m.appModel.Focus == models.FocusInput, width),
		m.result.View(),
		components.RenderStatus(m.appModel.Status, m.appModel.StatusError, m.spinner.View(), m.appModel.Loading(), width),
	)
}

// routeKey hands an unbound key to the focused widget
func (m *AppModel) routeKey(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.appModel.Focus == models.FocusResult {
		m.result, cmd = m.result.Update(msg)
		return cmd
	}

	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		mode := m.appModel.Active
		m.sent[mode] = append(m.sent[mode], after)
		if err := m.dispatcher.GetEventBus().SendToCore(eventbus.InputEvent{Mode: mode, Text: after}); err != nil {
			m.appModel.Status = "Error sending event: " + err.Error()
			m.appModel.StatusError = true
		}
	}
	return cmd
}

// syncInput copies the active tab's input from the core when the core
// changed it (selection pushed, clear) or when the visible tab changed
func (m *AppModel) syncInput(force bool) {
	mode := m.appModel.Active
	text := m.appModel.ActiveTab().Input
	if pending := m.sent[mode]; !force && len(pending) > 0 {
		for i, p := range pending {
			if p == text {
				m.sent[mode] = pending[i+1:]
				break
			}
		}
		return
	}
	m.sent[mode] = nil
	if m.input.Value() != text {
		m.input.SetValue(text)
	}
}

func (m *AppModel) refreshResult() {
	m.result.SetContent(components.RenderResult(m.appModel.ActiveTab(), m.spinner.View()))
}

func (m *AppModel) applyFocus() {
	if m.appModel.Focus == models.FocusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m *AppModel) layout() {
	w, h := m.appModel.Width, m.appModel.Height
	m.input.SetWidth(max(w-6, 10))
	m.result.Width = w
	m.result.Height = max(h-inputHeight-chromeHeight, 3)
	m.refreshResult()
}
