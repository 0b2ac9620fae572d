package update

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
	"github.com/Rorical/CodeAssist/internal/panel"
)

func TestHandleKeyMsg_TabsWrap(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{Active: backend.Modes[0]}

	res, _ := HandleKeyMsg(m, tea.KeyMsg{Type: tea.KeyShiftTab}, eb)
	assert.Equal(t, KeyTabChanged, res)
	last := backend.Modes[len(backend.Modes)-1]
	assert.Equal(t, last, m.Active)
	assert.Equal(t, eventbus.SwitchTabEvent{Mode: last}, <-eb.UIToCore())

	HandleKeyMsg(m, tea.KeyMsg{Type: tea.KeyTab}, eb)
	assert.Equal(t, backend.Modes[0], m.Active)
}

func TestHandleKeyMsg_Actions(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{Active: backend.ModeCleanCode}

	tests := []struct {
		key  tea.KeyType
		want eventbus.UIEvent
	}{
		{tea.KeyCtrlR, eventbus.AnalyzeEvent{Mode: backend.ModeCleanCode}},
		{tea.KeyCtrlA, eventbus.ApplyEvent{Mode: backend.ModeCleanCode}},
		{tea.KeyCtrlY, eventbus.CopyEvent{Mode: backend.ModeCleanCode}},
		{tea.KeyCtrlL, eventbus.ClearEvent{Mode: backend.ModeCleanCode}},
	}
	for _, tt := range tests {
		res, cmd := HandleKeyMsg(m, tea.KeyMsg{Type: tt.key}, eb)
		assert.Equal(t, KeyHandled, res)
		assert.Nil(t, cmd)
		assert.Equal(t, tt.want, <-eb.UIToCore())
	}

	res, _ := HandleKeyMsg(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, eb)
	assert.Equal(t, KeyPassThrough, res)

	res, _ = HandleKeyMsg(m, tea.KeyMsg{Type: tea.KeyEsc}, eb)
	assert.Equal(t, KeyFocusChanged, res)
	assert.Equal(t, models.FocusResult, m.Focus)
}

func TestHandleKeyMsg_ClosedBusShowsError(t *testing.T) {
	eb := eventbus.NewEventBus()
	eb.Close()
	m := &models.AppModel{Active: backend.ModeHints}

	HandleKeyMsg(m, tea.KeyMsg{Type: tea.KeyCtrlR}, eb)
	assert.True(t, m.StatusError)
	assert.Contains(t, m.Status, "event bus closed")
}

func TestHandleCoreEvent(t *testing.T) {
	m := &models.AppModel{Active: backend.ModeHints, Status: "Ready"}

	changed, _ := HandleCoreEvent(m, dispatcher.CoreEventMsg{Event: eventbus.StateUpdateEvent{State: panel.Snapshot{Loading: 1}}})
	assert.True(t, changed)
	assert.Equal(t, "Analyzing", m.Status)

	HandleCoreEvent(m, dispatcher.CoreEventMsg{Event: eventbus.StateUpdateEvent{State: panel.Snapshot{}}})
	assert.Equal(t, "Ready", m.Status)

	HandleCoreEvent(m, dispatcher.CoreEventMsg{Event: eventbus.NoticeEvent{Text: "nothing to apply", Error: true}})
	assert.True(t, m.StatusError)

	_, cmd := HandleCoreEvent(m, dispatcher.CoreEventMsg{Event: eventbus.DetachedEvent{}})
	require.NotNil(t, cmd)
	assert.True(t, m.Detached)
}
