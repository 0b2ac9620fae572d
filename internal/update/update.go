package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/CodeAssist/internal/dispatcher"
	"github.com/Rorical/CodeAssist/internal/eventbus"
	"github.com/Rorical/CodeAssist/internal/models"
)

// Outcome summarises what HandleUpdate did so the program can refresh the
// widgets it owns
type Outcome struct {
	Key          KeyResult
	StateChanged bool
	Resized      bool
}

func HandleUpdate(appModel *models.AppModel, msg tea.Msg, eb *eventbus.EventBus) (Outcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		res, cmd := HandleKeyMsg(appModel, msg, eb)
		return Outcome{Key: res}, cmd
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return Outcome{Resized: true}, nil
	case dispatcher.CoreEventMsg:
		changed, cmd := HandleCoreEvent(appModel, msg)
		return Outcome{StateChanged: changed}, cmd
	case dispatcher.BusClosedMsg:
		appModel.Detached = true
		return Outcome{}, tea.Quit
	}
	return Outcome{}, nil
}
