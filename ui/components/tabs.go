package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/CodeAssist/internal/backend"
	"github.com/Rorical/CodeAssist/internal/panel"
	"github.com/Rorical/CodeAssist/ui/styles"
)

// RenderTabs draws one label per analysis kind. Tabs with a request in
// flight carry a marker.
func RenderTabs(state panel.Snapshot, active backend.Mode, width int) string {
	labels := make([]string, 0, len(backend.Modes))
	for _, m := range backend.Modes {
		label := m.Label()
		if state.Tab(m).Phase == panel.PhaseLoading {
			label += " …"
		}
		if m == active {
			labels = append(labels, styles.ActiveTabStyle().Render(label))
		} else {
			labels = append(labels, styles.TabStyle().Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, labels...)
	if lipgloss.Width(row) > width && width > 0 {
		// narrow sidebars get a wrapped bar
		return lipgloss.NewStyle().Width(width).Render(strings.Join(labels, ""))
	}
	return row
}
