package components

import (
	"strings"

	"github.com/Rorical/CodeAssist/internal/panel"
	"github.com/Rorical/CodeAssist/internal/utils"
	"github.com/Rorical/CodeAssist/ui/styles"
)

// RenderResult draws the result area of one tab
func RenderResult(tab panel.Tab, spinner string) string {
	switch tab.Phase {
	case panel.PhaseLoading:
		return styles.HintStyle().Render(spinner + " Analyzing...")
	case panel.PhaseErrored:
		return styles.ErrorStyle().Render("✗ " + tab.Err)
	case panel.PhaseIdle:
		return styles.HintStyle().Render("ctrl+r analyze · ctrl+a apply · ctrl+y copy · ctrl+l clear")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle().Render(tab.Result.Title))
	b.WriteString("\n\n")
	if tab.Result.Code {
		lang := tab.Result.Language
		if lang == "" {
			lang = "Code"
		}
		b.WriteString(styles.CodeHeaderStyle().Render(lang + "  ctrl+y copy"))
		b.WriteString("\n")
		b.WriteString(utils.HighlightCode(tab.Result.Text, tab.Result.Language))
	} else {
		b.WriteString(utils.RenderProse(tab.Result.Text))
	}
	return b.String()
}
