package utils

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	orderedItem = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCode  = regexp.MustCompile("`([^`]+)`")
	boldText    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

func headingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
}

func listStyle() lipgloss.Style {
	return lipgloss.NewStyle().MarginLeft(2)
}

func inlineCodeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1)
}

// RenderProse applies light markdown styling to an explanation or hint
// list: headings, bullets, numbered items, bold and inline code. Input must
// already be escaped; line breaks are kept as sent.
func RenderProse(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, headingStyle().Render(inline(title)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			out = append(out, listStyle().Render("• "+inline(trimmed[2:])))
		default:
			if m := orderedItem.FindStringSubmatch(trimmed); m != nil {
				out = append(out, listStyle().Render(m[1]+". "+inline(m[2])))
				continue
			}
			out = append(out, inline(line))
		}
	}
	return strings.Join(out, "\n")
}

func inline(s string) string {
	s = inlineCode.ReplaceAllStringFunc(s, func(m string) string {
		return inlineCodeStyle().Render(strings.Trim(m, "`"))
	})
	return boldText.ReplaceAllStringFunc(s, func(m string) string {
		return lipgloss.NewStyle().Bold(true).Render(strings.Trim(m, "*"))
	})
}
