package components

import (
	"github.com/Rorical/CodeAssist/ui/styles"
)

func RenderStatus(status string, isError bool, spinner string, loading bool, width int) string {
	content := status
	if loading {
		content = spinner + " " + content
	}
	if isError {
		return styles.StatusErrorStyle(width).Render(content)
	}
	return styles.StatusStyle(width).Render(content)
}
