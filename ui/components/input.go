package components

import (
	"github.com/Rorical/CodeAssist/ui/styles"
)

func RenderInput(view string, focused bool, width int) string {
	return styles.InputStyle(width, focused).Render(view)
}
