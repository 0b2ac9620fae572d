package panel

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/Rorical/CodeAssist/internal/backend"
)

// sniffLength is how much of a reply is checked for code keywords
const sniffLength = 200

var (
	codeKeywords = regexp.MustCompile(`function|class|return|var|let|const`)
	fenceOpen    = regexp.MustCompile("```\\w*\\n?")
	fenceTag     = regexp.MustCompile("```(\\w+)")
)

// Result is a backend reply prepared for display
type Result struct {
	Mode  backend.Mode
	Title string
	// Text is what the panel shows
	Text string
	// Raw is what Apply sends to the editor
	Raw  string
	Code bool
	// Language is the fence tag, if any; it only picks a highlighter
	Language string
}

// Render classifies a reply as code or prose. The classification is a
// heuristic: a fence marker anywhere, or a common keyword near the start.
func Render(mode backend.Mode, text string) Result {
	r := Result{Mode: mode, Title: mode.Title()}
	if !LooksLikeCode(text) {
		r.Text = Escape(text)
		r.Raw = text
		return r
	}

	clean := fenceOpen.ReplaceAllString(text, "")
	clean = strings.TrimSpace(strings.ReplaceAll(clean, "```", ""))
	r.Code = true
	r.Text = clean
	r.Raw = clean
	if m := fenceTag.FindStringSubmatch(text); m != nil {
		r.Language = m[1]
	}
	return r
}

func LooksLikeCode(text string) bool {
	if strings.Contains(text, "```") {
		return true
	}
	head := []rune(text)
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	return codeKeywords.MatchString(string(head))
}

// Escape makes reply text safe to print: terminal escape sequences and
// control characters other than newline and tab are removed.
func Escape(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(text))
}
