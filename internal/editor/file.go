package editor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// FileEditor treats a line range of a file as the selection. It lets the
// optimize command work without an editor attached.
type FileEditor struct {
	mu        sync.Mutex
	path      string
	startLine int
	endLine   int
	out       io.Writer
}

// NewFileEditor selects lines startLine..endLine (1-based, inclusive).
// endLine 0 selects through the end of the file.
func NewFileEditor(path string, startLine, endLine int, out io.Writer) (*FileEditor, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if startLine < 1 {
		return nil, fmt.Errorf("line numbers must be 1-based (start with 1)")
	}
	if endLine != 0 && endLine < startLine {
		return nil, fmt.Errorf("end line (%d) must be >= start line (%d)", endLine, startLine)
	}
	return &FileEditor{path: path, startLine: startLine, endLine: endLine, out: out}, nil
}

func (f *FileEditor) Selection(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines, err := f.readLines()
	if err != nil {
		return "", err
	}
	start, end, err := f.bounds(len(lines))
	if err != nil {
		return "", err
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// ReplaceSelection swaps the selected lines for text. The selection then
// covers the inserted lines.
func (f *FileEditor) ReplaceSelection(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	lines, err := f.readLines()
	if err != nil {
		return err
	}
	start, end, err := f.bounds(len(lines))
	if err != nil {
		return err
	}

	newLines := strings.Split(text, "\n")
	var result []string
	result = append(result, lines[:start-1]...)
	result = append(result, newLines...)
	result = append(result, lines[end:]...)

	if err := os.WriteFile(f.path, []byte(strings.Join(result, "\n")), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	f.endLine = start + len(newLines) - 1
	return nil
}

func (f *FileEditor) Notify(_ context.Context, level Level, message string) error {
	if f.out == nil {
		return nil
	}
	_, err := fmt.Fprintf(f.out, "[%s] %s\n", level, message)
	return err
}

func (f *FileEditor) readLines() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return strings.Split(string(data), "\n"), nil
}

func (f *FileEditor) bounds(total int) (int, int, error) {
	end := f.endLine
	if end == 0 || end > total {
		end = total
	}
	if f.startLine > total {
		return 0, 0, fmt.Errorf("start line %d exceeds file length (%d lines)", f.startLine, total)
	}
	return f.startLine, end, nil
}
