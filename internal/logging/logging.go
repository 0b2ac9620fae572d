// Package logging builds the zap logger shared by every codeassist process.
//
// Logs never go to stdout: in serve mode stdout carries the editor protocol
// and in panel mode the terminal belongs to the TUI. They are written as
// JSON lines to a file, by default <config dir>/codeassist-<process>.log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	// File is the log file path. Empty means Dir/codeassist-<Process>.log.
	File    string
	Dir     string
	Process string
}

func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	path := opts.File
	if path == "" {
		path = filepath.Join(opts.Dir, fmt.Sprintf("codeassist-%s.log", opts.Process))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("process", opts.Process)), nil
}
