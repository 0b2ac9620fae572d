package host

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/Rorical/CodeAssist/internal/surface"
)

var ErrNoPanelCommand = errors.New("no panel_command configured; start one with `codeassist panel`")

// CommandLauncher opens the floating panel by running an external command
// (for example a tmux split running `codeassist panel`) and waiting for the
// new panel to attach to the surface server.
type CommandLauncher struct {
	argv     []string
	timeout  time.Duration
	arrivals chan surface.Surface
	logger   *zap.Logger
}

func NewCommandLauncher(argv []string, timeout time.Duration, logger *zap.Logger) *CommandLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandLauncher{
		argv:     argv,
		timeout:  timeout,
		arrivals: make(chan surface.Surface),
		logger:   logger,
	}
}

func (l *CommandLauncher) NewPanel(ctx context.Context) (surface.Surface, error) {
	if len(l.argv) == 0 {
		return nil, ErrNoPanelCommand
	}

	cmd := exec.Command(l.argv[0], l.argv[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start panel command: %w", err)
	}
	l.logger.Info("panel command started", zap.Strings("argv", l.argv))
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Warn("panel command exited", zap.Error(err))
		}
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()
	select {
	case s := <-l.arrivals:
		return s, nil
	case <-timer.C:
		return nil, fmt.Errorf("panel did not attach within %s", l.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Offer hands an attaching panel to a NewPanel call that is waiting for it.
// It reports false when nobody is waiting.
func (l *CommandLauncher) Offer(s surface.Surface) bool {
	select {
	case l.arrivals <- s:
		return true
	default:
		return false
	}
}
