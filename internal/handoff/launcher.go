package handoff

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNoLauncher is returned when no command for opening a new session
// is configured.
var ErrNoLauncher = errors.New("no session launcher configured (set CODEDRILL_LAUNCH)")

// Launcher opens a new, independent session at a location.
type Launcher interface {
	Launch(ctx context.Context, location string) error
}

// ExecLauncher starts "<prefix...> <codedrill> open <location> <args...>"
// and does not wait for the new session to exit.
type ExecLauncher struct {
	Prefix []string

	// Executable is the codedrill binary. Defaults to os.Executable().
	Executable string

	// Args are appended after the location.
	Args []string
}

// NewExecLauncher creates a launcher using cfg.LaunchCommand as prefix.
func NewExecLauncher(cfg Config) *ExecLauncher {
	return &ExecLauncher{Prefix: cfg.LaunchCommand}
}

// Command builds the command line that opens location.
func (l *ExecLauncher) Command(location string) ([]string, error) {
	if len(l.Prefix) == 0 {
		return nil, ErrNoLauncher
	}
	exe := l.Executable
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
	}
	argv := append([]string{}, l.Prefix...)
	argv = append(argv, exe, "open", location)
	return append(argv, l.Args...), nil
}

func (l *ExecLauncher) Launch(_ context.Context, location string) error {
	argv, err := l.Command(location)
	if err != nil {
		return err
	}

	// Not bound to ctx: the new session outlives the handoff call.
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch session: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
