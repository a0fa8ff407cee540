package opener

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Launcher opens one URL on the workstation.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// CommandLauncher runs an external command with the URL as last argument,
// e.g. "xdg-open" or "open -a Safari".
type CommandLauncher struct {
	name string
	args []string
}

func NewCommandLauncher(command string) (*CommandLauncher, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("opener command is empty")
	}
	return &CommandLauncher{name: fields[0], args: fields[1:]}, nil
}

func (l *CommandLauncher) Launch(ctx context.Context, url string) error {
	args := append(append([]string{}, l.args...), url)
	out, err := exec.CommandContext(ctx, l.name, args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "%s: %s", l.name, strings.TrimSpace(string(out)))
	}
	return nil
}
