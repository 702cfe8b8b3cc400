package protogolden

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/shlex"
)

// ExecFrontend runs an external front end process, such as protoc with a
// generator plugin, and returns its exit status.
type ExecFrontend struct {
	// Command replaces args[0]; extra words (--plugin=...) go before the
	// invocation arguments.
	Command []string
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// ParseCommand splits a shell-style front end command line into words.
func ParseCommand(s string) ([]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("parse front end command %q: %w", s, err)
	}
	if len(words) == 0 {
		return nil, errors.New("empty front end command")
	}
	return words, nil
}

// Run implements Frontend. A process that cannot be started yields -1.
func (e *ExecFrontend) Run(args []string) int {
	stderr := e.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	if len(e.Command) == 0 {
		fmt.Fprintln(stderr, "empty front end command")
		return -1
	}
	argv := append([]string(nil), e.Command[1:]...)
	if len(args) > 1 {
		argv = append(argv, args[1:]...)
	}
	cmd := exec.Command(e.Command[0], argv...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	default:
		fmt.Fprintln(stderr, err)
		return -1
	}
}
