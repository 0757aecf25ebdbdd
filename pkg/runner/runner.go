// Package runner abstracts the child processes behind every external
// collaborator (dotnet, reportgenerator, git).
//
// Pipelines depend on the Runner interface only, so tests swap in the
// scripted implementation and assert on recorded invocations instead
// of spawning real tools.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/status"
)

// Command describes a single external tool invocation.
type Command struct {
	// Name of the binary, resolved through PATH
	Name string
	// Args passed verbatim, no shell involved
	Args []string
	// Dir to run in; empty means the current directory
	Dir string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external tools.
type Runner interface {
	// Run executes the command, streaming its output to the user.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and captures its stdout.
	Output(ctx context.Context, cmd Command) (string, error)
}

// Exec is the production Runner, backed by os/exec.
type Exec struct {
	log *zap.Logger
}

// NewExec builds the os/exec backed runner. A nil logger disables logging.
func NewExec(log *zap.Logger) *Exec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exec{log: log}
}

// Run streams the tool's stdout and stderr to the user's terminal.
func (e *Exec) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	e.log.Debug("running external tool", zap.String("command", cmd.String()), zap.String("dir", cmd.Dir))
	if err := c.Run(); err != nil {
		return toolError(cmd, err, "")
	}
	return nil
}

// Output captures the tool's stdout. Stderr is folded into the error
// on failure, since that is where git and dotnet put their diagnostics.
func (e *Exec) Output(ctx context.Context, cmd Command) (string, error) {
	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr
	e.log.Debug("capturing external tool", zap.String("command", cmd.String()), zap.String("dir", cmd.Dir))
	if err := c.Run(); err != nil {
		return "", toolError(cmd, err, stderr.String())
	}
	return stdout.String(), nil
}

// ExitFailure yields the error reported when a tool exits with a
// non-zero code. The scripted runner synthesizes the same error so
// pipelines see identical failures in tests and production.
func ExitFailure(cmd Command, code int, detail string) error {
	msg := fmt.Sprintf("%s exited with code %d", cmd.Name, code)
	if detail = strings.TrimSpace(detail); detail != "" {
		msg += ": " + detail
	}
	return errors.New(msg).Wrap(status.ErrToolFailure)
}

func toolError(cmd Command, err error, stderr string) error {
	var xerr *exec.ExitError
	if errors.As(err, &xerr) {
		return ExitFailure(cmd, xerr.ExitCode(), stderr)
	}
	return errors.New(fmt.Sprintf("%s could not run: %v", cmd.Name, err)).Wrap(status.ErrToolFailure)
}
