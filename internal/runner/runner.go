// Package runner executes external commands synchronously.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is a single external command line, given as an argument vector.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory; empty means the current one
	Env  []string // nil inherits the process environment
}

// String renders the command line for logs. Words containing
// whitespace or quotes are single-quoted.
func (c Command) String() string {
	words := make([]string, 0, 1+len(c.Args))
	for _, w := range append([]string{c.Name}, c.Args...) {
		words = append(words, quote(w))
	}
	return strings.Join(words, " ")
}

func quote(w string) string {
	if w != "" && !strings.ContainsAny(w, " \t\n'\"\\$") {
		return w
	}
	return "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
}

// ExitError reports a command that exited non-zero or could not be started.
// Code is -1 when no exit status was observed.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner runs commands one at a time, blocking until each exits.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// WaitDelay bounds how long a cancelled command may take to exit
	// after being signalled before it is killed.
	WaitDelay time.Duration
}

// New returns a Runner that forwards command output to the process's
// own stdout and stderr.
func New(logger *slog.Logger) *Runner {
	return &Runner{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
		WaitDelay: 10 * time.Second,
	}
}

// Run logs c, then executes it and waits for it to finish.
func (r *Runner) Run(ctx context.Context, c Command) error {
	line := c.String()
	r.logger().Info(line)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}
	code := -1
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code = ee.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &ExitError{Command: line, Code: code, Err: err}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
