package runner

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func newTestRunner(stdout io.Writer, logs io.Writer) *Runner {
	r := New(slog.New(slog.NewTextHandler(logs, nil)))
	r.Stdout = stdout
	r.Stderr = io.Discard
	r.WaitDelay = time.Second
	return r
}

func TestRunExitZero(t *testing.T) {
	requireShell(t)
	var logs bytes.Buffer
	r := newTestRunner(io.Discard, &logs)

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 0"}})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "sh -c 'exit 0'")
}

func TestRunExitNonZero(t *testing.T) {
	requireShell(t)
	r := newTestRunner(io.Discard, io.Discard)

	err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 7"}})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 7, ee.Code)
	assert.Equal(t, "sh -c 'exit 7'", ee.Command)
	assert.Contains(t, err.Error(), "exit status 7")
}

func TestRunLaunchFailure(t *testing.T) {
	r := newTestRunner(io.Discard, io.Discard)

	err := r.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "no-such-tool")})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, -1, ee.Code)
}

func TestRunDirAndEnv(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	var out bytes.Buffer
	r := newTestRunner(&out, io.Discard)

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `pwd; echo "$LIBDISNI_TEST"`},
		Dir:  dir,
		Env:  append(os.Environ(), "LIBDISNI_TEST=value"),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "value", lines[1])
}

func TestRunArgumentsAreNotShellExpanded(t *testing.T) {
	requireShell(t)
	var out bytes.Buffer
	r := newTestRunner(&out, io.Discard)

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `printf '%s\n' "$1"`, "sh", "--enable-foo $HOME; true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "--enable-foo $HOME; true\n", out.String())
}

func TestRunCancelled(t *testing.T) {
	requireShell(t)
	r := newTestRunner(io.Discard, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 30"}})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "./configure", Args: []string{"--with-jdk=/opt/jdk", "--prefix=/tmp/my build", ""}}
	assert.Equal(t, "./configure --with-jdk=/opt/jdk '--prefix=/tmp/my build' ''", c.String())
}
