//go:build unix

package runner

import (
	"os"

	"golang.org/x/sys/unix"
)

// interrupt sends SIGTERM; Cmd.WaitDelay escalates to SIGKILL.
func interrupt(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGTERM)
}
