//go:build !unix

package runner

import "os"

func interrupt(p *os.Process) error {
	return p.Kill()
}
