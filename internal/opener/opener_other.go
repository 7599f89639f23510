//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !darwin && !windows
// +build !linux,!freebsd,!openbsd,!netbsd,!dragonfly,!darwin,!windows

package opener

import (
	"errors"
	"os/exec"
)

var errUnsupported = errors.New("opening files is not supported on this platform")

func platformOpener() Opener {
	return Func(func(string) error { return errUnsupported })
}

func configure(cmd *exec.Cmd) {}
