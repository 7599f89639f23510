//go:build linux || freebsd || openbsd || netbsd || dragonfly
// +build linux freebsd openbsd netbsd dragonfly

package opener

import "os/exec"

func platformOpener() Opener {
	return Command("xdg-open")
}

func configure(cmd *exec.Cmd) {}
