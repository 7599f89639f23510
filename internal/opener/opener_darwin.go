//go:build darwin
// +build darwin

package opener

import "os/exec"

func platformOpener() Opener {
	return Command("open")
}

func configure(cmd *exec.Cmd) {}
