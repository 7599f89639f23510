//go:build windows
// +build windows

package opener

import (
	"os/exec"
	"syscall"
)

// rundll32 resolves the file association without going through a shell.
func platformOpener() Opener {
	return Command("rundll32", "url.dll,FileProtocolHandler")
}

func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
