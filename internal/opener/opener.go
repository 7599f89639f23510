// Package opener hands files to the operating system's default application.
package opener

import (
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Opener opens a file with whatever the host considers its default handler.
type Opener interface {
	Open(path string) error
}

// commandOpener runs an external handler with the path appended to args.
type commandOpener struct {
	name string
	args []string
}

// Command returns an Opener that runs name with args followed by the path.
func Command(name string, args ...string) Opener {
	return &commandOpener{name: name, args: args}
}

// New returns the opener for the platform the binary was built for.
func New() Opener {
	return platformOpener()
}

func (o *commandOpener) Open(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	bin, err := exec.LookPath(o.name)
	if err != nil {
		return fmt.Errorf("no default application handler (%s): %w", o.name, err)
	}

	args := append(append([]string(nil), o.args...), path)
	cmd := exec.Command(bin, args...)
	configure(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", o.name, err)
	}

	// Some handlers stay attached to the viewer; reap them without blocking the caller.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("opener: %s %s: %v", o.name, path, err)
		}
	}()
	return nil
}

// Func adapts a function to the Opener interface.
type Func func(path string) error

func (f Func) Open(path string) error {
	return f(path)
}
