package clipboard

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// commandTimeout bounds a single paste/copy tool invocation
const commandTimeout = 5 * time.Second

// Command is a text-only clipboard backed by the platform's paste/copy
// tools (pbpaste/pbcopy, wl-paste/wl-copy, xclip). Rich formats are not
// round-tripped; HTML, RTF and image fields are dropped on write and never
// populated on read.
type Command struct {
	readCmd  []string
	writeCmd []string
}

// NewCommand selects the paste/copy tools for the current platform
func NewCommand() (*Command, error) {
	switch runtime.GOOS {
	case "darwin":
		return &Command{
			readCmd:  []string{"pbpaste"},
			writeCmd: []string{"pbcopy"},
		}, nil
	case "linux":
		if _, err := exec.LookPath("wl-paste"); err == nil {
			return &Command{
				readCmd:  []string{"wl-paste", "--no-newline"},
				writeCmd: []string{"wl-copy"},
			}, nil
		}
		if _, err := exec.LookPath("xclip"); err == nil {
			return &Command{
				readCmd:  []string{"xclip", "-selection", "clipboard", "-o"},
				writeCmd: []string{"xclip", "-selection", "clipboard", "-i"},
			}, nil
		}
		return nil, fmt.Errorf("%w: no wl-paste or xclip in PATH", ErrUnavailable)
	default:
		return nil, fmt.Errorf("%w: unsupported platform %s", ErrUnavailable, runtime.GOOS)
	}
}

// NewCommandWith builds a backend around explicit read/write command lines
func NewCommandWith(readCmd, writeCmd []string) *Command {
	return &Command{readCmd: readCmd, writeCmd: writeCmd}
}

// Read runs the paste tool and wraps its output in a snapshot
func (c *Command) Read() (*Snapshot, error) {
	cmd := exec.Command(c.readCmd[0], c.readCmd[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := runWithTimeout(cmd); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.readCmd[0], err)
	}

	text := strings.TrimRight(out.String(), "\n")
	return NewSnapshot(text, "", "", "", time.Now().Unix()), nil
}

// Write pipes the snapshot's plain text into the copy tool
func (c *Command) Write(s *Snapshot) error {
	cmd := exec.Command(c.writeCmd[0], c.writeCmd[1:]...)
	cmd.Stdin = strings.NewReader(s.Content)

	if err := runWithTimeout(cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.writeCmd[0], err)
	}
	return nil
}

func runWithTimeout(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(commandTimeout):
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("timed out after %s", commandTimeout)
	}
}
