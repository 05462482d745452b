//go:build windows

package runner

import "os/exec"

// setupProcessGroup keeps the default CommandContext behaviour on Windows,
// which kills the direct child only.
func setupProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup is a no-op on Windows; there is no group to signal.
func killProcessGroup(cmd *exec.Cmd) {}
