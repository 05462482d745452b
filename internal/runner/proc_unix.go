//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup runs the child in its own process group and makes
// cancellation kill the whole group, so grandchildren holding the output
// pipes do not outlive the timeout.
func setupProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

// killProcessGroup kills whatever is left of the child's group after Wait.
// ESRCH (group already gone) is the common case and is ignored.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
