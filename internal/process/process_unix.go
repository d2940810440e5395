//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate puts the command in its own process group so converters that
// fork helpers (soffice.bin, oosplash) can be killed as a unit.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillGroup sends SIGKILL to the process group led by pid.
func KillGroup(pid int) {
	// Best-effort; the caller still waits on the leader.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
