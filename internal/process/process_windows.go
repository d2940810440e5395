//go:build windows

package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// Isolate starts the command in a new process group.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= syscall.CREATE_NEW_PROCESS_GROUP
}

// KillGroup kills the process tree rooted at pid.
// /F = force kill, /T = terminate child processes.
func KillGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- fixed binary, numeric pid
}
