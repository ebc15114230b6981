//go:build unix

package procmanager

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup makes cmd the leader of its own process group so a
// later stop/timeout kill can target the whole group instead of just the
// direct child.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(pid int, signal syscall.Signal) error {
	return syscall.Kill(-pid, signal)
}

func terminateProcessGroup(pid int) error {
	return killProcessGroup(pid, syscall.SIGTERM)
}

func forceKillProcessGroup(pid int) error {
	return killProcessGroup(pid, syscall.SIGKILL)
}
