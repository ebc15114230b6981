//go:build windows

package procmanager

import (
	"errors"
	"os/exec"
	"syscall"
)

// errNoSignalEquivalent is returned by terminateProcessGroup on platforms
// with no SIGTERM analogue; callers interpret it as "escalate immediately"
// rather than waiting out the grace window.
var errNoSignalEquivalent = errors.New("procmanager: no graceful termination signal on this platform")

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}

func terminateProcessGroup(pid int) error {
	return errNoSignalEquivalent
}

func forceKillProcessGroup(pid int) error {
	return errNoSignalEquivalent
}
