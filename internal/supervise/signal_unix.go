//go:build !windows

package supervise

import (
	"errors"
	"os/exec"
	"syscall"
)

const suspendSupported = true

// configureSysProcAttr puts the child in its own process group so signals
// reach the whole tree, not just the immediate child.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup signals the whole process group. A vanished group is not an
// error: the caller only cares that nothing is left running.
func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func suspendGroup(pid int) error { return signalGroup(pid, syscall.SIGSTOP) }

func resumeGroup(pid int) error { return signalGroup(pid, syscall.SIGCONT) }

// terminateGroup asks the group to exit. A stopped group is continued
// first so the termination signal can be delivered.
func terminateGroup(pid int) {
	_ = signalGroup(pid, syscall.SIGCONT)
	_ = signalGroup(pid, syscall.SIGTERM)
}

func killGroup(pid int) {
	_ = signalGroup(pid, syscall.SIGCONT)
	_ = signalGroup(pid, syscall.SIGKILL)
}

// exitCode reports the process exit status. Signal deaths are reported as
// the negated signal number, matching the labels in the exit tables.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	state := cmd.ProcessState
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}
