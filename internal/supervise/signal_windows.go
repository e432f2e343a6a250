//go:build windows

package supervise

import (
	"os"
	"os/exec"

	"github.com/ladrtools/proverd/internal/run"
)

const suspendSupported = false

func configureSysProcAttr(cmd *exec.Cmd) {}

func suspendGroup(pid int) error { return run.ErrUnsupported }

func resumeGroup(pid int) error { return run.ErrUnsupported }

// terminateGroup kills the process outright; Windows has no graceful
// termination signal for console children started this way.
func terminateGroup(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		_ = p.Kill()
	}
}

func killGroup(pid int) { terminateGroup(pid) }

func exitCode(cmd *exec.Cmd, waitErr error) int {
	state := cmd.ProcessState
	if state == nil {
		return -1
	}
	return state.ExitCode()
}
