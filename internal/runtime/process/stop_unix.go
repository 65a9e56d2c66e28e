//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// kill delivers SIGKILL to the child's process group so watcher tools that
// fork helpers (the tailwind CLI does) go down with their parent. ESRCH means
// the group is already gone, which is fine.
func (h *processHandle) kill() {
	if h.cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-h.cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		_ = h.cmd.Process.Kill()
	}
}
