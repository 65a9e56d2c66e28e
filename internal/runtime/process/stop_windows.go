//go:build windows

package process

// kill terminates the direct child. Windows offers no process-group signal
// without job objects, so grandchildren are not covered.
func (h *processHandle) kill() {
	if h.cmd.Process == nil {
		return
	}
	_ = h.cmd.Process.Kill()
}
