package commands

// PassWaiters returns how many callers wait on the running pass.
func (h *SyncDMSCommandHandler) PassWaiters() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil {
		return 0
	}
	return h.current.waiters
}
