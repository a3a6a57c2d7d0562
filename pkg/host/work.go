package host

// dispatchWork is handed to the worker.Pump as its WorkFunc. It runs on
// the worker thread (never the audio thread) and forwards to the
// plugin's work extension.
func (h *Host) dispatchWork(req []byte, respond func([]byte) error) {
	if h.workExt == nil {
		return
	}
	if err := h.workExt.Work(req, respond); err != nil {
		h.logger.WithError(err).Warn("plugin work callback returned an error")
	}
}

// deliverResponse is handed to the worker.Pump as its ResponseFunc. It
// runs on the audio thread during Process, forwarding a delivered
// response to the plugin's work_response entry point. An error from the
// plugin is not logged here, since the audio thread never logs.
func (h *Host) deliverResponse(resp []byte) {
	if h.workExt == nil {
		return
	}
	_ = h.workExt.WorkResponse(resp)
}
