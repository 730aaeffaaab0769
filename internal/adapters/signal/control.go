package signal

import "time"

// handlePing answers the client heartbeat with the server time so the UI
// can estimate its offset for toast timestamps.
func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, struct {
		Type       string `json:"type"`
		ServerTime int64  `json:"server_time"`
	}{
		Type:       "pong",
		ServerTime: ctl.now().UnixMilli(),
	})
}

func (ctl *SignalWSController) now() time.Time {
	if ctl.Orch != nil && ctl.Orch.Clock != nil {
		return ctl.Orch.Clock.Now()
	}
	return time.Now()
}
