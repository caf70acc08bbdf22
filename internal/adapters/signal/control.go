package signal

import "time"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type      string `json:"type"`
		Timestamp int64  `json:"timestamp"`
	}{
		Type:      "pong",
		Timestamp: time.Now().UnixMilli(),
	}
	ctl.sendJSON(conn, resp)
}
