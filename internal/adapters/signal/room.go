package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/neonroom/internal/app"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}

	if p.Name != "" {
		if err := ctl.Orch.Registry.UpdateUsername(sid, p.Name); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("rename on join rejected")
		}
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", p.Room).Msg("join")
	sess, err := ctl.Orch.Join(ctx, sid, p.Room, newWsSpeech(conn), ctl.snapshotSink(sid, conn))
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join")
		ctl.sendError(conn, "load_failed")
		return
	}

	resp := struct {
		Type  string `json:"type"`
		Room  string `json:"room"`
		Found bool   `json:"found"`
	}{
		Type:  "joined",
		Room:  p.Room,
		Found: sess.Snapshot().Room != nil,
	}
	ctl.sendJSON(conn, resp)
}

// handleLeave runs the cleanup protocol; "left" is pushed once the grace
// pass finished and the client may navigate away.
func (ctl *SignalWSController) handleLeave(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	report := ctl.Orch.Leave(sid, func() {
		ctl.sendJSON(conn, map[string]any{
			"type": "left",
		})
	})
	if err := report.Err(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("leave cleanup incomplete")
	}
}

// snapshotSink pushes every published snapshot to conn. It runs under the
// session lock, so a kick is handed off to its own goroutine.
func (ctl *SignalWSController) snapshotSink(sid core.SessionID, conn *WsSignalConn) func(core.Snapshot) {
	return func(snap core.Snapshot) {
		b, err := json.Marshal(struct {
			Type  string        `json:"type"`
			State core.Snapshot `json:"state"`
		}{
			Type:  "snapshot",
			State: snap,
		})
		if err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("marshal snapshot")
			return
		}
		if err := conn.TrySend(b); err == nil {
			conn.dropped.Store(0)
			return
		}
		dropped := int(conn.dropped.Add(1))
		switch ctl.policy().OnBackPressure(dropped) {
		case app.KickMember:
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Int("dropped", dropped).Msg("kicking slow client")
			go ctl.kick(sid, conn)
		case app.DropSnapshot:
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Int("dropped", dropped).Msg("snapshot dropped")
		}
	}
}

func (ctl *SignalWSController) policy() app.Policy {
	if ctl.Orch.Policy == nil {
		return app.SimplePolicy{}
	}
	return ctl.Orch.Policy
}

func (ctl *SignalWSController) kick(sid core.SessionID, conn *WsSignalConn) {
	ctl.Orch.OnDisconnect(sid)
	conn.Close()
}
