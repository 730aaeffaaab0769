package signal

import (
	"encoding/json"

	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog/log"
)

type commandPayload struct {
	Type   string            `json:"type"`
	Raised bool              `json:"raised"`
	ID     domain.UserID     `json:"id"`
	Tab    domain.SidebarTab `json:"tab"`
	Open   bool              `json:"open"`
	Modal  domain.Modal      `json:"modal"`
	Toast  domain.ToastID    `json:"toast"`
}

var commandTypes = map[string]bool{
	"start":            true,
	"force_start":      true,
	"stop":             true,
	"hand_ack":         true,
	"toggle_mute":      true,
	"toggle_hand":      true,
	"mute_participant": true,
	"sidebar_tab":      true,
	"sidebar_open":     true,
	"open_modal":       true,
	"close_modal":      true,
	"dismiss_toast":    true,
}

// handleCommand applies a room command to the caller's session. It reports
// false when typ is not a room command at all.
func (ctl *SignalWSController) handleCommand(
	sid core.SessionID,
	conn *WsSignalConn,
	typ string,
	data []byte,
) bool {
	if !commandTypes[typ] {
		return false
	}
	var p commandPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("type", typ).Msg("bad command payload")
		ctl.sendError(conn, "bad_payload")
		return true
	}
	sess, ok := ctl.Orch.Session(sid)
	if !ok {
		ctl.sendError(conn, "not_in_room")
		return true
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("type", typ).Msg("command")

	switch typ {
	case "start":
		sess.StartConversation()
	case "force_start":
		sess.ForceStartConversation()
	case "stop":
		sess.StopConversation()
	case "hand_ack":
		sess.HandleHandRaiseAcknowledgment(p.Raised)
	case "toggle_mute":
		sess.ToggleMute()
	case "toggle_hand":
		sess.ToggleHandRaise()
	case "mute_participant":
		sess.ToggleMuteParticipant(p.ID)
	case "sidebar_tab":
		if !validTab(p.Tab) {
			ctl.sendError(conn, "bad_payload")
			return true
		}
		sess.SetActiveSidebarTab(p.Tab)
	case "sidebar_open":
		sess.SetSidebarOpen(p.Open)
	case "open_modal":
		if !validModal(p.Modal) {
			ctl.sendError(conn, "bad_payload")
			return true
		}
		sess.OpenModal(p.Modal)
	case "close_modal":
		sess.CloseModal()
	case "dismiss_toast":
		sess.RemoveToast(p.Toast)
	}
	return true
}

func validTab(t domain.SidebarTab) bool {
	switch t {
	case domain.TabParticipants, domain.TabChat, domain.TabSettings:
		return true
	}
	return false
}

func validModal(m domain.Modal) bool {
	switch m {
	case domain.ModalInvite, domain.ModalSettings, domain.ModalLeave, domain.ModalProfile:
		return true
	}
	return false
}
