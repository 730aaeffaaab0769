package core

import "github.com/dkeye/neonroom/internal/domain"

// Phase is the conversation state of a room session.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingStart Phase = "awaiting_start"
	PhaseActive        Phase = "active"
	PhaseStopping      Phase = "stopping"
)

// RoomView is what the room data provider resolved.
// Room is nil when the identifier did not resolve.
type RoomView struct {
	Room         *domain.Room  `json:"room"`
	Participants []domain.User `json:"participants"`
	Loading      bool          `json:"loading"`
}

type SpeakerView struct {
	Phase                Phase           `json:"phase"`
	ActiveSpeakerIndex   *int            `json:"active_speaker_index"`
	SpeakingIDs          []domain.UserID `json:"speaking_ids"`
	Intensity            float64         `json:"intensity"`
	IsConversationActive bool            `json:"is_conversation_active"`
	ShowStartPrompt      bool            `json:"show_start_prompt"`
}

type ControlView struct {
	Muted               bool              `json:"muted"`
	HandRaised          bool              `json:"hand_raised"`
	MutedParticipantIDs []domain.UserID   `json:"muted_participant_ids"`
	SidebarTab          domain.SidebarTab `json:"sidebar_tab"`
	SidebarOpen         bool              `json:"sidebar_open"`
	Modal               domain.Modal      `json:"modal"`
}

// Snapshot is the read-only state a room session publishes to the UI.
type Snapshot struct {
	RoomView
	SpeakerView
	ControlView
	Toasts []domain.Toast `json:"toasts"`
}
