package domain

// SidebarTab selects the panel shown next to the stage.
type SidebarTab string

const (
	TabParticipants SidebarTab = "participants"
	TabChat         SidebarTab = "chat"
	TabSettings     SidebarTab = "settings"
)

// Modal is the dialog currently open over the room; empty means none.
type Modal string

const (
	ModalNone     Modal = ""
	ModalInvite   Modal = "invite"
	ModalSettings Modal = "settings"
	ModalLeave    Modal = "leave"
	ModalProfile  Modal = "profile"
)
