// Package controls holds the local user's transient room controls.
package controls

import (
	"fmt"
	"slices"

	"github.com/dkeye/neonroom/internal/domain"
)

type State struct {
	Muted             bool
	HandRaised        bool
	MutedParticipants []domain.UserID
	SidebarTab        domain.SidebarTab
	SidebarOpen       bool
	Modal             domain.Modal
}

func Initial() State {
	return State{SidebarTab: domain.TabParticipants, SidebarOpen: true}
}

type Action interface{ isAction() }

type (
	ToggleMute      struct{}
	ToggleHandRaise struct{}
	// ToggleMuteParticipant carries the display name for the toast text.
	ToggleMuteParticipant struct {
		ID   domain.UserID
		Name string
	}
	SetSidebarTab  struct{ Tab domain.SidebarTab }
	SetSidebarOpen struct{ Open bool }
	OpenModal      struct{ Modal domain.Modal }
	CloseModal     struct{}
)

func (ToggleMute) isAction()            {}
func (ToggleHandRaise) isAction()       {}
func (ToggleMuteParticipant) isAction() {}
func (SetSidebarTab) isAction()         {}
func (SetSidebarOpen) isAction()        {}
func (OpenModal) isAction()             {}
func (CloseModal) isAction()            {}

// Notice is a consequence of an action the session forwards elsewhere.
type Notice interface{ isNotice() }

type (
	Toast struct {
		Message  string
		Severity domain.Severity
	}
	HandRaiseChanged struct{ Raised bool }
	ParticipantMuted struct {
		ID    domain.UserID
		Muted bool
	}
)

func (Toast) isNotice()            {}
func (HandRaiseChanged) isNotice() {}
func (ParticipantMuted) isNotice() {}

// Reduce never rejects an action; every toggle flips its flag.
func Reduce(s State, a Action) (State, []Notice) {
	switch a := a.(type) {
	case ToggleMute:
		s.Muted = !s.Muted
		if s.Muted {
			return s, []Notice{Toast{"Microphone muted", domain.SeverityWarning}}
		}
		return s, []Notice{Toast{"Microphone unmuted", domain.SeveritySuccess}}

	case ToggleHandRaise:
		s.HandRaised = !s.HandRaised
		out := []Notice{HandRaiseChanged{Raised: s.HandRaised}}
		if s.HandRaised {
			out = append(out, Toast{"Hand raised! The host will call on you soon", domain.SeveritySuccess})
		}
		return s, out

	case ToggleMuteParticipant:
		name := a.Name
		if name == "" {
			name = string(a.ID)
		}
		i, found := slices.BinarySearch(s.MutedParticipants, a.ID)
		if found {
			s.MutedParticipants = slices.Delete(slices.Clone(s.MutedParticipants), i, i+1)
			return s, []Notice{
				ParticipantMuted{ID: a.ID, Muted: false},
				Toast{fmt.Sprintf("%s unmuted", name), domain.SeveritySuccess},
			}
		}
		s.MutedParticipants = slices.Insert(slices.Clone(s.MutedParticipants), i, a.ID)
		return s, []Notice{
			ParticipantMuted{ID: a.ID, Muted: true},
			Toast{fmt.Sprintf("%s muted", name), domain.SeverityWarning},
		}

	case SetSidebarTab:
		s.SidebarTab = a.Tab
		s.SidebarOpen = true
	case SetSidebarOpen:
		s.SidebarOpen = a.Open
	case OpenModal:
		s.Modal = a.Modal
	case CloseModal:
		s.Modal = domain.ModalNone
	}
	return s, nil
}
