package orch

import (
	"github.com/dkeye/neonroom/internal/app/controls"
	"github.com/dkeye/neonroom/internal/domain"
)

// StartConversation starts from the start prompt. It is a no-op without
// participants, while already active or once the prompt is gone.
func (s *Session) StartConversation() bool {
	return s.conversation(func() bool { return s.turns.Start() })
}

// ForceStartConversation skips the prompt guard. Calling it while a
// conversation is active does nothing.
func (s *Session) ForceStartConversation() bool {
	return s.conversation(func() bool { return s.turns.ForceStart() })
}

func (s *Session) conversation(start func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !start() {
		return false
	}
	s.toasts.Add("Conversation started", domain.SeveritySuccess)
	s.logger.Info().Msg("conversation started")
	s.publishLocked()
	return true
}

// StopConversation is safe from any phase, including before a room loaded.
func (s *Session) StopConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	wasActive := s.turns.State().Active()
	s.turns.Stop()
	if wasActive {
		s.toasts.Add("Conversation ended", domain.SeverityWarning)
		s.logger.Info().Msg("conversation stopped")
	}
	s.publishLocked()
}

// HandleHandRaiseAcknowledgment forwards a hand state to the turn
// coordinator. It never starts a conversation.
func (s *Session) HandleHandRaiseAcknowledgment(raised bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.turns.HandRaise(raised) {
		return false
	}
	s.publishLocked()
	return true
}

func (s *Session) ToggleMute()      { s.control(controls.ToggleMute{}) }
func (s *Session) ToggleHandRaise() { s.control(controls.ToggleHandRaise{}) }

func (s *Session) ToggleMuteParticipant(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := ""
	if i := s.indexOf(id); i >= 0 {
		name = s.participants[i].Username
	}
	s.controlLocked(controls.ToggleMuteParticipant{ID: id, Name: name})
}

func (s *Session) SetActiveSidebarTab(tab domain.SidebarTab) {
	s.control(controls.SetSidebarTab{Tab: tab})
}

func (s *Session) SetSidebarOpen(open bool) { s.control(controls.SetSidebarOpen{Open: open}) }

func (s *Session) OpenModal(m domain.Modal) { s.control(controls.OpenModal{Modal: m}) }

func (s *Session) CloseModal() { s.control(controls.CloseModal{}) }

func (s *Session) control(a controls.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controlLocked(a)
}

func (s *Session) controlLocked(a controls.Action) {
	if s.closed {
		return
	}
	next, notices := controls.Reduce(s.controls, a)
	s.controls = next
	for _, n := range notices {
		switch n := n.(type) {
		case controls.Toast:
			s.toasts.Add(n.Message, n.Severity)
		case controls.HandRaiseChanged:
			s.turns.HandRaise(n.Raised)
		case controls.ParticipantMuted:
			if i := s.indexOf(n.ID); i >= 0 {
				s.turns.SetMuted(i, n.Muted)
			}
		}
	}
	s.publishLocked()
}

func (s *Session) AddToast(message string, sev domain.Severity) domain.ToastID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.toasts.Add(message, sev)
	s.publishLocked()
	return id
}

// RemoveToast dismisses a toast; unknown ids are ignored.
func (s *Session) RemoveToast(id domain.ToastID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.toasts.Remove(id) {
		return false
	}
	s.publishLocked()
	return true
}
