// Package turns decides which participant holds the floor.
package turns

import (
	"slices"

	"github.com/dkeye/neonroom/internal/core"
)

// NoSpeaker marks a state without an active speaker.
const NoSpeaker = -1

type State struct {
	Phase      core.Phase
	Speaker    int
	Last       int
	Intensity  float64
	Turn       uint64
	HandRaised bool
	Host       int
	Muted      []bool
}

func Initial() State {
	return State{Phase: core.PhaseIdle, Speaker: NoSpeaker, Last: NoSpeaker, Host: NoSpeaker}
}

func (s State) Active() bool { return s.Phase == core.PhaseActive }

func (s State) HasSpeaker() bool { return s.Speaker != NoSpeaker }

// Next names the turn timer an event asks to arm.
type Next int

const (
	NextNone Next = iota
	NextStart
	NextAdvance
	NextEndTurn
	NextAckEnd
)

// Effect lists the side effects the coordinator runs after a transition.
type Effect struct {
	Cancel  bool
	Next    Next
	Speak   bool
	Silence bool
}

type Event interface{ isEvent() }

type (
	RosterLoaded struct {
		Size int
		Host int
	}
	Start struct{ Force bool }
	Stop  struct{}
	// Advance hands the floor to the next eligible participant.
	Advance   struct{ Intensity float64 }
	EndTurn   struct{}
	HandRaise struct {
		Raised    bool
		Intensity float64
	}
	Muted struct {
		Index int
		Muted bool
	}
)

func (RosterLoaded) isEvent() {}
func (Start) isEvent()        {}
func (Stop) isEvent()         {}
func (Advance) isEvent()      {}
func (EndTurn) isEvent()      {}
func (HandRaise) isEvent()    {}
func (Muted) isEvent()        {}

// Reduce is the pure transition function. Events that do not apply to the
// current phase return the state unchanged and a zero Effect.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case RosterLoaded:
		speaking := s.HasSpeaker()
		n := Initial()
		n.Muted = make([]bool, max(e.Size, 0))
		if e.Host >= 0 && e.Host < e.Size {
			n.Host = e.Host
		}
		if e.Size > 0 {
			n.Phase = core.PhaseAwaitingStart
		}
		return n, Effect{Cancel: true, Silence: speaking}

	case Start:
		if len(s.Muted) == 0 || s.Active() {
			return s, Effect{}
		}
		if !e.Force && s.Phase != core.PhaseAwaitingStart {
			return s, Effect{}
		}
		s.Phase = core.PhaseActive
		s.Speaker = NoSpeaker
		s.HandRaised = false
		return s, Effect{Cancel: true, Next: NextStart}

	case Stop:
		speaking := s.HasSpeaker()
		s.Phase = core.PhaseIdle
		s.Speaker = NoSpeaker
		s.HandRaised = false
		s.Intensity = 0
		return s, Effect{Cancel: true, Silence: speaking}

	case Advance:
		if !s.Active() || s.HandRaised {
			return s, Effect{}
		}
		i := s.nextEligible()
		if i == NoSpeaker {
			s.Speaker = NoSpeaker
			return s, Effect{Next: NextAdvance}
		}
		s.Speaker, s.Last = i, i
		s.Intensity = e.Intensity
		s.Turn++
		return s, Effect{Speak: true, Next: NextEndTurn}

	case EndTurn:
		if !s.Active() {
			return s, Effect{}
		}
		s.Speaker = NoSpeaker
		s.Intensity = 0
		if s.HandRaised {
			return s, Effect{}
		}
		return s, Effect{Next: NextAdvance}

	case HandRaise:
		if !s.Active() || s.HandRaised == e.Raised {
			return s, Effect{}
		}
		s.HandRaised = e.Raised
		if !e.Raised {
			if s.HasSpeaker() {
				return s, Effect{}
			}
			return s, Effect{Next: NextAdvance}
		}
		eff := Effect{Cancel: true, Silence: s.HasSpeaker()}
		if s.Host != NoSpeaker && !s.Muted[s.Host] {
			s.Speaker = s.Host
			s.Intensity = e.Intensity
			s.Turn++
			eff.Speak = true
			eff.Next = NextAckEnd
			return s, eff
		}
		s.Speaker = NoSpeaker
		s.Intensity = 0
		return s, eff

	case Muted:
		if e.Index < 0 || e.Index >= len(s.Muted) {
			return s, Effect{}
		}
		s.Muted = slices.Clone(s.Muted)
		s.Muted[e.Index] = e.Muted
		if !e.Muted || !s.Active() || s.Speaker != e.Index {
			return s, Effect{}
		}
		s.Speaker = NoSpeaker
		s.Intensity = 0
		eff := Effect{Cancel: true, Silence: true}
		if !s.HandRaised {
			eff.Next = NextAdvance
		}
		return s, eff
	}
	return s, Effect{}
}

// nextEligible walks the roster round-robin from the last speaker,
// skipping muted participants.
func (s State) nextEligible() int {
	n := len(s.Muted)
	for step := 1; step <= n; step++ {
		i := (s.Last + step) % n
		if !s.Muted[i] {
			return i
		}
	}
	return NoSpeaker
}
