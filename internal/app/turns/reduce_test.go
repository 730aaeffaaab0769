package turns

import (
	"testing"

	"github.com/dkeye/neonroom/internal/core"
	"github.com/stretchr/testify/assert"
)

func loaded(size, host int) State {
	s, _ := Reduce(Initial(), RosterLoaded{Size: size, Host: host})
	return s
}

func active(size, host int) State {
	s, _ := Reduce(loaded(size, host), Start{})
	return s
}

func TestRosterLoaded(t *testing.T) {
	s := loaded(3, 0)
	assert.Equal(t, core.PhaseAwaitingStart, s.Phase)
	assert.Equal(t, 0, s.Host)
	assert.Len(t, s.Muted, 3)

	empty := loaded(0, NoSpeaker)
	assert.Equal(t, core.PhaseIdle, empty.Phase)
}

func TestStartGuards(t *testing.T) {
	tcases := []struct {
		name  string
		from  State
		ev    Start
		phase core.Phase
		next  Next
	}{
		{name: "start from prompt", from: loaded(3, 0), ev: Start{}, phase: core.PhaseActive, next: NextStart},
		{name: "force from prompt", from: loaded(3, 0), ev: Start{Force: true}, phase: core.PhaseActive, next: NextStart},
		{name: "start from idle is guarded", from: stopped(loaded(3, 0)), ev: Start{}, phase: core.PhaseIdle, next: NextNone},
		{name: "force from idle", from: stopped(loaded(3, 0)), ev: Start{Force: true}, phase: core.PhaseActive, next: NextStart},
		{name: "empty roster", from: loaded(0, NoSpeaker), ev: Start{Force: true}, phase: core.PhaseIdle, next: NextNone},
		{name: "force while active", from: active(3, 0), ev: Start{Force: true}, phase: core.PhaseActive, next: NextNone},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			s, eff := Reduce(tc.from, tc.ev)
			assert.Equal(t, tc.phase, s.Phase)
			assert.Equal(t, tc.next, eff.Next)
		})
	}
}

func stopped(s State) State {
	s, _ = Reduce(s, Stop{})
	return s
}

func TestStopFromAnyPhase(t *testing.T) {
	for _, from := range []State{Initial(), loaded(2, 0), active(2, 0)} {
		s, eff := Reduce(from, Stop{})
		assert.Equal(t, core.PhaseIdle, s.Phase)
		assert.Equal(t, NoSpeaker, s.Speaker)
		assert.True(t, eff.Cancel)
		assert.Equal(t, NextNone, eff.Next)
	}
}

func TestAdvanceRoundRobinSkipsMuted(t *testing.T) {
	s := active(3, 0)
	s, _ = Reduce(s, Muted{Index: 1, Muted: true})

	var order []int
	for range 4 {
		var eff Effect
		s, eff = Reduce(s, Advance{Intensity: 0.8})
		assert.True(t, eff.Speak)
		assert.Equal(t, NextEndTurn, eff.Next)
		order = append(order, s.Speaker)
		s, _ = Reduce(s, EndTurn{})
	}
	assert.Equal(t, []int{0, 2, 0, 2}, order)
}

func TestAdvanceAllMutedRetries(t *testing.T) {
	s := active(1, 0)
	s, _ = Reduce(s, Muted{Index: 0, Muted: true})
	s, eff := Reduce(s, Advance{})
	assert.Equal(t, NoSpeaker, s.Speaker)
	assert.Equal(t, NextAdvance, eff.Next)
}

func TestHandRaiseIgnoredUnlessActive(t *testing.T) {
	for _, from := range []State{Initial(), loaded(3, 0), stopped(active(3, 0))} {
		s, eff := Reduce(from, HandRaise{Raised: true})
		assert.Equal(t, from.Phase, s.Phase)
		assert.False(t, s.HandRaised)
		assert.Equal(t, Effect{}, eff)
	}
}

func TestHandRaiseHostAcknowledges(t *testing.T) {
	s := active(3, 0)
	s, _ = Reduce(s, Advance{})
	s, _ = Reduce(s, EndTurn{})
	s, _ = Reduce(s, Advance{})
	assert.Equal(t, 1, s.Speaker)

	s, eff := Reduce(s, HandRaise{Raised: true, Intensity: 0.9})
	assert.True(t, s.HandRaised)
	assert.Equal(t, 0, s.Speaker, "host takes the floor to acknowledge")
	assert.True(t, eff.Silence)
	assert.True(t, eff.Speak)
	assert.Equal(t, NextAckEnd, eff.Next)

	s, eff = Reduce(s, EndTurn{})
	assert.Equal(t, NoSpeaker, s.Speaker)
	assert.Equal(t, NextNone, eff.Next, "rotation pauses while the hand is up")

	s, eff = Reduce(s, Advance{})
	assert.Equal(t, NoSpeaker, s.Speaker)
	assert.Equal(t, Effect{}, eff)

	s, eff = Reduce(s, HandRaise{Raised: false})
	assert.False(t, s.HandRaised)
	assert.Equal(t, NextAdvance, eff.Next)
}

func TestHandRaiseWithoutHost(t *testing.T) {
	s := active(2, NoSpeaker)
	s, eff := Reduce(s, HandRaise{Raised: true})
	assert.True(t, s.HandRaised)
	assert.Equal(t, NoSpeaker, s.Speaker)
	assert.False(t, eff.Speak)
	assert.True(t, eff.Cancel)
}

func TestMuteActiveSpeakerClearsTurn(t *testing.T) {
	s := active(3, 0)
	s, _ = Reduce(s, Advance{})
	s, _ = Reduce(s, EndTurn{})
	s, _ = Reduce(s, Advance{})
	assert.Equal(t, 1, s.Speaker)

	s, eff := Reduce(s, Muted{Index: 1, Muted: true})
	assert.Equal(t, NoSpeaker, s.Speaker)
	assert.Equal(t, core.PhaseActive, s.Phase)
	assert.True(t, eff.Silence)
	assert.Equal(t, NextAdvance, eff.Next)

	s, _ = Reduce(s, Advance{})
	assert.Equal(t, 2, s.Speaker)
}

func TestMuteOtherParticipantKeepsTurn(t *testing.T) {
	s := active(3, 0)
	s, _ = Reduce(s, Advance{})
	before := s

	s, eff := Reduce(s, Muted{Index: 2, Muted: true})
	assert.Equal(t, before.Speaker, s.Speaker)
	assert.Equal(t, Effect{}, eff)
	assert.False(t, before.Muted[2], "reduce does not alias the muted slice")
}

func TestMutedOutOfRange(t *testing.T) {
	s := active(2, 0)
	n, eff := Reduce(s, Muted{Index: 5, Muted: true})
	assert.Equal(t, s, n)
	assert.Equal(t, Effect{}, eff)
}
