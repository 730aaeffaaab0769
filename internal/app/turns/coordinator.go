package turns

import (
	"math/rand/v2"
	"time"

	"github.com/dkeye/neonroom/internal/app/sched"
	"github.com/dkeye/neonroom/internal/app/speech"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog/log"
)

type Config struct {
	StartDelay      time.Duration
	TurnDuration    time.Duration
	TurnGap         time.Duration
	HandAckDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		StartDelay:      800 * time.Millisecond,
		TurnDuration:    6 * time.Second,
		TurnGap:         1500 * time.Millisecond,
		HandAckDuration: 3 * time.Second,
	}
}

// Coordinator runs the side effects of Reduce: at most one turn timer is
// pending at any time and speech follows the floor.
// Like sched.Tasks it expects the owner's lock to be held on every call.
type Coordinator struct {
	cfg      Config
	tasks    *sched.Tasks
	voice    *speech.Adapter
	script   Script
	names    []string
	state    State
	timer    sched.Handle
	armed    bool
	pulse    func() float64
	onChange func()
}

func NewCoordinator(cfg Config, tasks *sched.Tasks, voice *speech.Adapter, script Script) *Coordinator {
	if len(script) == 0 {
		script = DefaultScript
	}
	return &Coordinator{
		cfg:    cfg,
		tasks:  tasks,
		voice:  voice,
		script: script,
		state:  Initial(),
		pulse:  func() float64 { return 0.6 + rand.Float64()*0.4 },
	}
}

// OnChange registers a hook called after timer-driven transitions.
func (c *Coordinator) OnChange(fn func()) { c.onChange = fn }

// SetPulse overrides the per-turn intensity source.
func (c *Coordinator) SetPulse(fn func() float64) { c.pulse = fn }

func (c *Coordinator) State() State { return c.state }

func (c *Coordinator) RosterLoaded(users []domain.User) {
	host := NoSpeaker
	c.names = make([]string, len(users))
	for i, u := range users {
		c.names[i] = u.Username
		if u.IsHost && host == NoSpeaker {
			host = i
		}
	}
	c.dispatch(RosterLoaded{Size: len(users), Host: host})
}

// Start begins the conversation from the start prompt. It reports whether
// a transition happened.
func (c *Coordinator) Start() bool { return c.dispatch(Start{}) }

// ForceStart skips the prompt guard; it is a no-op while already active.
func (c *Coordinator) ForceStart() bool { return c.dispatch(Start{Force: true}) }

// Stop is valid from any phase and always ends with no timer pending.
func (c *Coordinator) Stop() {
	c.state.Phase = core.PhaseStopping
	c.dispatch(Stop{})
}

// HandRaise is ignored unless a conversation is active.
func (c *Coordinator) HandRaise(raised bool) bool {
	return c.dispatch(HandRaise{Raised: raised, Intensity: c.pulse()})
}

func (c *Coordinator) SetMuted(index int, muted bool) bool {
	return c.dispatch(Muted{Index: index, Muted: muted})
}

func (c *Coordinator) dispatch(ev Event) bool {
	prev := c.state
	next, eff := Reduce(c.state, ev)
	c.state = next
	c.run(eff)
	changed := prev.Phase != next.Phase || prev.Speaker != next.Speaker ||
		prev.HandRaised != next.HandRaised || prev.Turn != next.Turn
	if changed {
		log.Debug().
			Str("module", "app.turns").
			Str("phase", string(next.Phase)).
			Int("speaker", next.Speaker).
			Uint64("turn", next.Turn).
			Msgf("%T", ev)
	}
	return changed
}

func (c *Coordinator) run(eff Effect) {
	if eff.Cancel || eff.Next != NextNone {
		c.disarm()
	}
	if eff.Silence {
		if err := c.voice.Hush(); err != nil {
			log.Warn().Err(err).Str("module", "app.turns").Msg("hush speaker")
		}
	}
	if eff.Speak {
		c.speak()
	}
	switch eff.Next {
	case NextStart:
		c.arm(c.cfg.StartDelay, func() { c.fromTimer(Advance{Intensity: c.pulse()}) })
	case NextAdvance:
		c.arm(c.cfg.TurnGap, func() { c.fromTimer(Advance{Intensity: c.pulse()}) })
	case NextEndTurn:
		c.arm(c.cfg.TurnDuration, func() { c.fromTimer(EndTurn{}) })
	case NextAckEnd:
		c.arm(c.cfg.HandAckDuration, func() { c.fromTimer(EndTurn{}) })
	}
}

func (c *Coordinator) fromTimer(ev Event) {
	c.armed = false
	if c.dispatch(ev) && c.onChange != nil {
		c.onChange()
	}
}

func (c *Coordinator) arm(d time.Duration, fn func()) {
	c.timer = c.tasks.After(d, fn)
	c.armed = true
}

func (c *Coordinator) disarm() {
	if c.armed {
		c.tasks.Cancel(c.timer)
		c.armed = false
	}
}

func (c *Coordinator) speak() {
	i := c.state.Speaker
	if i < 0 || i >= len(c.names) {
		return
	}
	u := core.Utterance{
		Speaker: c.names[i],
		Text:    c.script.Line(c.state.Turn, c.state.HandRaised),
		Volume:  c.state.Intensity,
	}
	if err := c.voice.Say(u); err != nil {
		log.Warn().Err(err).Str("module", "app.turns").Str("speaker", u.Speaker).Msg("speak")
	}
}
