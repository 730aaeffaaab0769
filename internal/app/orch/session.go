package orch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/neonroom/internal/app/controls"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/app/sched"
	"github.com/dkeye/neonroom/internal/app/speech"
	"github.com/dkeye/neonroom/internal/app/toasts"
	"github.com/dkeye/neonroom/internal/app/turns"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrSessionClosed = errors.New("session closed")

type Config struct {
	Turns        turns.Config
	ToastTTL     time.Duration
	CleanupGrace time.Duration
}

func DefaultConfig() Config {
	return Config{
		Turns:        turns.DefaultConfig(),
		ToastTTL:     toasts.DefaultTTL,
		CleanupGrace: 300 * time.Millisecond,
	}
}

type subscriber struct {
	id int
	fn func(core.Snapshot)
}

// Session is one client's view of one room. Every method takes the
// session lock, so a control action and the turn change it causes are
// applied as a single update before subscribers see the next snapshot.
type Session struct {
	mu     sync.Mutex
	id     core.SessionID
	cfg    Config
	clock  core.Clock
	rooms  core.RoomProvider
	self   domain.User
	logger zerolog.Logger

	tasks  *sched.Tasks
	voice  *speech.Adapter
	turns  *turns.Coordinator
	toasts *toasts.Queue

	controls     controls.State
	room         *domain.Room
	participants []domain.User
	loading      bool
	loadSeq      uint64

	closed bool
	grace  core.Timer
	subs   []subscriber
	subSeq int
}

// NewSession wires a session; audio may be nil when no speech backend is attached.
func NewSession(id core.SessionID, self domain.User, cfg Config, clock core.Clock, provider core.RoomProvider, audio core.AudioEngine) *Session {
	s := &Session{
		id:       id,
		cfg:      cfg,
		clock:    clock,
		rooms:    provider,
		self:     self,
		controls: controls.Initial(),
		voice:    speech.New(audio),
		logger:   log.With().Str("module", "app.orch").Str("sid", string(id)).Logger(),
	}
	s.tasks = sched.New(clock, &s.mu)
	s.turns = turns.NewCoordinator(cfg.Turns, s.tasks, s.voice, nil)
	s.turns.OnChange(s.publishLocked)
	s.toasts = toasts.New(s.tasks, cfg.ToastTTL)
	s.toasts.OnExpire(func(domain.ToastID) { s.publishLocked() })
	return s
}

func (s *Session) ID() core.SessionID { return s.id }

// Load resolves the room. An unknown id leaves the room nil and is not an
// error; only provider failures such as a cancelled context are returned.
func (s *Session) Load(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.loadSeq++
	seq := s.loadSeq
	s.loading = true
	s.room, s.participants = nil, nil
	s.controls.MutedParticipants = nil
	s.turns.RosterLoaded(nil)
	s.publishLocked()
	s.mu.Unlock()

	room, users, err := s.rooms.Load(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.loadSeq {
		return nil
	}
	s.loading = false
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		s.logger.Info().Str("room_id", id).Msg("room not found")
		err = nil
	case err != nil:
		s.logger.Warn().Err(err).Str("room_id", id).Msg("load room")
		err = fmt.Errorf("load room %q: %w", id, err)
	default:
		s.room, s.participants = room, users
		s.turns.RosterLoaded(users)
		s.logger.Info().Str("room_id", string(room.ID)).Int("participants", len(users)).Msg("room loaded")
	}
	s.publishLocked()
	return err
}

// Subscribe registers fn for every published snapshot and returns the
// current one. fn runs under the session lock and must not call back into
// the session.
func (s *Session) Subscribe(fn func(core.Snapshot)) (core.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subSeq++
	id := s.subSeq
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return s.snapshotLocked(), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Pending returns the number of scheduled callbacks still armed.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Pending()
}

func (s *Session) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, sub := range s.subs {
		sub.fn(snap)
	}
}

func (s *Session) snapshotLocked() core.Snapshot {
	ts := s.turns.State()

	var active *int
	speaking := []domain.UserID{}
	if ts.HasSpeaker() && ts.Speaker < len(s.participants) {
		i := ts.Speaker
		active = &i
		speaking = append(speaking, s.participants[i].ID)
	}
	if s.controls.HandRaised && s.self.ID != "" {
		speaking = append(speaking, s.self.ID)
	}

	var room *domain.Room
	if s.room != nil {
		r := *s.room
		room = &r
	}

	return core.Snapshot{
		RoomView: core.RoomView{
			Room:         room,
			Participants: slices.Clone(s.participants),
			Loading:      s.loading,
		},
		SpeakerView: core.SpeakerView{
			Phase:                ts.Phase,
			ActiveSpeakerIndex:   active,
			SpeakingIDs:          speaking,
			Intensity:            ts.Intensity,
			IsConversationActive: ts.Active(),
			ShowStartPrompt:      ts.Phase == core.PhaseAwaitingStart && !s.loading,
		},
		ControlView: core.ControlView{
			Muted:               s.controls.Muted,
			HandRaised:          s.controls.HandRaised,
			MutedParticipantIDs: append([]domain.UserID{}, s.controls.MutedParticipants...),
			SidebarTab:          s.controls.SidebarTab,
			SidebarOpen:         s.controls.SidebarOpen,
			Modal:               s.controls.Modal,
		},
		Toasts: s.toasts.List(),
	}
}

func (s *Session) indexOf(id domain.UserID) int {
	return slices.IndexFunc(s.participants, func(u domain.User) bool { return u.ID == id })
}
