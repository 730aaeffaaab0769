package core

import (
	"context"
	"time"

	"github.com/dkeye/neonroom/internal/domain"
)

// SessionID identifies one connected client; it is the client token cookie.
type SessionID string

// Timer is a handle to a callback scheduled on a Clock.
type Timer interface {
	// Stop reports whether the call prevented the callback from firing.
	Stop() bool
}

// Clock is the scheduler every timed behaviour goes through.
// Production code uses the system clock; tests inject a fake one.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Utterance is one line handed to the speech backend.
// An empty Text with zero Volume is the inert utterance used to flush queues.
type Utterance struct {
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
	Volume  float64 `json:"volume"`
}

// AudioEngine abstracts the process-wide speech/audio backend.
// Implementations may fail or panic; callers contain both.
type AudioEngine interface {
	Speak(Utterance) error
	Cancel() error
	// ReleaseContext frees any held audio-context resources.
	ReleaseContext() error
}

// RoomProvider resolves room identifiers to room metadata and roster.
type RoomProvider interface {
	Load(ctx context.Context, id string) (*domain.Room, []domain.User, error)
	List() []domain.Room
}

// Frame is one encoded message pushed to a client.
type Frame []byte

// SignalConnection is the client's control channel. TrySend never blocks;
// the adapter that created the connection owns Close.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
