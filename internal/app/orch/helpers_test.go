package orch

import (
	"errors"
	"testing"
	"time"

	"github.com/dkeye/neonroom/internal/app/clock"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
)

type stubEngine struct {
	speaks      int
	inert       int
	cancels     int
	releases    int
	failCancel  int // cancel call number that panics
	releaseErr  error
	lastSpeaker string
}

func (s *stubEngine) Speak(u core.Utterance) error {
	if u.Text == "" {
		s.inert++
		return nil
	}
	s.speaks++
	s.lastSpeaker = u.Speaker
	return nil
}

func (s *stubEngine) Cancel() error {
	s.cancels++
	if s.cancels == s.failCancel {
		panic(errors.New("speechSynthesis.cancel is not a function"))
	}
	return nil
}

func (s *stubEngine) ReleaseContext() error {
	s.releases++
	return s.releaseErr
}

type recorder struct {
	snaps []core.Snapshot
}

func (r *recorder) record(s core.Snapshot) { r.snaps = append(r.snaps, s) }

func (r *recorder) last() core.Snapshot { return r.snaps[len(r.snaps)-1] }

var self = domain.User{ID: "me", Username: "Neo"}

func newTestSession(t *testing.T, eng core.AudioEngine) (*Session, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Unix(1_700_000_000, 0))
	return NewSession("sid-test", self, DefaultConfig(), fc, rooms.Default(), eng), fc
}
