package orch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
)

type step struct {
	name string
	run  func() error
}

// CleanupReport lists the teardown steps that ran and the ones that failed.
type CleanupReport struct {
	Ran    []string
	Failed map[string]error
}

func (r CleanupReport) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, name := range r.Ran {
		if err, ok := r.Failed[name]; ok {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// runSteps executes every step in order. A step that returns an error or
// panics is logged and recorded; the next step runs regardless.
func runSteps(logger zerolog.Logger, steps []step) CleanupReport {
	rep := CleanupReport{Failed: make(map[string]error)}
	for _, st := range steps {
		var err error
		if r := panics.Try(func() { err = st.run() }); r != nil {
			err = r.AsError()
		}
		rep.Ran = append(rep.Ran, st.name)
		if err != nil {
			rep.Failed[st.name] = err
			logger.Warn().Err(err).Str("step", st.name).Msg("cleanup step failed")
		}
	}
	return rep
}

// Leave tears the session down: stop the conversation, silence and reset
// the speech backend, release audio, drop every pending timer, then run a
// second speech cancellation after the grace delay and call onDone.
// Leave never fails and is a no-op on a closed session.
func (s *Session) Leave(reason string, onDone func()) CleanupReport {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return CleanupReport{Failed: map[string]error{}}
	}
	s.closed = true
	logger := s.logger.With().Str("reason", reason).Logger()

	rep := runSteps(logger, []step{
		{"stop_conversation", func() error {
			s.turns.Stop()
			return nil
		}},
		{"stop_speech", s.voice.StopAll},
		{"release_audio", s.voice.Release},
		{"cancel_timers", func() error {
			s.toasts.Clear()
			if n := s.tasks.CancelAll(); n > 0 {
				logger.Debug().Int("timers", n).Msg("cancelled pending timers")
			}
			return nil
		}},
		{"schedule_second_pass", func() error {
			s.grace = s.clock.AfterFunc(s.cfg.CleanupGrace, func() { s.secondPass(logger, onDone) })
			return nil
		}},
	})

	s.publishLocked()
	s.subs = nil
	s.mu.Unlock()

	logger.Info().Int("failed", len(rep.Failed)).Msg("left room")
	return rep
}

// Close satisfies app.Closer for the registry.
func (s *Session) Close(reason string) { s.Leave(reason, nil) }

// Closed reports whether Leave already ran.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) secondPass(logger zerolog.Logger, onDone func()) {
	s.mu.Lock()
	rep := runSteps(logger, []step{{"second_pass", s.voice.StopAll}})
	s.grace = nil
	s.mu.Unlock()

	if onDone != nil {
		runSteps(logger, []step{{"on_done", func() error {
			onDone()
			return nil
		}}})
	}
	logger.Debug().Int("failed", len(rep.Failed)).Msg("second speech pass done")
}
