// Package speech wraps the process-wide speech backend behind calls that
// never panic and can be repeated safely.
package speech

import (
	"errors"
	"fmt"

	"github.com/dkeye/neonroom/internal/core"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// inert is queued after a cancel to unstick engines that keep the last
// utterance around.
var inert = core.Utterance{Text: "", Volume: 0}

type Adapter struct {
	engine core.AudioEngine
}

// New accepts a nil engine, which turns every call into a no-op.
func New(engine core.AudioEngine) *Adapter {
	return &Adapter{engine: engine}
}

func (a *Adapter) Say(u core.Utterance) error {
	if a.engine == nil {
		return nil
	}
	if u.Volume == 0 {
		u.Volume = 1
	}
	return guard("speak", func() error { return a.engine.Speak(u) })
}

// Hush cancels whatever is being spoken right now.
func (a *Adapter) Hush() error {
	if a.engine == nil {
		return nil
	}
	return guard("cancel", a.engine.Cancel)
}

// StopAll cancels playback, flushes the queue with an inert utterance and
// cancels again. Every pass runs even if an earlier one failed.
func (a *Adapter) StopAll() error {
	if a.engine == nil {
		return nil
	}
	err := errors.Join(
		guard("cancel", a.engine.Cancel),
		guard("reset", func() error { return a.engine.Speak(inert) }),
		guard("cancel", a.engine.Cancel),
	)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.speech").Msg("stop all")
	}
	return err
}

func (a *Adapter) Release() error {
	if a.engine == nil {
		return nil
	}
	return guard("release", a.engine.ReleaseContext)
}

func guard(op string, fn func() error) error {
	var err error
	if r := panics.Try(func() { err = fn() }); r != nil {
		return fmt.Errorf("%s: %w", op, r.AsError())
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
