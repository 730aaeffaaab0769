// Package clock provides the system clock and a manual fake for tests.
package clock

import (
	"time"

	"github.com/dkeye/neonroom/internal/core"
)

type system struct{}

// System returns a core.Clock backed by the runtime timers.
func System() core.Clock { return system{} }

func (system) Now() time.Time { return time.Now() }

func (system) AfterFunc(d time.Duration, f func()) core.Timer {
	return time.AfterFunc(d, f)
}
