package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/dkeye/neonroom/internal/app/clock"
	"github.com/stretchr/testify/assert"
)

func newTasks() (*Tasks, *clock.Fake, *sync.Mutex) {
	fc := clock.NewFake(time.Unix(0, 0))
	mu := &sync.Mutex{}
	return New(fc, mu), fc, mu
}

func TestAfterFires(t *testing.T) {
	tasks, fc, mu := newTasks()
	count := 0

	mu.Lock()
	tasks.After(time.Second, func() { count++ })
	assert.Equal(t, 1, tasks.Pending())
	mu.Unlock()

	fc.Advance(time.Second)
	assert.Equal(t, 1, count)

	mu.Lock()
	assert.Zero(t, tasks.Pending())
	mu.Unlock()
}

func TestCancel(t *testing.T) {
	tasks, fc, mu := newTasks()
	count := 0

	mu.Lock()
	h := tasks.After(time.Second, func() { count++ })
	assert.True(t, tasks.Cancel(h))
	assert.False(t, tasks.Cancel(h))
	mu.Unlock()

	fc.Advance(time.Minute)
	assert.Zero(t, count)
}

func TestCancelAllLeavesNothingToFire(t *testing.T) {
	tasks, fc, mu := newTasks()
	count := 0

	mu.Lock()
	for i := 1; i <= 5; i++ {
		tasks.After(time.Duration(i)*time.Second, func() { count++ })
	}
	assert.Equal(t, 5, tasks.CancelAll())
	assert.Zero(t, tasks.Pending())
	mu.Unlock()

	fc.Advance(time.Hour)
	assert.Zero(t, count)
	assert.Zero(t, fc.Pending())
}

func TestCallbackDroppedWhenCancelledAfterStopRace(t *testing.T) {
	tasks, _, mu := newTasks()
	count := 0

	mu.Lock()
	h := tasks.After(time.Second, func() { count++ })
	mu.Unlock()

	// Simulate a runtime timer that already fired and is waiting on the lock.
	mu.Lock()
	tasks.Cancel(h)
	mu.Unlock()
	tasks.fire(h, func() { count++ })

	assert.Zero(t, count)
}
