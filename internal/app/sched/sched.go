// Package sched tracks cancellable timer callbacks for one owner.
//
// All methods except the callbacks themselves must be called with the
// owner's lock held. Callbacks acquire that lock before running and are
// dropped when their handle was cancelled in the meantime, so once
// CancelAll returns no scheduled callback can mutate the owner's state.
package sched

import (
	"sync"
	"time"

	"github.com/dkeye/neonroom/internal/core"
)

type Handle uint64

type Tasks struct {
	clock   core.Clock
	lock    sync.Locker
	seq     uint64
	pending map[Handle]core.Timer
}

func New(clock core.Clock, lock sync.Locker) *Tasks {
	return &Tasks{
		clock:   clock,
		lock:    lock,
		pending: make(map[Handle]core.Timer),
	}
}

// After schedules fn to run under the owner's lock once d has elapsed.
func (t *Tasks) After(d time.Duration, fn func()) Handle {
	t.seq++
	h := Handle(t.seq)
	t.pending[h] = t.clock.AfterFunc(d, func() { t.fire(h, fn) })
	return h
}

func (t *Tasks) fire(h Handle, fn func()) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, ok := t.pending[h]; !ok {
		return
	}
	delete(t.pending, h)
	fn()
}

// Cancel reports whether h was still pending.
func (t *Tasks) Cancel(h Handle) bool {
	tm, ok := t.pending[h]
	if !ok {
		return false
	}
	tm.Stop()
	delete(t.pending, h)
	return true
}

// CancelAll drops every pending callback and returns how many there were.
func (t *Tasks) CancelAll() int {
	n := len(t.pending)
	for h, tm := range t.pending {
		tm.Stop()
		delete(t.pending, h)
	}
	return n
}

func (t *Tasks) Pending() int { return len(t.pending) }

func (t *Tasks) Now() time.Time { return t.clock.Now() }
