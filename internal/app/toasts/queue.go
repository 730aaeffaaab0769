// Package toasts keeps the auto-expiring notification list of a session.
package toasts

import (
	"time"

	"github.com/dkeye/neonroom/internal/app/sched"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultTTL = 4 * time.Second

type item struct {
	toast  domain.Toast
	expiry sched.Handle
}

// Queue is not safe for concurrent use; it runs under the lock its
// sched.Tasks was built with.
type Queue struct {
	tasks  *sched.Tasks
	ttl    time.Duration
	nextID domain.ToastID
	items  []item
	onExp  func(domain.ToastID)
}

func New(tasks *sched.Tasks, ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{tasks: tasks, ttl: ttl}
}

// Add appends a toast and schedules its removal after the queue TTL.
func (q *Queue) Add(message string, sev domain.Severity) domain.ToastID {
	q.nextID++
	id := q.nextID
	t := domain.Toast{
		ID:        id,
		Message:   message,
		Severity:  sev,
		CreatedAt: q.tasks.Now(),
	}
	h := q.tasks.After(q.ttl, func() { q.expire(id) })
	q.items = append(q.items, item{toast: t, expiry: h})
	log.Debug().Str("module", "app.toasts").Uint64("toast_id", uint64(id)).Str("severity", string(sev)).Msg(message)
	return id
}

// Remove dismisses a toast early. Unknown or already removed ids are ignored.
func (q *Queue) Remove(id domain.ToastID) bool {
	i := q.index(id)
	if i < 0 {
		return false
	}
	q.tasks.Cancel(q.items[i].expiry)
	q.items = append(q.items[:i], q.items[i+1:]...)
	return true
}

// OnExpire registers a hook called after a toast times out.
func (q *Queue) OnExpire(fn func(domain.ToastID)) { q.onExp = fn }

func (q *Queue) expire(id domain.ToastID) {
	i := q.index(id)
	if i < 0 {
		return
	}
	q.items = append(q.items[:i], q.items[i+1:]...)
	if q.onExp != nil {
		q.onExp(id)
	}
}

// Clear drops every toast and its pending expiry.
func (q *Queue) Clear() {
	for _, it := range q.items {
		q.tasks.Cancel(it.expiry)
	}
	q.items = nil
}

// List returns the visible toasts in insertion order.
func (q *Queue) List() []domain.Toast {
	out := make([]domain.Toast, len(q.items))
	for i, it := range q.items {
		out[i] = it.toast
	}
	return out
}

func (q *Queue) index(id domain.ToastID) int {
	for i, it := range q.items {
		if it.toast.ID == id {
			return i
		}
	}
	return -1
}
