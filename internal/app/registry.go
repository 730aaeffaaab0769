package app

import (
	"context"
	"sync"

	"github.com/dkeye/neonroom/internal/core"
	"github.com/dkeye/neonroom/internal/domain"
	"github.com/rs/zerolog/log"
)

const guestName = "guest"

// Closer is a live room session the registry can tear down.
type Closer interface {
	Close(reason string)
}

type sessionEntry struct {
	RoomID  domain.RoomID
	Session Closer
	Cancel  context.CancelFunc
}

// Registry maps client session ids to their identity and the room session
// they currently have open. A client has at most one room session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	users    map[core.SessionID]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		users:    make(map[core.SessionID]*domain.User),
	}
}

// GetOrCreateUser returns a copy of the identity of sid, creating a guest
// on first sight.
func (r *Registry) GetOrCreateUser(sid core.SessionID) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.userLocked(sid)
}

// UpdateUsername renames sid, creating its guest identity if the client
// has not been seen yet.
func (r *Registry) UpdateUsername(sid core.SessionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.userLocked(sid)
	if err := u.SetUsername(name); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", name).Msg("updated username")
	return nil
}

func (r *Registry) userLocked(sid core.SessionID) *domain.User {
	if u, ok := r.users[sid]; ok {
		return u
	}
	u, err := domain.NewUser(guestName)
	if err != nil {
		panic("guest user: " + err.Error())
	}
	r.users[sid] = u
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user_id", string(u.ID)).Msg("created new user")
	return u
}

// BindSession attaches a room session to sid. A session already bound to
// sid is closed first, which is what a route change to another room means.
func (r *Registry) BindSession(sid core.SessionID, roomID domain.RoomID, sess Closer, cancel context.CancelFunc) {
	r.mu.Lock()
	prev := r.sessions[sid]
	r.sessions[sid] = &sessionEntry{RoomID: roomID, Session: sess, Cancel: cancel}
	r.mu.Unlock()

	if prev != nil {
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("from_room", string(prev.RoomID)).Msg("replacing session")
		prev.Session.Close("route change")
		if prev.Cancel != nil {
			prev.Cancel()
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("bound session")
}

func (r *Registry) GetSession(sid core.SessionID) (Closer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind removes the entry for sid and returns its session, if any, without
// closing it.
func (r *Registry) Unbind(sid core.SessionID) (Closer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return e.Session, true
}

// Viewers counts the clients that currently have roomID open.
func (r *Registry) Viewers(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.sessions {
		if e.RoomID == roomID {
			n++
		}
	}
	return n
}

// Cancel aborts the in-flight work of the session bound to sid, such as a
// room load, without unbinding it.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
