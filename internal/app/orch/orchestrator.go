package orch

import (
	"context"

	"github.com/dkeye/neonroom/internal/app"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/rs/zerolog/log"
)

// Orchestrator opens and tears down room sessions for connected clients.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomProvider
	Clock    core.Clock
	Config   Config
	Policy   app.Policy
}

// Join opens a session for sid on roomID, subscribes onSnapshot and loads
// the room. Any session sid had open before is cleaned up first and its
// pending load is cancelled.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, roomID string, audio core.AudioEngine, onSnapshot func(core.Snapshot)) (*Session, error) {
	user := o.Registry.GetOrCreateUser(sid)
	sess := NewSession(sid, user, o.Config, o.Clock, o.Rooms, audio)
	if onSnapshot != nil {
		sess.Subscribe(onSnapshot)
	}
	ctx, cancel := context.WithCancel(ctx)
	o.Registry.BindSession(sid, rooms.NormalizeID(roomID), sess, cancel)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room_id", roomID).Msg("join")

	return sess, sess.Load(ctx, roomID)
}

// Session returns the live session of sid.
func (o *Orchestrator) Session(sid core.SessionID) (*Session, bool) {
	c, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, false
	}
	sess, ok := c.(*Session)
	if !ok || sess.Closed() {
		return nil, false
	}
	return sess, true
}

// Leave is the explicit leave action; onDone runs after the grace pass.
func (o *Orchestrator) Leave(sid core.SessionID, onDone func()) CleanupReport {
	c, ok := o.Registry.GetSession(sid)
	if !ok {
		if onDone != nil {
			onDone()
		}
		return CleanupReport{Failed: map[string]error{}}
	}
	rep := CleanupReport{Failed: map[string]error{}}
	if sess, ok := c.(*Session); ok {
		rep = sess.Leave("leave", onDone)
	} else {
		c.Close("leave")
	}
	o.release(sid)
	return rep
}

// OnDisconnect is treated as a route change away from the room.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	if c, ok := o.Registry.GetSession(sid); ok {
		c.Close("disconnect")
		o.release(sid)
	}
}

// release cancels the join context of sid once its session is closed, so a
// load still in flight ends as stale rather than failed.
func (o *Orchestrator) release(sid core.SessionID) {
	o.Registry.Cancel(sid)
	o.Registry.Unbind(sid)
}
