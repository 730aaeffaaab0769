package signal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/neonroom/internal/app"
	"github.com/dkeye/neonroom/internal/app/clock"
	"github.com/dkeye/neonroom/internal/app/orch"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWS struct {
	closed int
}

func (f *fakeWS) ReadMessage() (int, []byte, error) { return 0, nil, errors.New("eof") }
func (f *fakeWS) WriteMessage(int, []byte) error    { return nil }
func (f *fakeWS) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeWS) Close() error                      { f.closed++; return nil }

func newTestController(maxDropped int) (*SignalWSController, *clock.Fake) {
	fc := clock.NewFake(time.Unix(0, 0))
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    rooms.Default(),
		Clock:    fc,
		Config:   orch.DefaultConfig(),
		Policy:   app.SimplePolicy{MaxDropped: maxDropped},
	}
	return NewSignalWSController(o, NewRoomRateLimiter(3, time.Minute, fc), 0, 0), fc
}

func drain(t *testing.T, c *WsSignalConn) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				return out
			}
			var m map[string]any
			require.NoError(t, json.Unmarshal(f, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func ofType(frames []map[string]any, typ string) []map[string]any {
	var out []map[string]any
	for _, f := range frames {
		if f["type"] == typ {
			out = append(out, f)
		}
	}
	return out
}

func send(ctl *SignalWSController, c *WsSignalConn, msg string) {
	ctl.handleSignal(context.Background(), "sid", c, []byte(msg))
}

func TestJoinPushesSnapshots(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 256)

	send(ctl, c, `{"type":"join","room":"7","name":"Neo"}`)
	frames := drain(t, c)

	snaps := ofType(frames, "snapshot")
	require.GreaterOrEqual(t, len(snaps), 2)
	first := snaps[0]["state"].(map[string]any)
	assert.Equal(t, true, first["loading"])
	last := snaps[len(snaps)-1]["state"].(map[string]any)
	assert.Equal(t, false, last["loading"])
	assert.Equal(t, "Cyber Lounge", last["room"].(map[string]any)["name"])
	assert.Len(t, last["participants"], 3)
	assert.Equal(t, true, last["show_start_prompt"])

	joined := ofType(frames, "joined")
	require.Len(t, joined, 1)
	assert.Equal(t, true, joined[0]["found"])
	assert.Equal(t, "Neo", ctl.Orch.Registry.GetOrCreateUser("sid").Username)
}

func TestJoinUnknownRoom(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 256)

	send(ctl, c, `{"type":"join","room":"404"}`)
	frames := drain(t, c)

	joined := ofType(frames, "joined")
	require.Len(t, joined, 1)
	assert.Equal(t, false, joined[0]["found"])
	assert.Empty(t, ofType(frames, "error"))
}

func TestJoinRateLimited(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 512)

	for range 3 {
		send(ctl, c, `{"type":"join","room":"1"}`)
	}
	drain(t, c)
	send(ctl, c, `{"type":"join","room":"1"}`)

	errs := ofType(drain(t, c), "error")
	require.Len(t, errs, 1)
	assert.Equal(t, "rate_limited", errs[0]["error"])
}

func TestCommandWithoutRoom(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 16)

	send(ctl, c, `{"type":"toggle_mute"}`)
	errs := ofType(drain(t, c), "error")
	require.Len(t, errs, 1)
	assert.Equal(t, "not_in_room", errs[0]["error"])
}

func TestUnknownAndBadMessages(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 16)

	send(ctl, c, `{"type":"teleport"}`)
	send(ctl, c, `not json`)
	errs := ofType(drain(t, c), "error")
	require.Len(t, errs, 2)
	assert.Equal(t, "unknown_type", errs[0]["error"])
	assert.Equal(t, "bad_json", errs[1]["error"])
}

func TestConversationPushesSpeech(t *testing.T) {
	ctl, fc := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 512)

	send(ctl, c, `{"type":"join","room":"7"}`)
	send(ctl, c, `{"type":"force_start"}`)
	fc.Advance(800 * time.Millisecond)
	frames := drain(t, c)

	speech := ofType(frames, "speech")
	require.NotEmpty(t, speech)
	assert.Equal(t, "speak", speech[len(speech)-1]["action"])

	snaps := ofType(frames, "snapshot")
	last := snaps[len(snaps)-1]["state"].(map[string]any)
	assert.Equal(t, true, last["is_conversation_active"])
	assert.NotNil(t, last["active_speaker_index"])
}

func TestControlCommands(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 512)

	send(ctl, c, `{"type":"join","room":"7"}`)
	send(ctl, c, `{"type":"toggle_mute"}`)
	send(ctl, c, `{"type":"mute_participant","id":"u-702"}`)
	send(ctl, c, `{"type":"sidebar_tab","tab":"chat"}`)
	send(ctl, c, `{"type":"sidebar_open","open":false}`)
	send(ctl, c, `{"type":"open_modal","modal":"invite"}`)
	frames := drain(t, c)

	snaps := ofType(frames, "snapshot")
	last := snaps[len(snaps)-1]["state"].(map[string]any)
	assert.Equal(t, true, last["muted"])
	assert.Equal(t, []any{"u-702"}, last["muted_participant_ids"])
	assert.Equal(t, "chat", last["sidebar_tab"])
	assert.Equal(t, false, last["sidebar_open"])
	assert.Equal(t, "invite", last["modal"])
	assert.Len(t, last["toasts"], 2)

	send(ctl, c, `{"type":"sidebar_tab","tab":"lobby"}`)
	send(ctl, c, `{"type":"close_modal"}`)
	frames = drain(t, c)
	errs := ofType(frames, "error")
	require.Len(t, errs, 1)
	assert.Equal(t, "bad_payload", errs[0]["error"])
	snaps = ofType(frames, "snapshot")
	assert.Equal(t, "", snaps[len(snaps)-1]["state"].(map[string]any)["modal"])
}

func TestDismissToast(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 512)

	send(ctl, c, `{"type":"join","room":"7"}`)
	send(ctl, c, `{"type":"toggle_mute"}`)
	sess, ok := ctl.Orch.Session("sid")
	require.True(t, ok)
	toasts := sess.Snapshot().Toasts
	require.Len(t, toasts, 1)
	drain(t, c)

	b, err := json.Marshal(map[string]any{"type": "dismiss_toast", "toast": toasts[0].ID})
	require.NoError(t, err)
	send(ctl, c, string(b))
	assert.Empty(t, sess.Snapshot().Toasts)
}

func TestLeaveReleasesAudioThenAcks(t *testing.T) {
	ctl, fc := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 512)

	send(ctl, c, `{"type":"join","room":"7"}`)
	send(ctl, c, `{"type":"force_start"}`)
	drain(t, c)

	send(ctl, c, `{"type":"leave"}`)
	frames := drain(t, c)
	assert.NotEmpty(t, ofType(frames, "speech"))
	audio := ofType(frames, "audio")
	require.Len(t, audio, 1)
	assert.Equal(t, "release", audio[0]["action"])
	assert.Empty(t, ofType(frames, "left"))

	fc.Advance(300 * time.Millisecond)
	assert.Len(t, ofType(drain(t, c), "left"), 1)

	_, ok := ctl.Orch.Session("sid")
	assert.False(t, ok)
}

func TestWhoAmIAndRename(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 64)

	send(ctl, c, `{"type":"join","room":"7"}`)
	drain(t, c)
	send(ctl, c, `{"type":"rename","name":"Trinity"}`)
	who := ofType(drain(t, c), "whoami")
	require.Len(t, who, 1)
	assert.Equal(t, "Trinity", who[0]["user"].(map[string]any)["username"])
	assert.Equal(t, "7", who[0]["room"])
	assert.Equal(t, "Cyber Lounge", who[0]["room_name"])

	send(ctl, c, `{"type":"rename","name":""}`)
	errs := ofType(drain(t, c), "error")
	require.Len(t, errs, 1)
	assert.Equal(t, "invalid_name", errs[0]["error"])
}

func TestPing(t *testing.T) {
	ctl, _ := newTestController(0)
	c := newWsSignalConn(&fakeWS{}, 4)

	send(ctl, c, `{"type":"ping"}`)
	pong := ofType(drain(t, c), "pong")
	require.Len(t, pong, 1)
	assert.EqualValues(t, 0, pong[0]["server_time"])
}

func TestSlowClientIsKicked(t *testing.T) {
	ctl, _ := newTestController(2)
	ws := &fakeWS{}
	c := newWsSignalConn(ws, 1)

	send(ctl, c, `{"type":"join","room":"7"}`)
	sess, ok := ctl.Orch.Session("sid")
	require.True(t, ok)
	sess.ToggleMute()
	sess.ToggleMute()

	assert.Eventually(t, func() bool {
		_, ok := ctl.Orch.Session("sid")
		return !ok && sess.Closed()
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return errors.Is(c.TrySend(core.Frame("x")), ErrConnClosed)
	}, time.Second, 5*time.Millisecond)
}

func TestTrySendAfterClose(t *testing.T) {
	ws := &fakeWS{}
	c := newWsSignalConn(ws, 1)
	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), ErrBackpressure)

	c.Close()
	c.Close()
	assert.Equal(t, 1, ws.closed)
	assert.ErrorIs(t, c.TrySend(core.Frame("c")), ErrConnClosed)
}

func TestReadPumpDisconnectClosesSession(t *testing.T) {
	ctl, _ := newTestController(0)
	ws := &fakeWS{}
	c := newWsSignalConn(ws, 256)

	send(ctl, c, `{"type":"join","room":"7"}`)
	sess, ok := ctl.Orch.Session("sid")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	ctl.readPump(ctx, cancel, "sid", c)

	assert.True(t, sess.Closed())
	assert.Error(t, ctx.Err())
	assert.Equal(t, 1, ws.closed)
}
