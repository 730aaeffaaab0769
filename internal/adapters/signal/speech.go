package signal

import (
	"encoding/json"

	"github.com/dkeye/neonroom/internal/core"
)

// wsSpeech is the audio engine of a browser client: speech synthesis runs
// on the client, the server only pushes what to say and when to stop.
type wsSpeech struct {
	conn core.SignalConnection
}

func newWsSpeech(conn core.SignalConnection) *wsSpeech {
	return &wsSpeech{conn: conn}
}

type speechFrame struct {
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	Utterance *core.Utterance `json:"utterance,omitempty"`
}

func (w *wsSpeech) Speak(u core.Utterance) error {
	return w.push(speechFrame{Type: "speech", Action: "speak", Utterance: &u})
}

func (w *wsSpeech) Cancel() error {
	return w.push(speechFrame{Type: "speech", Action: "cancel"})
}

func (w *wsSpeech) ReleaseContext() error {
	return w.push(speechFrame{Type: "audio", Action: "release"})
}

func (w *wsSpeech) push(f speechFrame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return w.conn.TrySend(b)
}
