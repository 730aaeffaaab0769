package turns

// Script is the rotation of lines simulated speakers read out.
type Script []string

const handAckLine = "Looks like someone has a question. Go ahead, the floor is yours."

var DefaultScript = Script{
	"Welcome back to the lounge, the city never sleeps and neither do we.",
	"Anyone catch the new synth drop? The bassline is pure chrome.",
	"I rerouted my deck through three proxies just to get in here.",
	"Rain on neon always hits different after midnight.",
	"Keep it chill, keep it kind. That is the only rule tonight.",
}

// Line picks the line for a turn; hand acknowledgements get a fixed prompt.
func (s Script) Line(turn uint64, ack bool) string {
	if ack {
		return handAckLine
	}
	if len(s) == 0 {
		return ""
	}
	return s[int((turn-1)%uint64(len(s)))]
}
