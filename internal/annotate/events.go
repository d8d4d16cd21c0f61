package annotate

import "fmt"

// EventKind tags what a user interaction with a marked token means.
type EventKind string

const (
	EventChar      EventKind = "char"       // The glyph itself was activated
	EventAudioIcon EventKind = "audio-icon" // The speaker icon next to the glyph
)

// ParseEventKind accepts the wire names of the event kinds.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventChar, EventAudioIcon:
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is the payload carried by a rendered marked token.
type Event struct {
	Kind  EventKind `json:"kind"`
	Glyph string    `json:"char"`
}

// Interactive is a token together with the events it can emit.
type Interactive struct {
	Token
	Events []Event `json:"events,omitempty"`
}

// Events attaches a char event and an audio-icon event to every marked token.
// Plain runs carry none.
func Events(tokens []Token) []Interactive {
	out := make([]Interactive, len(tokens))
	for i, t := range tokens {
		out[i] = Interactive{Token: t}
		if t.Kind == Marked {
			out[i].Events = []Event{
				{Kind: EventChar, Glyph: t.Glyph},
				{Kind: EventAudioIcon, Glyph: t.Glyph},
			}
		}
	}
	return out
}
