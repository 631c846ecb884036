package events

import "time"

// Kind is the value of the "type" field that discriminates wire events.
type Kind string

// Known reports whether the client handles events of this kind. Events of
// any other kind decode to [Unknown] and are dropped by the stream reader.
func (k Kind) Known() bool {
	switch k {
	case KindText, KindToolCall, KindState, KindDone, KindError:
		return true
	default:
		return false
	}
}

type Event interface {
	Kind() Kind
	ReceivedAt() time.Time
}

type header struct {
	kind       Kind
	receivedAt time.Time
}

func newHeader(kind Kind) header {
	return header{kind: kind, receivedAt: time.Now()}
}

func (h header) Kind() Kind {
	return h.kind
}

// ReceivedAt is the time the event was decoded or constructed.
func (h header) ReceivedAt() time.Time {
	return h.receivedAt
}
