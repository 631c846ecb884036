package events

const KindError Kind = "error"

// Error reports a backend failure. The message is meant for logs, not for
// the person authoring the prompt.
type Error struct {
	header
	Message string
}

func NewError(message string) Error {
	return Error{header: newHeader(KindError), Message: message}
}

// Unknown is any event with an unrecognised kind.
type Unknown struct {
	header
	Payload []byte
}

func NewUnknown(kind Kind, payload []byte) Unknown {
	return Unknown{header: newHeader(kind), Payload: append([]byte(nil), payload...)}
}
