// Package backend carries authoring requests to the generation backend and
// hands back its response as a sequence of raw chunks.
//
// Chunks are opaque: they are cut wherever the transport happens to cut
// them and must be reassembled into lines by the framing package.
package backend

import (
	"context"
	"errors"
	"iter"
)

var (
	ErrUnexpectedStatus = errors.New("backend responded with unexpected status")
	ErrStreamClosed     = errors.New("response stream already closed")
)

// Backend opens one response stream per request.
type Backend interface {
	Open(ctx context.Context, request Request) (Stream, error)
}

// Stream is one response of the backend. Chunks can be ranged over once;
// Close releases the underlying connection and may be called at any time,
// including while Chunks is being ranged over from another goroutine.
type Stream interface {
	Chunks() iter.Seq2[[]byte, error]
	Close() error
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, request Request) (Stream, error)

func (f BackendFunc) Open(ctx context.Context, request Request) (Stream, error) {
	return f(ctx, request)
}
