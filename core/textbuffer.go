package authoring

import (
	"strings"
	"sync"
)

// textBuffer holds the text of the response being streamed. It is read by
// the host while the session writes to it.
type textBuffer struct {
	mu     sync.Mutex
	chunks []string
	length int
}

func newTextBuffer() *textBuffer {
	return &textBuffer{}
}

// AddChunk appends a delta and returns the text so far.
func (b *textBuffer) AddChunk(chunk string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = append(b.chunks, chunk)
	b.length += len(chunk)
	return b.join()
}

func (b *textBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.join()
}

func (b *textBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

func (b *textBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = nil
	b.length = 0
}

func (b *textBuffer) join() string {
	var builder strings.Builder
	builder.Grow(b.length)
	for _, chunk := range b.chunks {
		builder.WriteString(chunk)
	}
	return builder.String()
}
