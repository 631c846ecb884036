package framing

import (
	"bytes"
	"context"
	"errors"
	"iter"

	"github.com/koscakluka/promptbuilder/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultMarker prefixes every event line of the stream.
	DefaultMarker = "data: "
	// DefaultSentinel is the transport level end-of-stream payload. It is
	// independent of the done event and carries no meaning for a turn.
	DefaultSentinel = "[DONE]"
)

var ErrDecoderReused = errors.New("frame decoder already consumed a stream")

type Config struct {
	Marker   string
	Sentinel string
}

func DefaultConfig() Config {
	return Config{Marker: DefaultMarker, Sentinel: DefaultSentinel}
}

type Option func(*Decoder)

func WithConfig(config Config) Option {
	return func(d *Decoder) {
		if config.Marker != "" {
			d.config.Marker = config.Marker
		}
		if config.Sentinel != "" {
			d.config.Sentinel = config.Sentinel
		}
	}
}

// WithSkipCallback registers a callback invoked for every line whose payload
// could not be decoded.
func WithSkipCallback(callback func(line []byte, err error)) Option {
	return func(d *Decoder) { d.onSkip = callback }
}

// Decoder turns chunks of a line framed stream into wire events.
//
// A line may span any number of chunks; the unterminated tail of a chunk is
// held until the rest of the line arrives. A decoder serves a single
// response and cannot be restarted.
type Decoder struct {
	config Config

	pending []byte
	done    bool
	used    bool

	skipped   int
	discarded int

	onSkip func(line []byte, err error)
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{config: DefaultConfig()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed consumes one chunk and returns the events completed by it, in
// order.
func (d *Decoder) Feed(ctx context.Context, chunk []byte) []events.Event {
	d.pending = append(d.pending, chunk...)

	var decoded []events.Event
	consumed := 0
	for {
		newline := bytes.IndexByte(d.pending[consumed:], '\n')
		if newline < 0 {
			break
		}

		line := d.pending[consumed : consumed+newline]
		consumed += newline + 1
		if event := d.decodeLine(ctx, line); event != nil {
			decoded = append(decoded, event)
		}
	}

	if consumed > 0 {
		d.pending = append(d.pending[:0], d.pending[consumed:]...)
	}
	return decoded
}

// Flush processes an unterminated trailing line left when the stream ended.
func (d *Decoder) Flush(ctx context.Context) []events.Event {
	if len(d.pending) == 0 {
		return nil
	}

	line := d.pending
	d.pending = nil
	if event := d.decodeLine(ctx, line); event != nil {
		return []events.Event{event}
	}
	return nil
}

// Events decodes a chunk sequence lazily. Transport errors are yielded and
// end the sequence, undecodable lines are skipped.
func (d *Decoder) Events(ctx context.Context, chunks iter.Seq2[[]byte, error]) iter.Seq2[events.Event, error] {
	return func(yield func(events.Event, error) bool) {
		if d.used {
			yield(nil, ErrDecoderReused)
			return
		}
		d.used = true

		for chunk, err := range chunks {
			if err != nil {
				yield(nil, err)
				return
			}

			for _, event := range d.Feed(ctx, chunk) {
				if !yield(event, nil) {
					return
				}
			}
		}

		for _, event := range d.Flush(ctx) {
			if !yield(event, nil) {
				return
			}
		}
	}
}

// Skipped is the number of lines dropped because they could not be decoded.
func (d *Decoder) Skipped() int { return d.skipped }

// Discarded is the number of events dropped because they arrived after done.
func (d *Decoder) Discarded() int { return d.discarded }

// Done reports whether the done event has been decoded.
func (d *Decoder) Done() bool { return d.done }

// Pending is the size of the buffered, not yet terminated line.
func (d *Decoder) Pending() int { return len(d.pending) }

func (d *Decoder) decodeLine(ctx context.Context, line []byte) events.Event {
	line = bytes.TrimSuffix(line, []byte("\r"))

	payload, ok := d.stripMarker(line)
	if !ok {
		return nil
	}
	if string(bytes.TrimSpace(payload)) == d.config.Sentinel {
		return nil
	}

	event, err := events.Decode(payload)
	if err != nil {
		d.skipped++
		skippedFramesCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int("frame.bytes", len(payload))))
		logger.DebugContext(ctx, "skipping undecodable stream line", "error", err, "skipped", d.skipped)
		if d.onSkip != nil {
			d.onSkip(append([]byte(nil), line...), err)
		}
		return nil
	}

	if d.done {
		d.discarded++
		logger.DebugContext(ctx, "discarding event received after done", "kind", string(event.Kind()))
		return nil
	}

	if !event.Kind().Known() {
		logger.DebugContext(ctx, "ignoring event of unknown kind", "kind", string(event.Kind()))
		return nil
	}
	if event.Kind() == events.KindDone {
		d.done = true
	}

	return event
}

func (d *Decoder) stripMarker(line []byte) ([]byte, bool) {
	marker := []byte(d.config.Marker)
	if bytes.HasPrefix(line, marker) {
		return line[len(marker):], true
	}

	// "data:payload" is as valid as "data: payload" in event-stream framing
	trimmedMarker := bytes.TrimRight(marker, " ")
	if len(trimmedMarker) > 0 && len(trimmedMarker) < len(marker) && bytes.HasPrefix(line, trimmedMarker) {
		return line[len(trimmedMarker):], true
	}

	return nil, false
}
