// Package authoring runs the conversation through which a prompt is
// authored: it sends instructions to the backend, folds the streamed
// response into transcript turns and applies the final document state to
// the host's form.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/koscakluka/promptbuilder/core/backend"
	"github.com/koscakluka/promptbuilder/core/events"
	"github.com/koscakluka/promptbuilder/core/framing"
	"github.com/koscakluka/promptbuilder/core/prompts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyInstruction = errors.New("instruction is empty")
	ErrBusy             = errors.New("a request is already in flight")
	ErrClosed           = errors.New("session is closed")
	ErrAborted          = errors.New("request aborted")
	ErrStreamIncomplete = errors.New("response stream ended without done")
	ErrBackendFailure   = errors.New("backend reported a failure")
	ErrHostPanicked     = errors.New("host code panicked during the request")
)

// Session owns the transcript and the live response text of one authoring
// conversation. At most one request is in flight at a time.
type Session struct {
	backend backend.Backend
	options SessionOptions
	emit    eventEmitter

	mu          sync.Mutex
	phase       Phase
	closed      bool
	initialSent bool
	cancel      context.CancelCauseFunc
	lastDigest  *prompts.Digest

	transcript transcript
	live       *textBuffer
}

func NewSession(client backend.Backend, opts ...SessionOption) *Session {
	options := defaultSessionOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.stateProvider == nil {
		if provider, ok := options.form.(StateProvider); ok {
			options.stateProvider = provider.Snapshot
		} else {
			options.stateProvider = func() prompts.StateSnapshot { return prompts.NewDocument().Snapshot() }
		}
	}

	return &Session{
		backend: client,
		options: options,
		emit:    newCallbackEventEmitter(options),
		live:    newTextBuffer(),
	}
}

// Submit sends an instruction and blocks until its response has been
// finalized or has failed.
//
// Blank instructions and submissions while a request is in flight are
// rejected. A failing request is not returned as an error: it ends with a
// generic failure turn in the transcript. A panic in the form or a callback
// while finalizing is returned as [ErrHostPanicked], with the session back
// to idle.
func (s *Session) Submit(ctx context.Context, instruction string) error {
	_, err := s.submit(ctx, instruction, false)
	return err
}

// SubmitInitial submits an instruction supplied by the host when the
// conversation starts. Only the first call per session is sent; every later
// call reports false, whatever the instruction.
func (s *Session) SubmitInitial(ctx context.Context, instruction string) (bool, error) {
	return s.submit(ctx, instruction, true)
}

func (s *Session) submit(ctx context.Context, instruction string, initial bool) (sent bool, err error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return false, ErrEmptyInstruction
	}

	requestCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return false, ErrClosed
	case initial && s.initialSent:
		s.mu.Unlock()
		return false, nil
	case s.phase.Busy():
		s.mu.Unlock()
		return false, ErrBusy
	}
	if initial {
		s.initialSent = true
	}
	s.phase = PhaseSending
	s.cancel = cancel
	s.mu.Unlock()

	ctx, span := tracer.Start(requestCtx, "submit instruction")
	defer span.End()
	defer s.recoverRequest(ctx, &err)

	s.emit(phaseChanged{phase: PhaseSending})

	userTurn := prompts.NewUserTurn(instruction)
	s.transcript.append(userTurn)
	notify := panicSafeRun("turn callback", func(context.Context) error {
		s.emit(turnAppended{turn: userTurn})
		return nil
	})
	if err := notify(ctx); err != nil {
		s.fail(ctx, fmt.Errorf("%w: %w", ErrHostPanicked, err))
		return true, nil
	}
	span.SetAttributes(
		attribute.String("authoring.user_turn_id", userTurn.ID),
		attribute.Bool("authoring.initial", initial),
		attribute.Int("authoring.history", s.transcript.Len()),
	)

	draft := newDraftTurn(s.live)
	stats := &requestStats{}
	run := panicSafeRun("authoring request", func(ctx context.Context) error {
		request := backend.NewRequest(s.transcript.messages(), s.options.stateProvider(), s.options.reference)
		return s.stream(ctx, request, draft, stats)
	})

	if err := run(ctx); err != nil {
		s.fail(ctx, err)
	} else {
		s.finalize(ctx, draft)
	}

	span.SetAttributes(attribute.Int("authoring.skipped_frames", stats.skipped))
	return true, nil
}

type requestStats struct {
	events  int
	skipped int
}

func (s *Session) stream(ctx context.Context, request backend.Request, draft *draftTurn, stats *requestStats) error {
	span := trace.SpanFromContext(ctx)

	stream, err := s.backend.Open(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to open response stream: %w", err)
	}
	defer stream.Close()
	release := context.AfterFunc(ctx, func() { _ = stream.Close() })
	defer release()

	decoder := framing.NewDecoder(
		framing.WithConfig(s.options.framing),
		framing.WithSkipCallback(func(line []byte, err error) {
			stats.skipped++
			s.emit(frameSkipped{line: line, err: err})
		}),
	)

	for event, err := range decoder.Events(ctx, stream.Chunks()) {
		if err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return cause
			}
			return fmt.Errorf("response stream failed: %w", err)
		}

		if stats.events == 0 {
			span.AddEvent("first event received")
			s.transition(ctx, PhaseStreaming)
		}
		stats.events++

		if failure, ok := event.(events.Error); ok {
			return fmt.Errorf("%w: %s", ErrBackendFailure, failure.Message)
		}

		update := draft.apply(event)
		if update.textChanged {
			s.emit(liveTextUpdated{text: update.liveText})
		}
		if update.replacedSnapshot {
			logger.WarnContext(ctx, "backend sent more than one state event, keeping the latest")
		}
		if draft.done {
			return nil
		}
	}

	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return ErrStreamIncomplete
}

func (s *Session) finalize(ctx context.Context, draft *draftTurn) {
	span := trace.SpanFromContext(ctx)
	s.transition(ctx, PhaseFinalizing)

	turn, snapshot := draft.finalize()
	s.transcript.append(turn)
	s.emit(liveTextUpdated{text: ""})
	s.emit(turnAppended{turn: turn})

	applied := false
	if snapshot != nil {
		if s.options.form != nil {
			digest := s.options.form.ApplySnapshot(*snapshot)
			s.mu.Lock()
			s.lastDigest = &digest
			s.mu.Unlock()
			s.emit(snapshotApplied{snapshot: *snapshot, digest: digest})
			applied = true
		} else {
			logger.DebugContext(ctx, "no form to apply state snapshot to")
		}
	}

	span.SetAttributes(
		attribute.String("authoring.turn_id", turn.ID),
		attribute.Int("authoring.tool_calls", len(turn.ToolCalls)),
		attribute.Int("authoring.search_results", len(turn.SearchResults)),
		attribute.Bool("authoring.snapshot_applied", applied),
	)
	finalizedTurnsCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("snapshot_applied", applied)))

	s.transition(ctx, PhaseIdle)
}

func (s *Session) fail(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.WarnContext(ctx, "authoring request failed", "error", err)
	failedTurnsCounter.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.Bool("aborted", errors.Is(err, ErrAborted))))

	s.transition(ctx, PhaseError)

	s.live.Clear()
	s.emit(liveTextUpdated{text: ""})

	turn := prompts.NewAssistantTurn(s.options.failureMessage, nil, nil)
	s.transcript.append(turn)
	s.emit(turnAppended{turn: turn})
	span.SetAttributes(
		attribute.String("authoring.turn_id", turn.ID),
		attribute.Bool("authoring.snapshot_applied", false),
	)

	s.transition(ctx, PhaseIdle)
}

// recoverRequest catches a panic raised by host code after the request has
// been accepted, usually a form or a callback, and puts the session back to
// idle so it accepts further submissions.
func (s *Session) recoverRequest(ctx context.Context, err *error) {
	recovered := recover()
	if recovered == nil {
		return
	}

	*err = fmt.Errorf("%w: %v", ErrHostPanicked, recovered)
	span := trace.SpanFromContext(ctx)
	span.RecordError(*err)
	span.SetStatus(codes.Error, (*err).Error())
	logger.ErrorContext(ctx, "authoring request panicked, returning to idle", "error", *err)

	s.live.Clear()
	s.mu.Lock()
	stuck := s.phase != PhaseIdle
	s.phase = PhaseIdle
	s.cancel = nil
	s.mu.Unlock()

	if stuck {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorContext(ctx, "phase callback panicked while returning to idle", "panic", recovered)
			}
		}()
		s.emit(phaseChanged{phase: PhaseIdle})
	}
}

func (s *Session) transition(ctx context.Context, to Phase) {
	s.mu.Lock()
	if err := checkTransition(s.phase, to); err != nil {
		s.mu.Unlock()
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "rejected phase transition", "error", err)
		return
	}
	s.phase = to
	if to == PhaseIdle {
		s.cancel = nil
	}
	s.mu.Unlock()

	s.emit(phaseChanged{phase: to})
}

// Abort cancels the in-flight request, releasing its connection. The
// request ends on the error path. It reports whether there was a request to
// abort.
func (s *Session) Abort() bool {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel(ErrAborted)
	return true
}

// Close aborts any in-flight request and rejects further submissions.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Abort()
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Transcript returns copies of the finalized turns in order.
func (s *Session) Transcript() []prompts.Turn {
	return s.transcript.History()
}

// LiveText is the response text received so far. It is empty unless a
// response is streaming.
func (s *Session) LiveText() string {
	return s.live.String()
}

// LastDigest describes the most recently applied snapshot.
func (s *Session) LastDigest() (prompts.Digest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastDigest == nil {
		return prompts.Digest{}, false
	}
	digest := *s.lastDigest
	digest.Changed = append([]prompts.Field(nil), digest.Changed...)
	return digest, true
}
