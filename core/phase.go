package authoring

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

// Phase is the turn-taking state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseSending means the request is out but no event has arrived yet.
	PhaseSending
	PhaseStreaming
	PhaseFinalizing
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Busy reports whether a request is in flight.
func (p Phase) Busy() bool {
	return p != PhaseIdle
}

var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseSending},
	PhaseSending:    {PhaseStreaming, PhaseError},
	PhaseStreaming:  {PhaseFinalizing, PhaseError},
	PhaseFinalizing: {PhaseIdle},
	PhaseError:      {PhaseIdle},
}

func (p Phase) canTransitionTo(next Phase) bool {
	return slices.Contains(transitions[p], next)
}

func checkTransition(from, to Phase) error {
	if !from.canTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
