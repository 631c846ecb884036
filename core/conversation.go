package authoring

import (
	"sync"

	"github.com/koscakluka/promptbuilder/core/prompts"
)

// transcript is the ordered list of finalized turns of a session.
type transcript struct {
	mu    sync.RWMutex
	turns []prompts.Turn
}

func (t *transcript) append(turn prompts.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = append(t.turns, turn)
}

// History returns deep copies of the turns, safe to hand to the host.
func (t *transcript) History() []prompts.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	history := prompts.CloneTurns(t.turns)
	if history == nil {
		history = []prompts.Turn{}
	}
	return history
}

func (t *transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.turns)
}

// messages returns the turns as they are sent to the backend. Only role and
// content are read, so no deep copy is needed.
func (t *transcript) messages() []prompts.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	turns := make([]prompts.Turn, len(t.turns))
	for i, turn := range t.turns {
		turns[i] = prompts.Turn{ID: turn.ID, Role: turn.Role, Content: turn.Content, CreatedAt: turn.CreatedAt}
	}
	return turns
}
