package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rcliao/nutricoach/internal/model"
)

var (
	// ErrUnknownMessage is returned when no message has the given id.
	ErrUnknownMessage = errors.New("unknown message")
	// ErrSettled is returned when a message has already left the pending state.
	ErrSettled = errors.New("message already settled")
)

// Transcript is the ordered chat message list, indexed by id. Messages are
// never removed; a pending message is settled in place exactly once.
type Transcript struct {
	mu    sync.Mutex
	order []string
	byID  map[string]model.Message
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{byID: map[string]model.Message{}}
}

// Append adds m at the end.
func (t *Transcript) Append(m model.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[m.ID]; ok {
		return fmt.Errorf("append %s: duplicate id", m.ID)
	}
	t.order = append(t.order, m.ID)
	t.byID[m.ID] = m.Clone()
	return nil
}

// Settle moves a pending message to state with the given text and meta.
func (t *Transcript) Settle(id string, state model.MessageState, text string, meta *model.MessageMeta) (model.Message, error) {
	if state == model.StatePending {
		return model.Message{}, fmt.Errorf("settle %s: target state must not be pending", id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.byID[id]
	if !ok {
		return model.Message{}, fmt.Errorf("settle %s: %w", id, ErrUnknownMessage)
	}
	if m.State != model.StatePending {
		return m.Clone(), fmt.Errorf("settle %s: %w", id, ErrSettled)
	}
	m.State = state
	m.Text = text
	m.Meta = meta
	t.byID[id] = m
	return m.Clone(), nil
}

// Get returns the message with the given id.
func (t *Transcript) Get(id string) (model.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.byID[id]
	if !ok {
		return model.Message{}, false
	}
	return m.Clone(), true
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Message, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id].Clone())
	}
	return out
}

// Replace swaps in a new message list. Later duplicates of an id are dropped.
func (t *Transcript) Replace(msgs []model.Message) {
	order := make([]string, 0, len(msgs))
	byID := make(map[string]model.Message, len(msgs))
	for _, m := range msgs {
		if _, ok := byID[m.ID]; ok {
			continue
		}
		order = append(order, m.ID)
		byID[m.ID] = m.Clone()
	}
	t.mu.Lock()
	t.order, t.byID = order, byID
	t.mu.Unlock()
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}
