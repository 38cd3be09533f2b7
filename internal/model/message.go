// Package model defines the data types shared by the nutrition coach client.
package model

import (
	"fmt"
)

// Sender identifies who authored a transcript message.
type Sender string

const (
	FromUser Sender = "user"
	FromBot  Sender = "bot"
)

// MessageState tracks a message through the optimistic send cycle.
type MessageState int

const (
	// StateResolved is the zero value: messages loaded from history or typed by the user are final.
	StateResolved MessageState = iota
	StatePending
	StateFailed
)

var stateNames = map[MessageState]string{
	StateResolved: "resolved",
	StatePending:  "pending",
	StateFailed:   "failed",
}

func (s MessageState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("MessageState(%d)", int(s))
}

func (s MessageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *MessageState) UnmarshalText(b []byte) error {
	for k, v := range stateNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown message state %q", b)
}

// Message is a single chat transcript entry.
type Message struct {
	ID        string       `json:"id"`
	From      Sender       `json:"from"`
	Text      string       `json:"text"`
	State     MessageState `json:"state"`
	Timestamp int64        `json:"timestamp"` // epoch milliseconds
	Meta      *MessageMeta `json:"meta,omitempty"`
}

// MessageMeta carries either a nutrition analysis or a local image preview.
type MessageMeta struct {
	Fact         *NutritionFact `json:"fact,omitempty"`
	ImagePreview string         `json:"imagePreview,omitempty"`
}

// Pending reports whether the message is still awaiting its response.
func (m Message) Pending() bool { return m.State == StatePending }

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	if m.Meta != nil {
		meta := *m.Meta
		meta.Fact = m.Meta.Fact.Clone()
		m.Meta = &meta
	}
	return m
}
