// Package mockstore is an in-memory stand-in for the backend. It holds a
// snapshot of the chat transcript and the track list, copied on the way in and
// on the way out, and can produce a fixed photo analysis.
package mockstore

import (
	"context"
	"sync"
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

// WelcomeID is the id of the pinned welcome message.
const WelcomeID = "welcome"

// Snapshot is a copy of the store contents.
type Snapshot struct {
	Chat  []model.Message   `json:"chat"`
	Track []model.TrackItem `json:"track"`
}

// Store is safe for concurrent use; every write replaces a whole collection.
type Store struct {
	mu    sync.Mutex
	chat  []model.Message
	track []model.TrackItem

	initialChat  []model.Message
	initialTrack []model.TrackItem
	delay        time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithAnalysisDelay simulates latency in AnalyzeImage.
func WithAnalysisDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithSeed replaces the default initial contents.
func WithSeed(chat []model.Message, track []model.TrackItem) Option {
	return func(s *Store) {
		s.initialChat = copyMessages(chat)
		s.initialTrack = copyItems(track)
	}
}

// New returns a store seeded with the default welcome message and track items.
func New(opts ...Option) *Store {
	now := time.Now()
	s := &Store{
		initialChat:  defaultChat(now),
		initialTrack: defaultTrack(now),
	}
	for _, o := range opts {
		o(s)
	}
	s.Reset()
	return s
}

// Load returns copies of the current collections.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Chat: copyMessages(s.chat), Track: copyItems(s.track)}, nil
}

// PersistChat replaces the stored transcript.
func (s *Store) PersistChat(ctx context.Context, msgs []model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := copyMessages(msgs)
	s.mu.Lock()
	s.chat = c
	s.mu.Unlock()
	return nil
}

// PersistTrack replaces the stored track list.
func (s *Store) PersistTrack(ctx context.Context, items []model.TrackItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := copyItems(items)
	s.mu.Lock()
	s.track = c
	s.mu.Unlock()
	return nil
}

// Chat returns a copy of the stored transcript.
func (s *Store) Chat() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyMessages(s.chat)
}

// Track returns a copy of the stored track list.
func (s *Store) Track() []model.TrackItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.track)
}

// Reset restores the initial contents.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = copyMessages(s.initialChat)
	s.track = copyItems(s.initialTrack)
}

// Welcome returns the first message of the initial transcript.
func (s *Store) Welcome() (model.Message, bool) {
	if len(s.initialChat) == 0 {
		return model.Message{}, false
	}
	return s.initialChat[0].Clone(), true
}

// Analysis values returned by AnalyzeImage.
const (
	AnalysisCalories = 420
	AnalysisCarbs    = 40
	AnalysisProtein  = 30
	AnalysisFiber    = 6
	AnalysisSummary  = "Estimated 420 kcal, good protein and veggies. Consider adding 10-20g protein."
)

// AnalyzeImage returns a fixed estimate in the legacy snake_case shape.
// The image content is not inspected.
func (s *Store) AnalyzeImage(ctx context.Context, _ []byte) (map[string]any, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return map[string]any{
		"calories":  float64(AnalysisCalories),
		"carbs_g":   float64(AnalysisCarbs),
		"protein_g": float64(AnalysisProtein),
		"fiber_g":   float64(AnalysisFiber),
		"summary":   AnalysisSummary,
	}, nil
}

func copyMessages(in []model.Message) []model.Message {
	if in == nil {
		return nil
	}
	out := make([]model.Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}

func copyItems(in []model.TrackItem) []model.TrackItem {
	if in == nil {
		return nil
	}
	out := make([]model.TrackItem, len(in))
	copy(out, in)
	return out
}
