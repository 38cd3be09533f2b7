package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcliao/nutricoach/internal/model"
)

// State is the client-side session: who is signed in, plus the transcript and
// track list currently on screen. Identity changes are written through to the
// Store on every change.
type State struct {
	mu    sync.RWMutex
	sess  model.Session
	store Store

	transcript *Transcript
	track      *TrackList
}

// Open rehydrates a State from store.
func Open(ctx context.Context, store Store) (*State, error) {
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &State{
		sess:       sess,
		store:      store,
		transcript: NewTranscript(),
		track:      &TrackList{},
	}, nil
}

// Session returns the current identity.
func (s *State) Session() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// Token returns the bearer credential, or "" when signed out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Token
}

// PatientID returns the signed-in patient's id, if any.
func (s *State) PatientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.PatientID
}

// Set replaces the identity and persists it. A session without a token is
// treated as a sign-out.
func (s *State) Set(ctx context.Context, sess model.Session) error {
	if sess.Token == "" {
		return s.clear(ctx)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return nil
}

// Clear signs out: every identity field is dropped from memory and storage,
// and the transcript and track list are emptied.
func (s *State) Clear() error {
	return s.clear(context.Background())
}

func (s *State) clear(ctx context.Context) error {
	s.mu.Lock()
	s.sess = model.Session{}
	s.mu.Unlock()
	s.transcript.Replace(nil)
	s.track.Replace(nil)
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Transcript returns the chat transcript.
func (s *State) Transcript() *Transcript { return s.transcript }

// Track returns the track list.
func (s *State) Track() *TrackList { return s.track }
