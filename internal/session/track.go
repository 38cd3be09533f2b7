package session

import (
	"sync"

	"github.com/rcliao/nutricoach/internal/model"
)

// TrackList is the local track item list, newest first.
type TrackList struct {
	mu    sync.Mutex
	items []model.TrackItem
}

// Add inserts item at the front and returns the resulting list.
func (l *TrackList) Add(item model.TrackItem) []model.TrackItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]model.TrackItem{item}, l.items...)
	return l.snapshot()
}

// Items returns a copy of the list.
func (l *TrackList) Items() []model.TrackItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Replace swaps in a new list.
func (l *TrackList) Replace(items []model.TrackItem) {
	c := make([]model.TrackItem, len(items))
	copy(c, items)
	l.mu.Lock()
	l.items = c
	l.mu.Unlock()
}

func (l *TrackList) snapshot() []model.TrackItem {
	out := make([]model.TrackItem, len(l.items))
	copy(out, l.items)
	return out
}
