package mockstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

func TestDefaultSeed(t *testing.T) {
	s := New()
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Chat) != 1 || snap.Chat[0].ID != WelcomeID {
		t.Fatalf("expected only the welcome message, got %+v", snap.Chat)
	}
	if len(snap.Track) != 2 {
		t.Errorf("expected 2 seeded track items, got %d", len(snap.Track))
	}
	w, ok := s.Welcome()
	if !ok || w.From != model.FromBot {
		t.Errorf("unexpected welcome %+v", w)
	}
}

func TestCopiesInAndOut(t *testing.T) {
	ctx := context.Background()
	s := New()

	msgs := []model.Message{{ID: "a", Text: "hello", Meta: &model.MessageMeta{Fact: &model.NutritionFact{ProteinGrams: model.Float(5)}}}}
	if err := s.PersistChat(ctx, msgs); err != nil {
		t.Fatalf("persist: %v", err)
	}
	msgs[0].Text = "mutated"
	*msgs[0].Meta.Fact.ProteinGrams = 50

	got := s.Chat()
	if got[0].Text != "hello" || *got[0].Meta.Fact.ProteinGrams != 5 {
		t.Fatalf("store shares memory with caller input: %+v", got[0])
	}

	got[0].Text = "mutated again"
	if s.Chat()[0].Text != "hello" {
		t.Error("store shares memory with returned snapshot")
	}

	items := []model.TrackItem{{ID: "t1", Title: "x"}}
	s.PersistTrack(ctx, items)
	items[0].Title = "y"
	if s.Track()[0].Title != "x" {
		t.Error("track list shares memory with caller input")
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := New(WithSeed(nil, []model.TrackItem{{ID: "only"}}))
	s.PersistChat(ctx, []model.Message{{ID: "x"}})
	s.PersistTrack(ctx, nil)

	s.Reset()
	if len(s.Chat()) != 0 {
		t.Errorf("expected empty chat after reset, got %d", len(s.Chat()))
	}
	if tr := s.Track(); len(tr) != 1 || tr[0].ID != "only" {
		t.Errorf("expected seeded track after reset, got %+v", tr)
	}
	if _, ok := s.Welcome(); ok {
		t.Error("expected no welcome with an empty seed")
	}
}

func TestAnalyzeImage(t *testing.T) {
	s := New()
	got, err := s.AnalyzeImage(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got["calories"] != float64(AnalysisCalories) || got["protein_g"] != float64(AnalysisProtein) {
		t.Errorf("unexpected analysis %v", got)
	}
}

func TestAnalyzeImageHonorsContext(t *testing.T) {
	s := New(WithAnalysisDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.AnalyzeImage(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
