package progress

import (
	"math"
	"testing"
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

func entry(id string, at time.Time, protein float64, summary bool) model.LogEntry {
	return model.LogEntry{
		ID:           model.FlexID(id),
		ProteinGrams: model.Amount(protein),
		LogTime:      model.Timestamp{Time: at},
		Summary:      summary,
	}
}

func TestSumSkipsRollups(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	entries := []model.LogEntry{
		entry("1", now, 20, false),
		entry("2", now, 99, true),
	}
	if got := Daily(entries, now).Protein; got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestSumIgnoresNonFinite(t *testing.T) {
	entries := []model.LogEntry{
		{ProteinGrams: model.Amount(math.NaN())},
		{ProteinGrams: model.Amount(math.Inf(1)), CarbGrams: 5},
	}
	got := Sum(entries)
	if got.Protein != 0 || got.Carbs != 5 {
		t.Errorf("unexpected totals %+v", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  *float64
		want    float64
	}{
		{"half", 50, model.Float(100), 0.5},
		{"clamped high", 150, model.Float(100), 1},
		{"nil target", 50, nil, 0},
		{"zero target", 50, model.Float(0), 0},
		{"negative target", 50, model.Float(-10), 0},
		{"negative current", -5, model.Float(10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.current, tt.target); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgainstNilGoal(t *testing.T) {
	p := Totals{Protein: 10}.Against(nil)
	if p != (Progress{}) {
		t.Errorf("expected zero progress without a goal, got %+v", p)
	}
}

func TestWeekRangeMondayFirst(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
	}{
		{"sunday", time.Date(2024, 5, 19, 22, 0, 0, 0, loc)},
		{"monday", time.Date(2024, 5, 13, 0, 0, 0, 0, loc)},
		{"wednesday", time.Date(2024, 5, 15, 9, 0, 0, 0, loc)},
	}
	wantStart := time.Date(2024, 5, 13, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2024, 5, 19, 23, 59, 59, int(999*time.Millisecond), loc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(tt.now)
			if !start.Equal(wantStart) || !end.Equal(wantEnd) {
				t.Errorf("got %v..%v, want %v..%v", start, end, wantStart, wantEnd)
			}
		})
	}
}

func TestWeeklyBoundaries(t *testing.T) {
	now := time.Date(2024, 5, 19, 12, 0, 0, 0, time.UTC) // Sunday
	entries := []model.LogEntry{
		entry("mon", time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), 10, false),
		entry("sun", time.Date(2024, 5, 19, 23, 59, 59, 0, time.UTC), 5, false),
		entry("prev", time.Date(2024, 5, 12, 23, 59, 59, 0, time.UTC), 100, false),
		entry("next", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), 100, false),
	}
	if got := Weekly(entries, now).Protein; got != 15 {
		t.Errorf("expected 15, got %v", got)
	}
}

func TestGroupByDay(t *testing.T) {
	g := &model.Goal{DailyProteinMax: model.Float(100)}
	d1 := time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 14, 8, 0, 0, 0, time.UTC)
	entries := []model.LogEntry{
		entry("a", d1, 30, false),
		entry("b", d2.Add(2*time.Hour), 40, false),
		entry("c", d2, 20, false),
		{ID: "untimed", ProteinGrams: 5},
	}
	groups := GroupByDay(entries, g, time.UTC)
	if len(groups) != 2 {
		t.Fatalf("expected 2 days, got %d", len(groups))
	}
	if groups[0].Date != "2024-05-14" || groups[1].Date != "2024-05-13" {
		t.Errorf("expected most recent day first, got %s, %s", groups[0].Date, groups[1].Date)
	}
	if groups[0].Entries[0].ID != "c" {
		t.Errorf("expected entries in time order within a day, got %+v", groups[0].Entries)
	}
	if groups[0].Totals.Protein != 60 || groups[0].Progress.Protein != 0.6 {
		t.Errorf("unexpected day totals %+v / %+v", groups[0].Totals, groups[0].Progress)
	}
}

func TestTrackHelpers(t *testing.T) {
	day := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	items := []model.TrackItem{
		{ID: "g", Type: model.TrackGoal, Details: "free text", Timestamp: day.UnixMilli()},
		{ID: "m1", Type: model.TrackMilestone, Details: `{"protein_g":25,"fat_g":7}`, Timestamp: day.UnixMilli()},
		{ID: "m2", Type: model.TrackMilestone, Details: `{"carbs_g":40}`, Timestamp: day.UnixMilli()},
		{ID: "m3", Type: model.TrackMilestone, Details: `{"protein_g":10}`, Timestamp: day.AddDate(0, 0, -1).UnixMilli()},
		{ID: "w", Type: model.TrackWeekly, Details: `{"protein_g":600}`, Timestamp: day.UnixMilli()},
	}

	got := MilestonesForMacro(items, model.Protein, day)
	if len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("expected only m1 for protein today, got %+v", got)
	}
	if fats := MilestonesForMacro(items, model.Fats, day); len(fats) != 1 {
		t.Errorf("expected fat alias to match m1, got %+v", fats)
	}
	if w := WeeklyItems(items); len(w) != 1 || w[0].Fact == nil {
		t.Errorf("unexpected weekly items %+v", w)
	}

	entries := EntriesFromTrack(items, "p1")
	if len(entries) != 4 {
		t.Fatalf("expected goal skipped, got %d entries", len(entries))
	}
	if got := Daily(entries, day).Protein; got != 25 {
		t.Errorf("expected weekly rollup excluded from daily total, got %v", got)
	}
}
