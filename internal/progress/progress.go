// Package progress derives macro totals and goal progress from log entries.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

// Totals are summed macros in grams.
type Totals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fiber   float64 `json:"fiber"`
}

// Progress holds per-macro ratios in [0, 1].
type Progress struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fiber   float64 `json:"fiber"`
}

// Ratio is current/target clamped to [0, 1]. A nil, zero or negative target gives 0.
func Ratio(current float64, target *float64) float64 {
	if target == nil || *target <= 0 || math.IsNaN(*target) || math.IsInf(*target, 0) {
		return 0
	}
	r := current / *target
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Against computes the progress of t toward g.
func (t Totals) Against(g *model.Goal) Progress {
	return Progress{
		Protein: Ratio(t.Protein, g.Target(model.Protein)),
		Carbs:   Ratio(t.Carbs, g.Target(model.Carbs)),
		Fiber:   Ratio(t.Fiber, g.Target(model.Fiber)),
	}
}

// Sum totals the countable entries: rollups (Summary set) are skipped.
func Sum(entries []model.LogEntry) Totals {
	var t Totals
	for _, e := range entries {
		if e.Summary {
			continue
		}
		t.Protein += finite(float64(e.ProteinGrams))
		t.Carbs += finite(float64(e.CarbGrams))
		t.Fiber += finite(float64(e.FiberGrams))
	}
	return t
}

// DayRange returns local midnight of now's day and the last instant of it.
func DayRange(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// WeekRange returns Monday 00:00:00.000 through Sunday 23:59:59.999 of the week
// containing now, always Monday-first.
func WeekRange(now time.Time) (start, end time.Time) {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	day, _ := DayRange(now)
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// Daily totals the countable entries logged on now's calendar day.
func Daily(entries []model.LogEntry, now time.Time) Totals {
	start, end := DayRange(now)
	return Sum(Between(entries, start, end))
}

// Weekly totals the countable entries logged in now's Monday-first week.
func Weekly(entries []model.LogEntry, now time.Time) Totals {
	start, end := WeekRange(now)
	return Sum(Between(entries, start, end))
}

// Between keeps entries whose log time falls in [start, end].
func Between(entries []model.LogEntry, start, end time.Time) []model.LogEntry {
	var out []model.LogEntry
	for _, e := range entries {
		if e.LogTime.IsZero() {
			continue
		}
		t := e.LogTime.In(start.Location())
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DayGroup is one calendar day of a patient's log.
type DayGroup struct {
	Date     string           `json:"date"` // YYYY-MM-DD
	Entries  []model.LogEntry `json:"entries"`
	Totals   Totals           `json:"totals"`
	Progress Progress         `json:"progress"`
}

// GroupByDay partitions entries by the calendar date of their log time in loc,
// most recent day first, and totals each day against g. Entries without a log
// time are dropped.
func GroupByDay(entries []model.LogEntry, g *model.Goal, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	byDate := map[string][]model.LogEntry{}
	for _, e := range entries {
		if e.LogTime.IsZero() {
			continue
		}
		d := e.LogTime.In(loc).Format(time.DateOnly)
		byDate[d] = append(byDate[d], e)
	}

	groups := make([]DayGroup, 0, len(byDate))
	for d, es := range byDate {
		sort.SliceStable(es, func(i, j int) bool {
			return es[i].LogTime.Before(es[j].LogTime.Time)
		})
		t := Sum(es)
		groups = append(groups, DayGroup{Date: d, Entries: es, Totals: t, Progress: t.Against(g)})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
