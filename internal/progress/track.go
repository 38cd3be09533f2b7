package progress

import (
	"time"

	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/nutrition"
)

// ParsedItem is a TrackItem with its details decoded.
type ParsedItem struct {
	model.TrackItem
	Fact *model.NutritionFact `json:"fact,omitempty"`
}

// fatAliases covers the fat field, which is not part of the canonical fact.
var fatAliases = []string{"fat_g", "fats_g", "fats", "fat"}

// MacroValue returns the value f holds for m, if any.
func MacroValue(f *model.NutritionFact, m model.Macro) (float64, bool) {
	if f == nil {
		return 0, false
	}
	var p *float64
	switch m {
	case model.Protein:
		p = f.ProteinGrams
	case model.Carbs:
		p = f.CarbGrams
	case model.Fiber:
		p = f.FiberGrams
	case model.Fats:
		for _, k := range fatAliases {
			if v, ok := model.ToFloat(f.Extra[k]); ok {
				return v, true
			}
		}
		return 0, false
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// MilestonesForMacro returns the milestone items logged on day's calendar date
// whose details carry a positive value for m.
func MilestonesForMacro(items []model.TrackItem, m model.Macro, day time.Time) []ParsedItem {
	start, end := DayRange(day)
	var out []ParsedItem
	for _, it := range items {
		if it.Type != model.TrackMilestone {
			continue
		}
		ts := time.UnixMilli(it.Timestamp).In(day.Location())
		if ts.Before(start) || ts.After(end) {
			continue
		}
		f := nutrition.ParseDetails(it.Details)
		if v, ok := MacroValue(f, m); !ok || v <= 0 {
			continue
		}
		out = append(out, ParsedItem{TrackItem: it, Fact: f})
	}
	return out
}

// WeeklyItems returns the weekly rollup items with their details decoded.
func WeeklyItems(items []model.TrackItem) []ParsedItem {
	var out []ParsedItem
	for _, it := range items {
		if it.Type != model.TrackWeekly {
			continue
		}
		out = append(out, ParsedItem{TrackItem: it, Fact: nutrition.ParseDetails(it.Details)})
	}
	return out
}

// EntriesFromTrack converts local track items into log entries so local-only
// sessions can use the same aggregation. Summary and weekly items become
// rollups; goals carry no macros and are skipped.
func EntriesFromTrack(items []model.TrackItem, patientID string) []model.LogEntry {
	var out []model.LogEntry
	for _, it := range items {
		if it.Type == model.TrackGoal {
			continue
		}
		f := nutrition.ParseDetails(it.Details)
		e := model.LogEntry{
			ID:          model.FlexID(it.ID),
			PatientID:   model.FlexID(patientID),
			Description: it.Title,
			Details:     it.Details,
			LogTime:     model.Timestamp{Time: time.UnixMilli(it.Timestamp)},
			Summary:     it.Type == model.TrackSummary || it.Type == model.TrackWeekly,
		}
		if v, ok := MacroValue(f, model.Protein); ok {
			e.ProteinGrams = model.Amount(v)
		}
		if v, ok := MacroValue(f, model.Carbs); ok {
			e.CarbGrams = model.Amount(v)
		}
		if v, ok := MacroValue(f, model.Fiber); ok {
			e.FiberGrams = model.Amount(v)
		}
		out = append(out, e)
	}
	return out
}
