// Package nutrition turns the analysis payloads the backend has produced over
// time into the canonical NutritionFact shape.
package nutrition

import (
	"encoding/json"
	"strings"

	"github.com/rcliao/nutricoach/internal/model"
)

// Aliases lists, per canonical key, every accepted source key in priority order.
// The canonical key always comes first.
var Aliases = map[string][]string{
	model.KeyCalories: {"calories", "kcal", "energy_kcal", "calories_kcal"},
	model.KeyProtein:  {"proteinGrams", "protein_grams", "protein_g", "protein"},
	model.KeyCarbs:    {"carbGrams", "carbsGrams", "carb_grams", "carbs_g", "carbs"},
	model.KeyFiber:    {"fiberGrams", "fiber_grams", "fiber_g", "fiber"},
	model.KeySummary:  {"summary", "description"},
}

// Normalize builds a NutritionFact from an arbitrary decoded object. For each
// canonical field the first alias holding a usable value wins; values that are
// missing, null or non-numeric fall through to the next alias. Keys other than
// the canonical ones are kept in Extra.
func Normalize(raw map[string]any) *model.NutritionFact {
	f := &model.NutritionFact{}
	if raw == nil {
		return f
	}
	f.Calories = coalesceFloat(raw, Aliases[model.KeyCalories])
	f.ProteinGrams = coalesceFloat(raw, Aliases[model.KeyProtein])
	f.CarbGrams = coalesceFloat(raw, Aliases[model.KeyCarbs])
	f.FiberGrams = coalesceFloat(raw, Aliases[model.KeyFiber])
	f.Summary = coalesceString(raw, Aliases[model.KeySummary])

	for k, v := range raw {
		if isCanonical(k) {
			continue
		}
		if f.Extra == nil {
			f.Extra = map[string]any{}
		}
		f.Extra[k] = v
	}
	return f
}

// NormalizeJSON decodes b as an object and normalizes it. Anything that is not
// a JSON object (including null) yields nil.
func NormalizeJSON(b []byte) *model.NutritionFact {
	raw, ok := decodeObject(b)
	if !ok {
		return nil
	}
	return Normalize(raw)
}

// NormalizeFact re-runs normalization over an existing fact, picking up any
// aliases that are still sitting in Extra.
func NormalizeFact(f *model.NutritionFact) *model.NutritionFact {
	if f == nil {
		return nil
	}
	return Normalize(f.Map())
}

// ParseDetails decodes a serialized fact as stored in TrackItem.Details.
// Free-text details return nil.
func ParseDetails(details string) *model.NutritionFact {
	details = strings.TrimSpace(details)
	if !strings.HasPrefix(details, "{") {
		return nil
	}
	return NormalizeJSON([]byte(details))
}

// Serialize encodes a fact for TrackItem.Details / LogEntry.Details.
func Serialize(f *model.NutritionFact) string {
	if f == nil {
		return ""
	}
	b, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeObject(b []byte) (map[string]any, bool) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil, false
	}
	return raw, true
}

func coalesceFloat(raw map[string]any, keys []string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := model.ToFloat(v); ok {
			return &f
		}
	}
	return nil
}

func coalesceString(raw map[string]any, keys []string) *string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok {
			return &s
		}
	}
	return nil
}

func isCanonical(k string) bool {
	_, ok := Aliases[k]
	return ok
}
