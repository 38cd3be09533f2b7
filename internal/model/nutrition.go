package model

import (
	"encoding/json"
)

// Canonical NutritionFact keys.
const (
	KeyCalories = "calories"
	KeyProtein  = "proteinGrams"
	KeyCarbs    = "carbGrams"
	KeyFiber    = "fiberGrams"
	KeySummary  = "summary"
)

// NutritionFact is the canonical nutrition analysis attached to a bot message or log entry.
// Nil fields were not present in the source payload. Extra holds every other key of the
// source object so it can be written back out unchanged.
type NutritionFact struct {
	Calories     *float64
	ProteinGrams *float64
	CarbGrams    *float64
	FiberGrams   *float64
	Summary      *string
	Extra        map[string]any
}

// IsEmpty reports whether no canonical field is set.
func (f *NutritionFact) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Calories == nil && f.ProteinGrams == nil && f.CarbGrams == nil &&
		f.FiberGrams == nil && (f.Summary == nil || *f.Summary == "")
}

// Clone returns a deep copy.
func (f *NutritionFact) Clone() *NutritionFact {
	if f == nil {
		return nil
	}
	c := &NutritionFact{
		Calories:     cloneFloat(f.Calories),
		ProteinGrams: cloneFloat(f.ProteinGrams),
		CarbGrams:    cloneFloat(f.CarbGrams),
		FiberGrams:   cloneFloat(f.FiberGrams),
	}
	if f.Summary != nil {
		s := *f.Summary
		c.Summary = &s
	}
	if f.Extra != nil {
		// Round-trip through JSON so nested maps are not shared.
		b, err := json.Marshal(f.Extra)
		if err == nil {
			json.Unmarshal(b, &c.Extra)
		}
	}
	return c
}

// Map returns the fact as a flat object: Extra first, canonical keys on top.
func (f *NutritionFact) Map() map[string]any {
	out := make(map[string]any, len(f.Extra)+5)
	for k, v := range f.Extra {
		out[k] = v
	}
	putFloat(out, KeyCalories, f.Calories)
	putFloat(out, KeyProtein, f.ProteinGrams)
	putFloat(out, KeyCarbs, f.CarbGrams)
	putFloat(out, KeyFiber, f.FiberGrams)
	if f.Summary != nil {
		out[KeySummary] = *f.Summary
	} else {
		delete(out, KeySummary)
	}
	return out
}

func (f NutritionFact) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Map())
}

// UnmarshalJSON reads canonical keys only; legacy aliases stay in Extra.
// Use nutrition.Normalize to resolve aliases.
func (f *NutritionFact) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = NutritionFact{}
	for k, v := range raw {
		switch k {
		case KeyCalories:
			f.Calories = floatPtr(v)
		case KeyProtein:
			f.ProteinGrams = floatPtr(v)
		case KeyCarbs:
			f.CarbGrams = floatPtr(v)
		case KeyFiber:
			f.FiberGrams = floatPtr(v)
		case KeySummary:
			if s, ok := v.(string); ok {
				f.Summary = &s
			}
		default:
			if f.Extra == nil {
				f.Extra = map[string]any{}
			}
			f.Extra[k] = v
		}
	}
	return nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }

func floatPtr(v any) *float64 {
	f, ok := ToFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func putFloat(m map[string]any, key string, p *float64) {
	if p == nil {
		delete(m, key)
		return
	}
	m[key] = *p
}
