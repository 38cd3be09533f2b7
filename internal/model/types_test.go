package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexID(t *testing.T) {
	var v struct {
		A FlexID `json:"a"`
		B FlexID `json:"b"`
		C FlexID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":42,"b":"p-7","c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "42" || v.B != "p-7" || v.C != "" {
		t.Errorf("unexpected ids %q %q %q", v.A, v.B, v.C)
	}
}

func TestAmountTolerates(t *testing.T) {
	var e LogEntry
	err := json.Unmarshal([]byte(`{"proteinGrams":"12.5","carbGrams":null,"fiberGrams":{"x":1}}`), &e)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.ProteinGrams != 12.5 || e.CarbGrams != 0 || e.FiberGrams != 0 {
		t.Errorf("unexpected amounts %v %v %v", e.ProteinGrams, e.CarbGrams, e.FiberGrams)
	}
}

func TestTimestampFormats(t *testing.T) {
	want := time.Date(2024, 3, 4, 12, 30, 0, 0, time.UTC)
	tests := []string{
		`"2024-03-04T12:30:00Z"`,
		`"2024-03-04T14:30:00+02:00"`,
		`1709555400000`,
		`"1709555400000"`,
	}
	for _, in := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Errorf("%s: got %v, want %v", in, ts.Time, want)
		}
	}

	var local Timestamp
	json.Unmarshal([]byte(`"2024-03-04 08:00:00"`), &local)
	if local.Location() != time.Local || local.Hour() != 8 {
		t.Errorf("zone-less time should be local 08:00, got %v", local.Time)
	}

	var bad Timestamp
	json.Unmarshal([]byte(`"not a time"`), &bad)
	if !bad.IsZero() {
		t.Errorf("expected zero time, got %v", bad.Time)
	}
	b, _ := json.Marshal(bad)
	if string(b) != "null" {
		t.Errorf("zero timestamp should marshal as null, got %s", b)
	}
}

func TestToFloatRejectsNonFinite(t *testing.T) {
	for _, v := range []any{"NaN", "Inf", "abc", true, nil, map[string]any{}} {
		if _, ok := ToFloat(v); ok {
			t.Errorf("expected %v to be rejected", v)
		}
	}
	if f, ok := ToFloat(" 3.5 "); !ok || f != 3.5 {
		t.Errorf("expected 3.5, got %v %v", f, ok)
	}
}

func TestMessageStateText(t *testing.T) {
	m := Message{ID: "1", From: FromBot, State: StatePending}
	b, _ := json.Marshal(m)
	var back Message
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Pending() {
		t.Errorf("expected pending state to survive encoding, got %v (%s)", back.State, b)
	}
	if StateResolved != 0 {
		t.Error("resolved must be the zero state")
	}
}

func TestMessageCloneIsDeep(t *testing.T) {
	m := Message{Meta: &MessageMeta{Fact: &NutritionFact{ProteinGrams: Float(10)}}}
	c := m.Clone()
	*c.Meta.Fact.ProteinGrams = 99
	if *m.Meta.Fact.ProteinGrams != 10 {
		t.Error("clone shares the fact with the original")
	}
}

func TestGoalTarget(t *testing.T) {
	g := &Goal{
		DailyProteinMin: Float(80),
		DailyProteinMax: Float(120),
		DailyCarbsMin:   Float(150),
		DailyCarbsMax:   Float(0),
	}
	if p := g.Target(Protein); p == nil || *p != 120 {
		t.Errorf("protein target should be max, got %v", p)
	}
	if p := g.Target(Carbs); p == nil || *p != 150 {
		t.Errorf("carbs target should fall back to min, got %v", p)
	}
	if p := g.Target(Fiber); p != nil {
		t.Errorf("fiber target should be nil, got %v", *p)
	}
	var none *Goal
	if none.Target(Protein) != nil {
		t.Error("nil goal should have no target")
	}
}
