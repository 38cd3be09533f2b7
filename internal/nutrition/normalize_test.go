package nutrition

import (
	"encoding/json"
	"testing"

	"github.com/rcliao/nutricoach/internal/model"
)

func TestNormalizeAliasPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]float64
	}{
		{"snake case only", `{"protein_g":5}`, map[string]float64{"protein": 5}},
		{"canonical wins", `{"proteinGrams":10,"protein_g":5}`, map[string]float64{"protein": 10}},
		{"null falls through", `{"proteinGrams":null,"protein_g":7}`, map[string]float64{"protein": 7}},
		{"unparseable falls through", `{"carbGrams":"lots","carbs_g":"12.5"}`, map[string]float64{"carbs": 12.5}},
		{"kcal alias", `{"kcal":300,"energy_kcal":200}`, map[string]float64{"calories": 300}},
		{"bare names", `{"protein":1,"carbs":2,"fiber":3}`, map[string]float64{"protein": 1, "carbs": 2, "fiber": 3}},
		{"carbsGrams before carb_grams", `{"carb_grams":1,"carbsGrams":2}`, map[string]float64{"carbs": 2}},
		{"fiber_grams before fiber_g", `{"fiber_g":1,"fiber_grams":4}`, map[string]float64{"fiber": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NormalizeJSON([]byte(tt.raw))
			if f == nil {
				t.Fatal("expected a fact")
			}
			got := map[string]*float64{
				"calories": f.Calories, "protein": f.ProteinGrams, "carbs": f.CarbGrams, "fiber": f.FiberGrams,
			}
			for k, p := range got {
				want, ok := tt.want[k]
				switch {
				case ok && p == nil:
					t.Errorf("%s: expected %v, got nil", k, want)
				case ok && *p != want:
					t.Errorf("%s: expected %v, got %v", k, want, *p)
				case !ok && p != nil:
					t.Errorf("%s: expected nil, got %v", k, *p)
				}
			}
		})
	}
}

func TestNormalizeSummaryAndExtra(t *testing.T) {
	f := NormalizeJSON([]byte(`{"description":"salad","fat_g":9,"protein_g":3}`))
	if f.Summary == nil || *f.Summary != "salad" {
		t.Fatalf("expected summary from description, got %v", f.Summary)
	}
	if f.Extra["fat_g"] != float64(9) {
		t.Errorf("expected fat_g kept in extra, got %v", f.Extra["fat_g"])
	}
	if f.Extra["protein_g"] != float64(3) {
		t.Errorf("expected alias kept in extra, got %v", f.Extra["protein_g"])
	}
	if _, ok := f.Extra["summary"]; ok {
		t.Error("canonical key must not land in extra")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		`{"calories":420,"carbs_g":40,"protein_g":30,"fiber_g":6,"summary":"ok"}`,
		`{"proteinGrams":"8","kcal":null,"fat":2}`,
		`{}`,
	}
	for _, in := range inputs {
		once := NormalizeJSON([]byte(in))
		twice := NormalizeFact(once)
		a, _ := json.Marshal(once)
		b, _ := json.Marshal(twice)
		if string(a) != string(b) {
			t.Errorf("normalize not idempotent for %s:\n once  %s\n twice %s", in, a, b)
		}
	}
}

func TestNormalizeNonObject(t *testing.T) {
	for _, in := range []string{`null`, `[]`, `"text"`, `42`, ``} {
		if f := NormalizeJSON([]byte(in)); f != nil {
			t.Errorf("expected nil for %q, got %+v", in, f)
		}
	}
	if f := Normalize(nil); f == nil || !f.IsEmpty() {
		t.Errorf("expected empty fact for nil map, got %+v", f)
	}
}

func TestParseDetails(t *testing.T) {
	if f := ParseDetails("Hit 120g protein daily"); f != nil {
		t.Errorf("free text should not parse, got %+v", f)
	}
	f := ParseDetails(` {"protein_g":22} `)
	if f == nil || f.ProteinGrams == nil || *f.ProteinGrams != 22 {
		t.Fatalf("expected protein 22, got %+v", f)
	}
	round := ParseDetails(Serialize(f))
	if *round.ProteinGrams != 22 {
		t.Errorf("expected serialized fact to parse back, got %+v", round)
	}
}

func TestSplitDataURI(t *testing.T) {
	tests := []struct {
		uri, mime, payload string
	}{
		{"data:image/png;base64,AAAA", "image/png", "AAAA"},
		{"data:image/jpeg;base64,a,b", "image/jpeg", "a,b"},
		{"AAAA", "", "AAAA"},
	}
	for _, tt := range tests {
		mime, payload := SplitDataURI(tt.uri)
		if mime != tt.mime || payload != tt.payload {
			t.Errorf("SplitDataURI(%q) = %q, %q; want %q, %q", tt.uri, mime, payload, tt.mime, tt.payload)
		}
	}
}

func TestDataURISniffsType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	uri := DataURI("", png)
	if mime, _ := SplitDataURI(uri); mime != "image/png" {
		t.Errorf("expected sniffed image/png, got %q", mime)
	}
	if mime, _ := SplitDataURI(DataURI("", []byte("plain text bytes"))); mime != DefaultImageMIME {
		t.Errorf("expected unrecognized bytes to default to %s, got %q", DefaultImageMIME, mime)
	}
	if mime, _ := SplitDataURI(DataURI("image/webp", []byte("x"))); mime != "image/webp" {
		t.Errorf("explicit type should be kept, got %q", mime)
	}
	if got := ImagePreview("", "QUJD"); got != "data:image/jpeg;base64,QUJD" {
		t.Errorf("unexpected preview %q", got)
	}
}

func TestPhotoReply(t *testing.T) {
	f := &model.NutritionFact{
		Calories:     model.Float(420),
		ProteinGrams: model.Float(30),
		CarbGrams:    model.Float(40),
		Summary:      model.String("Nice plate."),
	}
	want := "I analyzed the photo: ~420 kcal, 30g protein, 40g carbs. Nice plate."
	if got := PhotoReply(f); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := Describe(&model.NutritionFact{FiberGrams: model.Float(6)}); got != "6g fiber" {
		t.Errorf("unexpected description %q", got)
	}
}
