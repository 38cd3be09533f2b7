package model

// Goal holds a patient's daily macro ranges. Unset bounds are nil.
type Goal struct {
	PatientID       FlexID   `json:"patientId"`
	DailyProteinMin *float64 `json:"dailyProteinMin,omitempty"`
	DailyProteinMax *float64 `json:"dailyProteinMax,omitempty"`
	DailyCarbsMin   *float64 `json:"dailyCarbsMin,omitempty"`
	DailyCarbsMax   *float64 `json:"dailyCarbsMax,omitempty"`
	DailyFiberMin   *float64 `json:"dailyFiberMin,omitempty"`
	DailyFiberMax   *float64 `json:"dailyFiberMax,omitempty"`
	AdditionalNotes string   `json:"additionalNotes,omitempty"`
}

// Macro names a tracked macronutrient.
type Macro string

const (
	Protein Macro = "protein"
	Carbs   Macro = "carbs"
	Fiber   Macro = "fiber"
	Fats    Macro = "fats"
)

// Target returns the progress target for a macro: the max bound when it is
// positive, otherwise the min bound. It returns nil when neither is set.
func (g *Goal) Target(m Macro) *float64 {
	if g == nil {
		return nil
	}
	var lo, hi *float64
	switch m {
	case Protein:
		lo, hi = g.DailyProteinMin, g.DailyProteinMax
	case Carbs:
		lo, hi = g.DailyCarbsMin, g.DailyCarbsMax
	case Fiber:
		lo, hi = g.DailyFiberMin, g.DailyFiberMax
	default:
		return nil
	}
	if hi != nil && *hi > 0 {
		return hi
	}
	return lo
}
