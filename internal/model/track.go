package model

// TrackItem types.
const (
	TrackGoal      = "goal"
	TrackMilestone = "milestone"
	TrackSummary   = "summary"
	TrackWeekly    = "weekly"
)

// TrackItem is the local form of a tracked entry. Details holds a serialized NutritionFact
// (or free text for goals).
type TrackItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// LogEntry is the remote form of a tracked entry. Entries with Summary set are
// rollups and never count toward daily or weekly totals.
type LogEntry struct {
	ID           FlexID    `json:"id,omitempty"`
	PatientID    FlexID    `json:"patientId"`
	Description  string    `json:"description"`
	Details      string    `json:"details,omitempty"`
	ProteinGrams Amount    `json:"proteinGrams"`
	CarbGrams    Amount    `json:"carbGrams"`
	FiberGrams   Amount    `json:"fiberGrams"`
	LogTime      Timestamp `json:"logTime"`
	Summary      bool      `json:"summary"`
}
