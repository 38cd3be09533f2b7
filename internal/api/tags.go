package api

// Cache tags. Reads attach them; writes invalidate them.
const (
	tagHistory      = "chat:history"
	tagPatientsAll  = "patients:all"
	tagPatientsMine = "patients:mine"
)

func tagHistoryFor(patientID string) string { return "chat:history:" + patientID }
func tagGoal(patientID string) string       { return "goals:" + patientID }
func tagLogList(patientID string) string    { return "logs:patient:" + patientID }
func tagLog(id string) string               { return "log:" + id }
func tagPatient(id string) string           { return "patient:" + id }
func tagSummary(id string) string           { return "summary:" + id }
