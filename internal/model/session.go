package model

// Roles.
const (
	RolePatient   = "patient"
	RoleClinician = "clinician"
)

// Session is the authenticated identity. An empty Token means signed out,
// and every other field must then be empty too.
type Session struct {
	Token       string `json:"token,omitempty"`
	PatientID   string `json:"patientId,omitempty"`
	Username    string `json:"username,omitempty"`
	Role        string `json:"role,omitempty"`
	ClinicianID string `json:"clinicianId,omitempty"`
}

// SignedIn reports whether a credential is present.
func (s Session) SignedIn() bool { return s.Token != "" }

// Patient is a patient record as listed for clinicians.
type Patient struct {
	ID     FlexID `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Age    Amount `json:"age,omitempty"`
	Weight Amount `json:"weight,omitempty"`
	Height Amount `json:"height,omitempty"`
}

// PatientSummary is the clinician-facing view of one patient.
type PatientSummary struct {
	Patient *Patient   `json:"patient,omitempty"`
	Goal    *Goal      `json:"goal,omitempty"`
	Logs    []LogEntry `json:"logs"`
}
