package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rcliao/nutricoach/internal/model"
)

// PatientsService binds /api/patients and the clinician routes.
type PatientsService struct{ c *Client }

// All lists every patient.
func (s *PatientsService) All(ctx context.Context) ([]model.Patient, error) {
	return s.list(ctx, "/api/patients", tagPatientsAll)
}

// Mine lists the patients assigned to the signed-in clinician.
func (s *PatientsService) Mine(ctx context.Context) ([]model.Patient, error) {
	return s.list(ctx, "/api/clinician/patients", tagPatientsMine)
}

func (s *PatientsService) list(ctx context.Context, path, tag string) ([]model.Patient, error) {
	var out []model.Patient
	err := s.c.read(ctx, path, nil, false, &out, func() []string {
		tags := []string{tag}
		for _, p := range out {
			tags = append(tags, tagPatient(p.ID.String()))
		}
		return tags
	})
	return out, err
}

// Get returns a single patient.
func (s *PatientsService) Get(ctx context.Context, id string) (*model.Patient, error) {
	var p model.Patient
	err := s.c.read(ctx, "/api/patients/"+url.PathEscape(id), nil, false, &p, func() []string {
		return []string{tagPatient(id)}
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Assign adds a patient to the clinician's list.
func (s *PatientsService) Assign(ctx context.Context, id string) error {
	return s.membership(ctx, id, "assign")
}

// Unassign removes a patient from the clinician's list.
func (s *PatientsService) Unassign(ctx context.Context, id string) error {
	return s.membership(ctx, id, "unassign")
}

func (s *PatientsService) membership(ctx context.Context, id, action string) error {
	path := "/api/clinician/patients/" + url.PathEscape(id) + "/" + action
	return s.c.write(ctx, http.MethodPost, path, nil, nil, tagPatientsMine, tagPatient(id))
}

// Summary returns the clinician view of one patient.
func (s *PatientsService) Summary(ctx context.Context, id string) (*model.PatientSummary, error) {
	return s.summary(ctx, id, false)
}

// RefetchSummary bypasses the cache.
func (s *PatientsService) RefetchSummary(ctx context.Context, id string) (*model.PatientSummary, error) {
	return s.summary(ctx, id, true)
}

func (s *PatientsService) summary(ctx context.Context, id string, refetch bool) (*model.PatientSummary, error) {
	var out model.PatientSummary
	err := s.c.read(ctx, "/api/clinician/patients/"+url.PathEscape(id)+"/summary", nil, refetch, &out, func() []string {
		tags := []string{tagSummary(id)}
		for _, e := range out.Logs {
			tags = append(tags, tagLog(e.ID.String()))
		}
		return tags
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
