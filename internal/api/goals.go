package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/rcliao/nutricoach/internal/model"
)

// GoalsService binds /api/goals.
type GoalsService struct{ c *Client }

// Get returns the goal for a patient, from cache when possible.
func (s *GoalsService) Get(ctx context.Context, patientID string) (*model.Goal, error) {
	return s.get(ctx, patientID, false)
}

// Refetch bypasses the cache and stores the fresh result.
func (s *GoalsService) Refetch(ctx context.Context, patientID string) (*model.Goal, error) {
	return s.get(ctx, patientID, true)
}

func (s *GoalsService) get(ctx context.Context, patientID string, refetch bool) (*model.Goal, error) {
	var g model.Goal
	err := s.c.read(ctx, goalPath(patientID), nil, refetch, &g, func() []string {
		return []string{tagGoal(patientID)}
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Update replaces a patient's goal. Callers that display derived data (the
// patient summary) refetch it explicitly afterwards.
func (s *GoalsService) Update(ctx context.Context, g model.Goal) (*model.Goal, error) {
	pid := g.PatientID.String()
	if pid == "" {
		return nil, errors.New("update goal: patient id is required")
	}
	var out model.Goal
	if err := s.c.write(ctx, http.MethodPut, goalPath(pid), g, &out, tagGoal(pid)); err != nil {
		return nil, err
	}
	if out.PatientID == "" {
		out = g
	}
	return &out, nil
}

func goalPath(patientID string) string {
	return "/api/goals/patient/" + url.PathEscape(patientID)
}
