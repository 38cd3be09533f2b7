package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

// LogsService binds /api/logs.
type LogsService struct{ c *Client }

// LogQuery selects a patient's logs, optionally bounded in time.
type LogQuery struct {
	PatientID string
	Start     time.Time
	End       time.Time
	Refetch   bool
}

// Params returns the normalized query string: bounds are sent only when set,
// as RFC 3339 in UTC.
func (q LogQuery) Params() url.Values {
	if q.Start.IsZero() && q.End.IsZero() {
		return nil
	}
	v := url.Values{}
	if !q.Start.IsZero() {
		v.Set("startDate", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		v.Set("endDate", q.End.UTC().Format(time.RFC3339))
	}
	return v
}

// List returns a patient's log entries. The cached list is tagged with the
// patient and with every entry id it holds.
func (s *LogsService) List(ctx context.Context, q LogQuery) ([]model.LogEntry, error) {
	if q.PatientID == "" {
		return nil, errors.New("list logs: patient id is required")
	}
	var out []model.LogEntry
	err := s.c.read(ctx, "/api/logs/patient/"+url.PathEscape(q.PatientID), q.Params(), q.Refetch, &out, func() []string {
		tags := []string{tagLogList(q.PatientID)}
		for _, e := range out {
			tags = append(tags, tagLog(e.ID.String()))
		}
		return tags
	})
	return out, err
}

// Create submits a log entry and invalidates that patient's lists and summary.
func (s *LogsService) Create(ctx context.Context, e model.LogEntry) (*model.LogEntry, error) {
	pid := e.PatientID.String()
	var out model.LogEntry
	if err := s.c.write(ctx, http.MethodPost, "/api/logs", e, &out, tagLogList(pid), tagSummary(pid)); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out = e
	}
	return &out, nil
}

// Delete removes a log entry. Every cached list holding it is dropped.
func (s *LogsService) Delete(ctx context.Context, id string) error {
	return s.c.write(ctx, http.MethodDelete, "/api/logs/"+url.PathEscape(id), nil, nil, tagLog(id))
}
