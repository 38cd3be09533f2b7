package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rcliao/nutricoach/internal/mockserver"
	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/nutrition"
)

type tokenHolder struct{ token string }

func (h *tokenHolder) Token() string { return h.token }

func newMockBackend(t *testing.T) (*Client, *tokenHolder) {
	t.Helper()
	srv := httptest.NewServer(mockserver.New("test-secret").Handler())
	t.Cleanup(srv.Close)
	h := &tokenHolder{}
	return New(srv.URL, WithCredentials(h)), h
}

func TestSignInAgainstMockServer(t *testing.T) {
	ctx := context.Background()
	c, h := newMockBackend(t)

	sess, err := c.Auth.SignIn(ctx, SignInRequest{Username: "ana", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.Token == "" || sess.PatientID == "" || sess.Role != model.RolePatient || sess.Username != "ana" {
		t.Fatalf("unexpected session %+v", sess)
	}
	h.token = sess.Token

	// The same user signing in again keeps the same patient.
	again, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "ana", Password: "pw"})
	if again.PatientID != sess.PatientID {
		t.Errorf("patient id changed: %q -> %q", sess.PatientID, again.PatientID)
	}
}

func TestLegacySignInRecoversUsername(t *testing.T) {
	c, _ := newMockBackend(t)
	sess, err := c.Auth.SignIn(context.Background(), SignInRequest{Email: "bo@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.Username != "bo" {
		t.Errorf("expected username from token, got %q", sess.Username)
	}
	if sess.Role != "" || sess.PatientID != "" {
		t.Errorf("legacy response carries no role or patient, got %+v", sess)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	c, _ := newMockBackend(t)
	_, err := c.Patients.All(context.Background())
	se, ok := err.(*StatusError)
	if !ok || se.Status != 401 {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestPatientFlowAgainstMockServer(t *testing.T) {
	ctx := context.Background()
	c, h := newMockBackend(t)
	sess, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "ana", Password: "pw"})
	h.token = sess.Token
	pid := sess.PatientID

	if _, err := c.Goals.Get(ctx, pid); !IsNotFound(err) {
		t.Errorf("expected no goal yet, got %v", err)
	}
	if _, err := c.Goals.Update(ctx, model.Goal{PatientID: model.FlexID(pid), DailyProteinMax: model.Float(120)}); err != nil {
		t.Fatalf("update goal: %v", err)
	}
	g, err := c.Goals.Get(ctx, pid)
	if err != nil || *g.DailyProteinMax != 120 {
		t.Fatalf("unexpected goal %+v, %v", g, err)
	}

	resp, err := c.Chat.Post(ctx, ChatRequest{Message: "eggs", ImageData: "QUJD", ImageMimeType: "image/png"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	f := nutrition.NormalizeJSON(resp.Payload())
	if f == nil || f.ProteinGrams == nil || *f.ProteinGrams != 30 {
		t.Errorf("expected analysis payload, got %s", resp.Payload())
	}
	hist, err := c.Chat.History(ctx, pid)
	if err != nil || len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d (%v)", len(hist), err)
	}
	if hist[0].Role != "patient" || hist[1].Role != "assistant" {
		t.Errorf("unexpected roles %q %q", hist[0].Role, hist[1].Role)
	}

	now := time.Now()
	created, err := c.Logs.Create(ctx, model.LogEntry{
		PatientID: model.FlexID(pid), Description: "eggs", ProteinGrams: 18,
		LogTime: model.Timestamp{Time: now},
	})
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	logs, err := c.Logs.List(ctx, LogQuery{PatientID: pid, Start: now.Add(-time.Hour), End: now.Add(time.Hour)})
	if err != nil || len(logs) != 1 {
		t.Fatalf("expected the new entry, got %+v (%v)", logs, err)
	}
	old, _ := c.Logs.List(ctx, LogQuery{PatientID: pid, End: now.Add(-time.Hour)})
	if len(old) != 0 {
		t.Errorf("expected range filter to exclude the entry, got %+v", old)
	}

	if err := c.Logs.Delete(ctx, created.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	logs, _ = c.Logs.List(ctx, LogQuery{PatientID: pid, Start: now.Add(-time.Hour), End: now.Add(time.Hour)})
	if len(logs) != 0 {
		t.Errorf("expected deleted entry gone, got %+v", logs)
	}

	if _, err := c.Patients.All(ctx); err == nil {
		t.Error("patients list should be clinician-only")
	}
}

func TestClinicianFlowAgainstMockServer(t *testing.T) {
	ctx := context.Background()
	c, h := newMockBackend(t)

	patient, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "ana", Password: "pw"})
	doc, err := c.Auth.SignIn(ctx, SignInRequest{Username: "clinician", Password: "pw"})
	if err != nil || doc.Role != model.RoleClinician || doc.ClinicianID == "" {
		t.Fatalf("unexpected clinician session %+v (%v)", doc, err)
	}
	h.token = doc.Token

	mine, _ := c.Patients.Mine(ctx)
	if len(mine) != 0 {
		t.Fatalf("expected no assigned patients, got %+v", mine)
	}
	if err := c.Patients.Assign(ctx, patient.PatientID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	mine, _ = c.Patients.Mine(ctx)
	if len(mine) != 1 || mine[0].ID.String() != patient.PatientID {
		t.Fatalf("expected ana assigned, got %+v", mine)
	}

	c.Goals.Update(ctx, model.Goal{PatientID: model.FlexID(patient.PatientID), DailyFiberMin: model.Float(25)})
	s, err := c.Patients.RefetchSummary(ctx, patient.PatientID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Patient == nil || s.Patient.Name != "ana" || s.Goal == nil || *s.Goal.DailyFiberMin != 25 {
		t.Errorf("unexpected summary %+v", s)
	}

	if err := c.Patients.Unassign(ctx, patient.PatientID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	mine, _ = c.Patients.Mine(ctx)
	if len(mine) != 0 {
		t.Errorf("expected ana unassigned, got %+v", mine)
	}
}

func TestSummaryReflectsNewLog(t *testing.T) {
	ctx := context.Background()
	c, h := newMockBackend(t)
	patient, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "ana", Password: "pw"})
	doc, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "clinician", Password: "pw"})
	h.token = doc.Token

	before, err := c.Patients.Summary(ctx, patient.PatientID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(before.Logs) != 0 {
		t.Fatalf("expected no logs yet, got %+v", before.Logs)
	}

	_, err = c.Logs.Create(ctx, model.LogEntry{
		PatientID: model.FlexID(patient.PatientID), Description: "lunch", ProteinGrams: 20,
		LogTime: model.Timestamp{Time: time.Now()},
	})
	if err != nil {
		t.Fatalf("create log: %v", err)
	}

	after, err := c.Patients.Summary(ctx, patient.PatientID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(after.Logs) != 1 || after.Logs[0].ProteinGrams != 20 {
		t.Errorf("expected summary to include the new log, got %+v", after.Logs)
	}
}

func TestSignUpAgainstMockServer(t *testing.T) {
	ctx := context.Background()
	c, _ := newMockBackend(t)
	err := c.Auth.SignUp(ctx, SignUpRequest{Username: "dr-lee", Password: "pw", Roles: []string{"CLINICIAN"}})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	sess, _ := c.Auth.SignIn(ctx, SignInRequest{Username: "dr-lee", Password: "pw"})
	if sess.Role != model.RoleClinician {
		t.Errorf("expected clinician role, got %q", sess.Role)
	}
	if err := c.Auth.SignUp(ctx, SignUpRequest{Username: "dr-lee", Password: "pw"}); err == nil {
		t.Error("expected duplicate username rejected")
	}
}
