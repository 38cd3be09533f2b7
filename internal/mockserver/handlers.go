package mockserver

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/nutrition"
)

type chatBody struct {
	Message       string `json:"message"`
	ImageData     string `json:"imageData"`
	ImageMimeType string `json:"imageMimeType"`
}

func (s *Server) handleChat(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u := currentUser(c)

	resp := gin.H{"response": ChatReply}
	var meta map[string]any
	if body.ImageData != "" {
		var err error
		meta, err = s.analyzer.AnalyzeImage(c.Request.Context(), []byte(body.ImageData))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		resp["response"] = nutrition.PhotoReply(nutrition.Normalize(meta))
		resp["meta"] = meta
	}

	if u.PatientID != 0 {
		s.mu.Lock()
		now := s.now().UnixMilli()
		s.history[u.PatientID] = append(s.history[u.PatientID],
			historyEntry{
				ID: strconv.Itoa(s.id()), Role: "patient", Content: body.Message, Timestamp: now,
				ImageData: body.ImageData, ImageMimeType: body.ImageMimeType,
			},
			historyEntry{
				ID: strconv.Itoa(s.id()), Role: "assistant", Content: resp["response"].(string), Timestamp: now + 1,
				Meta: meta,
			},
		)
		s.mu.Unlock()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c *gin.Context) {
	pid, ok := s.authorizedPatient(c, "patientId")
	if !ok {
		return
	}
	s.mu.Lock()
	out := append([]historyEntry{}, s.history[pid]...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetGoal(c *gin.Context) {
	pid, ok := s.authorizedPatient(c, "patientId")
	if !ok {
		return
	}
	s.mu.Lock()
	g, found := s.goals[pid]
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "no goal set"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handlePutGoal(c *gin.Context) {
	pid, ok := s.authorizedPatient(c, "patientId")
	if !ok {
		return
	}
	var g model.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	g.PatientID = model.FlexID(strconv.Itoa(pid))
	s.mu.Lock()
	s.goals[pid] = g
	s.mu.Unlock()
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleListLogs(c *gin.Context) {
	pid, ok := s.authorizedPatient(c, "patientId")
	if !ok {
		return
	}
	start, ok := queryTime(c, "startDate")
	if !ok {
		return
	}
	end, ok := queryTime(c, "endDate")
	if !ok {
		return
	}
	s.mu.Lock()
	out := s.logsFor(pid, start, end)
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateLog(c *gin.Context) {
	var e model.LogEntry
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	pid, err := strconv.Atoi(e.PatientID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid patientId"})
		return
	}
	if !s.mayAccess(currentUser(c), pid) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	s.mu.Lock()
	e.ID = model.FlexID(strconv.Itoa(s.id()))
	if e.LogTime.IsZero() {
		e.LogTime = model.Timestamp{Time: s.now()}
	}
	s.logs[e.ID.String()] = e
	s.mu.Unlock()
	s.log.Debug("log created", zap.String("id", e.ID.String()), zap.Int("patient_id", pid))
	c.JSON(http.StatusCreated, e)
}

func (s *Server) handleDeleteLog(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.logs[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "log not found"})
		return
	}
	pid, _ := strconv.Atoi(e.PatientID.String())
	if !s.mayAccessLocked(currentUser(c), pid) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	delete(s.logs, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAllPatients(c *gin.Context) {
	if !requireClinician(c) {
		return
	}
	s.mu.Lock()
	out := make([]patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, *p)
	}
	s.mu.Unlock()
	sortPatients(out)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetPatient(c *gin.Context) {
	pid, ok := s.authorizedPatient(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	p, found := s.patients[pid]
	var out patient
	if found {
		out = *p
	}
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "patient not found"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleMyPatients(c *gin.Context) {
	if !requireClinician(c) {
		return
	}
	u := currentUser(c)
	s.mu.Lock()
	out := []patient{}
	for pid := range s.assigned[u.ClinicianID] {
		if p, ok := s.patients[pid]; ok {
			out = append(out, *p)
		}
	}
	s.mu.Unlock()
	sortPatients(out)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleAssign(assign bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireClinician(c) {
			return
		}
		pid, ok := pathID(c, "id")
		if !ok {
			return
		}
		u := currentUser(c)
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, found := s.patients[pid]; !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "patient not found"})
			return
		}
		set := s.assigned[u.ClinicianID]
		if set == nil {
			set = map[int]bool{}
			s.assigned[u.ClinicianID] = set
		}
		if assign {
			set[pid] = true
		} else {
			delete(set, pid)
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) handleSummary(c *gin.Context) {
	if !requireClinician(c) {
		return
	}
	pid, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.patients[pid]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": "patient not found"})
		return
	}
	resp := gin.H{"patient": *p, "logs": s.logsFor(pid, time.Time{}, time.Time{})}
	if g, ok := s.goals[pid]; ok {
		resp["goal"] = g
	}
	c.JSON(http.StatusOK, resp)
}

// authorizedPatient reads a patient id path parameter and checks the caller
// may see that patient. It writes the error response itself.
func (s *Server) authorizedPatient(c *gin.Context, name string) (int, bool) {
	pid, ok := pathID(c, name)
	if !ok {
		return 0, false
	}
	if !s.mayAccess(currentUser(c), pid) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return 0, false
	}
	return pid, true
}

func (s *Server) mayAccess(u *user, pid int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mayAccessLocked(u, pid)
}

// Clinicians see every patient; patients see only themselves.
func (s *Server) mayAccessLocked(u *user, pid int) bool {
	return u.Role == model.RoleClinician || u.PatientID == pid
}

// logsFor returns a patient's entries within [start, end] ordered by log
// time. Zero bounds are open. Callers hold s.mu.
func (s *Server) logsFor(pid int, start, end time.Time) []model.LogEntry {
	key := strconv.Itoa(pid)
	out := []model.LogEntry{}
	for _, e := range s.logs {
		if e.PatientID.String() != key {
			continue
		}
		if !start.IsZero() && e.LogTime.Before(start) {
			continue
		}
		if !end.IsZero() && e.LogTime.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LogTime.Equal(out[j].LogTime.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].LogTime.Before(out[j].LogTime.Time)
	})
	return out
}

func queryTime(c *gin.Context, name string) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return time.Time{}, false
	}
	return t, true
}

func requireClinician(c *gin.Context) bool {
	if currentUser(c).Role != model.RoleClinician {
		c.JSON(http.StatusForbidden, gin.H{"message": "clinician role required"})
		return false
	}
	return true
}

func sortPatients(ps []patient) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}
