// Package mockserver is an in-memory implementation of the coach backend's
// HTTP contract for local development and tests. It accepts any credentials,
// issues signed tokens, and answers chat with canned replies.
package mockserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/mockstore"
	"github.com/rcliao/nutricoach/internal/model"
)

// ChatReply is the canned answer to text messages.
const ChatReply = "Thanks, I logged that. To hit your protein goal, aim for 20-30g protein per meal. Want tips?"

type user struct {
	Username    string
	Role        string
	PatientID   int
	ClinicianID int
}

type patient struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

type historyEntry struct {
	ID            string         `json:"id"`
	Role          string         `json:"role"`
	Content       string         `json:"content"`
	Timestamp     int64          `json:"timestamp"`
	ImageData     string         `json:"imageData,omitempty"`
	ImageMimeType string         `json:"imageMimeType,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
}

// Server holds all backend state in memory.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	log      *zap.Logger
	analyzer *mockstore.Store
	now      func() time.Time

	users    map[string]*user
	patients map[int]*patient
	assigned map[int]map[int]bool // clinician id -> patient ids
	goals    map[int]model.Goal
	logs     map[string]model.LogEntry
	history  map[int][]historyEntry
	nextID   int

	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New builds a server signing tokens with secret. A clinician account named
// "clinician" exists from the start.
func New(secret string, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		secret:   []byte(secret),
		log:      zap.NewNop(),
		analyzer: mockstore.New(),
		now:      time.Now,
		users:    map[string]*user{},
		patients: map[int]*patient{},
		assigned: map[int]map[int]bool{},
		goals:    map[int]model.Goal{},
		logs:     map[string]model.LogEntry{},
		history:  map[int][]historyEntry{},
	}
	for _, o := range opts {
		o(s)
	}
	s.users["clinician"] = &user{Username: "clinician", Role: model.RoleClinician, ClinicianID: s.id()}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/api/auth/signin", s.handleSignIn)
	r.POST("/api/auth/signup", s.handleSignUp)

	authed := r.Group("/api", s.authMiddleware())
	authed.POST("/chat", s.handleChat)
	authed.GET("/chat/history/:patientId", s.handleHistory)
	authed.GET("/goals/patient/:patientId", s.handleGetGoal)
	authed.PUT("/goals/patient/:patientId", s.handlePutGoal)
	authed.GET("/logs/patient/:patientId", s.handleListLogs)
	authed.POST("/logs", s.handleCreateLog)
	authed.DELETE("/logs/:id", s.handleDeleteLog)
	authed.GET("/patients", s.handleAllPatients)
	authed.GET("/patients/:id", s.handleGetPatient)
	authed.GET("/clinician/patients", s.handleMyPatients)
	authed.POST("/clinician/patients/:id/assign", s.handleAssign(true))
	authed.POST("/clinician/patients/:id/unassign", s.handleAssign(false))
	authed.GET("/clinician/patients/:id/summary", s.handleSummary)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("mock request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// id hands out sequential ids. Callers hold s.mu or run before serving.
func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

// ensurePatient returns the user, creating a patient account on first sight.
func (s *Server) ensurePatient(username, email string) *user {
	if u, ok := s.users[username]; ok {
		return u
	}
	p := &patient{ID: s.id(), Name: username, Email: email}
	s.patients[p.ID] = p
	u := &user{Username: username, Role: model.RolePatient, PatientID: p.ID}
	s.users[username] = u
	return u
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}
