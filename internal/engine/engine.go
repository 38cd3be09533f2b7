// Package engine turns a user intent (a chat message or a meal photo) into a
// consistent record across the transcript, the track list and the remote log
// store, using an optimistic placeholder that is settled exactly once.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/api"
	"github.com/rcliao/nutricoach/internal/mockstore"
	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/nutrition"
	"github.com/rcliao/nutricoach/internal/session"
)

const (
	// UnreachableText replaces the placeholder when a text send fails.
	UnreachableText = "Unable to reach server"
	// PhotoPrompt accompanies every photo; it is sent but never shown.
	PhotoPrompt = "Analyze this meal photo. Estimate calories, protein, carbs and fiber."

	TextLogTitle  = "Meal logged via chat"
	PhotoLogTitle = "Meal logged via photo"
)

var (
	// ErrEmptyMessage is returned for blank text input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyPhoto is returned for a photo without data.
	ErrEmptyPhoto = errors.New("photo is empty")
)

// ChatAPI is the remote chat resource.
type ChatAPI interface {
	Post(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	History(ctx context.Context, patientID string) ([]api.HistoryEntry, error)
}

// LogAPI is the remote log resource.
type LogAPI interface {
	Create(ctx context.Context, e model.LogEntry) (*model.LogEntry, error)
}

// Fallback is the in-memory substitute backend.
type Fallback interface {
	Load(ctx context.Context) (mockstore.Snapshot, error)
	PersistChat(ctx context.Context, msgs []model.Message) error
	PersistTrack(ctx context.Context, items []model.TrackItem) error
	Welcome() (model.Message, bool)
	AnalyzeImage(ctx context.Context, data []byte) (map[string]any, error)
}

// Photo is an image picked by the user.
type Photo struct {
	Data        []byte
	ContentType string // sniffed from Data when empty
}

// Engine orchestrates sends. It does not serialize concurrent sends: each send
// owns its placeholder id, so they settle independently.
type Engine struct {
	state    *session.State
	fallback Fallback
	chat     ChatAPI
	logs     LogAPI
	log      *zap.Logger
	now      func() time.Time

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Option configures an Engine.
type Option func(*Engine)

// WithChat sets the remote chat resource.
func WithChat(c ChatAPI) Option { return func(e *Engine) { e.chat = c } }

// WithLogs sets the remote log resource. Without it log entries stay local.
func WithLogs(l LogAPI) Option { return func(e *Engine) { e.logs = l } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// New creates an Engine writing into state and falling back to fallback.
func New(state *session.State, fallback Fallback, opts ...Option) *Engine {
	e := &Engine{
		state:    state,
		fallback: fallback,
		chat:     offline{},
		log:      zap.NewNop(),
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) newID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

// SendText appends the user's message and a pending bot placeholder, asks the
// backend, and settles the placeholder with the reply or with UnreachableText.
// A non-empty analysis in the reply is recorded as a milestone. The returned
// message is the settled placeholder.
func (e *Engine) SendText(ctx context.Context, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, ErrEmptyMessage
	}

	ts := e.now().UnixMilli()
	user := model.Message{ID: e.newID(), From: model.FromUser, Text: text, Timestamp: ts}
	placeholderID, err := e.begin(user)
	if err != nil {
		return model.Message{}, err
	}

	resp, err := e.chat.Post(ctx, api.ChatRequest{Message: text})
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		e.log.Warn("chat request failed", zap.String("message_id", placeholderID), zap.Error(err))
		settled := e.settle(placeholderID, model.StateFailed, UnreachableText, nil)
		e.persistTranscript(ctx)
		return settled, nil
	}

	fact := nutrition.NormalizeJSON(resp.Payload())
	settled := e.settle(placeholderID, model.StateResolved, resp.Response, factMeta(fact))
	e.persistTranscript(ctx)

	if !fact.IsEmpty() {
		e.record(ctx, TextLogTitle, fact)
	}
	return settled, nil
}

// SendPhoto appends a user message carrying the image preview and a pending
// placeholder, then asks the backend to analyze the image. When the backend
// cannot be reached the fallback store's analysis is used instead, so a photo
// always produces a nutrition fact and a milestone.
func (e *Engine) SendPhoto(ctx context.Context, p Photo) (model.Message, error) {
	if len(p.Data) == 0 {
		return model.Message{}, ErrEmptyPhoto
	}

	preview := nutrition.DataURI(p.ContentType, p.Data)
	ts := e.now().UnixMilli()
	user := model.Message{
		ID:        e.newID(),
		From:      model.FromUser,
		Timestamp: ts,
		Meta:      &model.MessageMeta{ImagePreview: preview},
	}
	placeholderID, err := e.begin(user)
	if err != nil {
		return model.Message{}, err
	}

	mime, payload := nutrition.SplitDataURI(preview)
	resp, err := e.chat.Post(ctx, api.ChatRequest{
		Message:       PhotoPrompt,
		ImageData:     payload,
		ImageMimeType: mime,
	})
	ctx = context.WithoutCancel(ctx)

	var (
		fact    *model.NutritionFact
		settled model.Message
	)
	if err != nil {
		e.log.Warn("photo analysis request failed, using local estimate",
			zap.String("message_id", placeholderID), zap.Error(err))
		raw, aerr := e.fallback.AnalyzeImage(ctx, p.Data)
		if aerr != nil {
			e.log.Error("local photo analysis failed", zap.String("message_id", placeholderID), zap.Error(aerr))
			settled = e.settle(placeholderID, model.StateFailed, UnreachableText, nil)
			e.persistTranscript(ctx)
			return settled, nil
		}
		fact = nutrition.Normalize(raw)
		settled = e.settle(placeholderID, model.StateResolved, nutrition.PhotoReply(fact), factMeta(fact))
	} else {
		fact = nutrition.NormalizeJSON(resp.Payload())
		settled = e.settle(placeholderID, model.StateResolved, resp.Response, factMeta(fact))
	}
	e.persistTranscript(ctx)

	if fact == nil {
		fact = &model.NutritionFact{}
	}
	e.record(ctx, PhotoLogTitle, fact)
	return settled, nil
}

// begin appends the user message and a pending placeholder, returning the
// placeholder id.
func (e *Engine) begin(user model.Message) (string, error) {
	t := e.state.Transcript()
	if err := t.Append(user); err != nil {
		return "", err
	}
	placeholder := model.Message{
		ID:        e.newID(),
		From:      model.FromBot,
		State:     model.StatePending,
		Timestamp: user.Timestamp,
	}
	if err := t.Append(placeholder); err != nil {
		return "", err
	}
	return placeholder.ID, nil
}

func (e *Engine) settle(id string, state model.MessageState, text string, meta *model.MessageMeta) model.Message {
	m, err := e.state.Transcript().Settle(id, state, text, meta)
	if err != nil {
		e.log.Error("settle placeholder", zap.String("message_id", id), zap.Error(err))
	}
	return m
}

// persistTranscript snapshots the whole transcript into the fallback store.
// Concurrent sends may overwrite each other's snapshot; the next persist
// catches up.
func (e *Engine) persistTranscript(ctx context.Context) {
	if err := e.fallback.PersistChat(ctx, e.state.Transcript().Messages()); err != nil {
		e.log.Warn("persist transcript", zap.Error(err))
	}
}

// record adds a milestone to the track list and submits a log entry. Failures
// are logged and swallowed; the transcript is never touched here.
func (e *Engine) record(ctx context.Context, title string, fact *model.NutritionFact) {
	now := e.now()
	details := nutrition.Serialize(fact)
	items := e.state.Track().Add(model.TrackItem{
		ID:        e.newID(),
		Type:      model.TrackMilestone,
		Title:     title,
		Details:   details,
		Timestamp: now.UnixMilli(),
	})
	if err := e.fallback.PersistTrack(ctx, items); err != nil {
		e.log.Warn("persist track", zap.Error(err))
	}

	pid := e.state.PatientID()
	if e.logs == nil || pid == "" {
		return
	}
	entry := model.LogEntry{
		PatientID:    model.FlexID(pid),
		Description:  title,
		Details:      details,
		ProteinGrams: amount(fact.ProteinGrams),
		CarbGrams:    amount(fact.CarbGrams),
		FiberGrams:   amount(fact.FiberGrams),
		LogTime:      model.Timestamp{Time: now},
	}
	if _, err := e.logs.Create(ctx, entry); err != nil {
		e.log.Warn("log submission failed", zap.String("patient_id", pid), zap.Error(err))
	}
}

func factMeta(f *model.NutritionFact) *model.MessageMeta {
	if f == nil {
		return nil
	}
	return &model.MessageMeta{Fact: f}
}

func amount(p *float64) model.Amount {
	if p == nil {
		return 0
	}
	return model.Amount(*p)
}

// offline is the chat resource used when none is configured.
type offline struct{}

func (offline) Post(context.Context, api.ChatRequest) (*api.ChatResponse, error) {
	return nil, api.ErrNoBackend
}

func (offline) History(context.Context, string) ([]api.HistoryEntry, error) {
	return nil, api.ErrNoBackend
}
