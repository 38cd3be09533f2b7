package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rcliao/nutricoach/internal/model"
)

// ChatService binds /api/chat.
type ChatService struct{ c *Client }

// ChatRequest is a user turn, optionally with a base64 image.
type ChatRequest struct {
	Message       string `json:"message"`
	ImageData     string `json:"imageData,omitempty"`
	ImageMimeType string `json:"imageMimeType,omitempty"`
}

// ChatResponse is the assistant's reply. Meta, when present, is an analysis
// payload in any of the historical field-naming shapes.
type ChatResponse struct {
	Response string          `json:"response"`
	Meta     json.RawMessage `json:"meta,omitempty"`
	Analysis json.RawMessage `json:"analysis,omitempty"`
}

// Payload returns the analysis payload, preferring meta.
func (r *ChatResponse) Payload() json.RawMessage {
	if len(r.Meta) > 0 && string(r.Meta) != "null" {
		return r.Meta
	}
	if len(r.Analysis) > 0 && string(r.Analysis) != "null" {
		return r.Analysis
	}
	return nil
}

// HistoryEntry is one stored chat turn. Content and Message are alternative
// spellings of the text.
type HistoryEntry struct {
	ID            model.FlexID    `json:"id"`
	Role          string          `json:"role"`
	Content       string          `json:"content,omitempty"`
	Message       string          `json:"message,omitempty"`
	Timestamp     model.Timestamp `json:"timestamp"`
	ImageData     string          `json:"imageData,omitempty"`
	ImageMimeType string          `json:"imageMimeType,omitempty"`
	Meta          json.RawMessage `json:"meta,omitempty"`
}

// Text returns Content, falling back to Message.
func (e HistoryEntry) Text() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Message
}

// Post sends a chat turn. Any cached history is invalidated.
func (s *ChatService) Post(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := s.c.write(ctx, http.MethodPost, "/api/chat", req, &resp, tagHistory); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns the stored transcript for a patient.
func (s *ChatService) History(ctx context.Context, patientID string) ([]HistoryEntry, error) {
	var out []HistoryEntry
	err := s.c.read(ctx, "/api/chat/history/"+url.PathEscape(patientID), nil, false, &out, func() []string {
		return []string{tagHistory, tagHistoryFor(patientID)}
	})
	return out, err
}
