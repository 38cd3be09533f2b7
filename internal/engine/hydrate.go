package engine

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/api"
	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/nutrition"
)

// Hydrate seeds the transcript and track list when a chat view opens.
//
// With remote history available, entries are mapped to messages, sorted by
// timestamp, and the welcome message is put in front unless already present.
// When the backend answers with nothing (or fails) the welcome message alone
// seeds the transcript. Without a backend or a signed-in patient, the fallback
// store's transcript is used as-is.
func (e *Engine) Hydrate(ctx context.Context) ([]model.Message, error) {
	snap, err := e.fallback.Load(ctx)
	if err != nil {
		return nil, err
	}
	e.state.Track().Replace(snap.Track)

	welcome, hasWelcome := e.fallback.Welcome()
	seedWelcome := func() []model.Message {
		if !hasWelcome {
			return nil
		}
		return []model.Message{welcome}
	}

	var msgs []model.Message
	pid := e.state.PatientID()
	if pid == "" {
		msgs = snap.Chat
	} else {
		entries, herr := e.chat.History(ctx, pid)
		switch {
		case errors.Is(herr, api.ErrNoBackend):
			msgs = snap.Chat
		case herr != nil:
			e.log.Warn("load chat history", zap.String("patient_id", pid), zap.Error(herr))
			msgs = seedWelcome()
		case len(entries) == 0:
			msgs = seedWelcome()
		default:
			msgs = e.fromHistory(entries)
			if hasWelcome && !containsID(msgs, welcome.ID) {
				msgs = append([]model.Message{welcome}, msgs...)
			}
		}
	}

	e.state.Transcript().Replace(msgs)
	return e.state.Transcript().Messages(), nil
}

func (e *Engine) fromHistory(entries []api.HistoryEntry) []model.Message {
	msgs := make([]model.Message, 0, len(entries))
	for _, h := range entries {
		m := model.Message{
			ID:   h.ID.String(),
			From: senderForRole(h.Role),
			Text: h.Text(),
		}
		if m.ID == "" {
			m.ID = e.newID()
		}
		if !h.Timestamp.IsZero() {
			m.Timestamp = h.Timestamp.UnixMilli()
		}

		var meta model.MessageMeta
		if h.ImageData != "" {
			meta.ImagePreview = nutrition.ImagePreview(h.ImageMimeType, h.ImageData)
		}
		if f := nutrition.NormalizeJSON(h.Meta); f != nil {
			meta.Fact = f
		}
		if meta.ImagePreview != "" || meta.Fact != nil {
			m.Meta = &meta
		}
		msgs = append(msgs, m)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
	return msgs
}

// senderForRole maps backend roles: patient and user (any case) are the user,
// everything else is the bot.
func senderForRole(role string) model.Sender {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "patient", "user":
		return model.FromUser
	}
	return model.FromBot
}

func containsID(msgs []model.Message, id string) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}
