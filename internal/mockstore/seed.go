package mockstore

import (
	"time"

	"github.com/rcliao/nutricoach/internal/model"
)

func defaultChat(now time.Time) []model.Message {
	return []model.Message{{
		ID:        WelcomeID,
		From:      model.FromBot,
		Text:      "Hi! I'm your nutrition coach. Tell me what you ate or send a photo of your meal and I'll log it for you.",
		Timestamp: now.UnixMilli(),
	}}
}

func defaultTrack(now time.Time) []model.TrackItem {
	return []model.TrackItem{
		{
			ID:        "seed-goal",
			Type:      model.TrackGoal,
			Title:     "Daily macros",
			Details:   "Protein 70-120 g/day (20-30 g per meal), carbs 100-120 g/day, fiber 25-30 g/day",
			Timestamp: now.UnixMilli(),
		},
		{
			ID:        "seed-weekly",
			Type:      model.TrackWeekly,
			Title:     "Last week",
			Details:   `{"calories":12600,"protein_g":610,"carbs_g":840,"fiber_g":150,"summary":"Protein on target 5 of 7 days."}`,
			Timestamp: now.AddDate(0, 0, -7).UnixMilli(),
		},
	}
}
