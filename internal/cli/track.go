package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/nutricoach/internal/api"
	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/progress"
)

type trackReport struct {
	Start      time.Time             `json:"start"`
	End        time.Time             `json:"end"`
	Totals     progress.Totals       `json:"totals"`
	Progress   progress.Progress     `json:"progress"`
	Goal       *model.Goal           `json:"goal,omitempty"`
	Milestones []progress.ParsedItem `json:"milestones,omitempty"`
	Weekly     []progress.ParsedItem `json:"weekly,omitempty"`
}

func init() {
	track := &cobra.Command{
		Use:   "track",
		Short: "Macro totals and goal progress",
	}
	today := &cobra.Command{
		Use:   "today",
		Short: "Totals for today",
		Run:   func(cmd *cobra.Command, args []string) { runTrack(cmd, false) },
	}
	today.Flags().String("macro", "", "Also list today's local milestones carrying this macro: protein, carbs, fiber, fats")
	week := &cobra.Command{
		Use:   "week",
		Short: "Totals for the current Monday-first week",
		Run:   func(cmd *cobra.Command, args []string) { runTrack(cmd, true) },
	}
	for _, c := range []*cobra.Command{today, week} {
		c.Flags().String("patient", "", "Patient id (default: signed-in patient)")
		track.AddCommand(c)
	}
	RootCmd.AddCommand(track)
}

func runTrack(cmd *cobra.Command, weekly bool) {
	patientFlag, _ := cmd.Flags().GetString("patient")

	a := openApp(cmd)
	defer a.close()

	now := time.Now()
	start, end := progress.DayRange(now)
	if weekly {
		start, end = progress.WeekRange(now)
	}
	rep := trackReport{Start: start, End: end}

	var entries []model.LogEntry
	if a.client.Configured() {
		pid := a.requirePatient(patientFlag)
		var err error
		entries, err = a.client.Logs.List(cmd.Context(), api.LogQuery{PatientID: pid, Start: start, End: end})
		if err != nil {
			exitErr("list logs", err)
		}
		rep.Goal = goalOrNil(cmd.Context(), a, pid)
	} else {
		snap, err := a.fallback.Load(cmd.Context())
		if err != nil {
			exitErr("load track", err)
		}
		entries = progress.EntriesFromTrack(snap.Track, a.state.PatientID())
		if weekly {
			rep.Weekly = progress.WeeklyItems(snap.Track)
		} else if m, _ := cmd.Flags().GetString("macro"); m != "" {
			rep.Milestones = progress.MilestonesForMacro(snap.Track, model.Macro(m), now)
		}
	}

	rep.Totals = progress.Sum(progress.Between(entries, start, end))
	rep.Progress = rep.Totals.Against(rep.Goal)
	printJSON(cmd, rep)
}

// goalOrNil treats a missing goal as no goal.
func goalOrNil(ctx context.Context, a *app, pid string) *model.Goal {
	g, err := a.client.Goals.Get(ctx, pid)
	if api.IsNotFound(err) {
		return nil
	}
	if err != nil {
		exitErr("get goal", err)
	}
	return g
}
