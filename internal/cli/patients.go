package cli

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/model"
	"github.com/rcliao/nutricoach/internal/progress"
)

func init() {
	patients := &cobra.Command{
		Use:   "patients",
		Short: "Clinician patient management",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		Run:   runPatientsList,
	}
	list.Flags().Bool("mine", false, "Only patients assigned to me")

	assign := &cobra.Command{
		Use:   "assign [id]",
		Short: "Assign a patient to me",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runMembership(cmd, args[0], true) },
	}
	unassign := &cobra.Command{
		Use:   "unassign [id]",
		Short: "Unassign a patient from me",
		Args:  cobra.ExactArgs(1),
		Run:   func(cmd *cobra.Command, args []string) { runMembership(cmd, args[0], false) },
	}
	summary := &cobra.Command{
		Use:   "summary [id]",
		Short: "Goal and day-by-day log of a patient",
		Args:  cobra.ExactArgs(1),
		Run:   runPatientSummary,
	}
	summary.Flags().Bool("refetch", false, "Bypass the cache")

	patients.AddCommand(list, assign, unassign, summary)
	RootCmd.AddCommand(patients)
}

func runPatientsList(cmd *cobra.Command, args []string) {
	mine, _ := cmd.Flags().GetBool("mine")
	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	var (
		out []model.Patient
		err error
	)
	if mine {
		out, err = a.client.Patients.Mine(cmd.Context())
	} else {
		out, err = a.client.Patients.All(cmd.Context())
	}
	if err != nil {
		exitErr("list patients", err)
	}
	printJSON(cmd, out)
}

func runMembership(cmd *cobra.Command, id string, assign bool) {
	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	var err error
	if assign {
		err = a.client.Patients.Assign(cmd.Context(), id)
	} else {
		err = a.client.Patients.Unassign(cmd.Context(), id)
	}
	// Membership failures leave the list unchanged and are not fatal.
	if err != nil {
		a.log.Warn("update patient assignment", zap.String("patient_id", id), zap.Bool("assign", assign), zap.Error(err))
		printJSON(cmd, map[string]any{"ok": false, "id": id})
		return
	}
	printJSON(cmd, map[string]any{"ok": true, "id": id, "assigned": assign})
}

type summaryReport struct {
	Patient *model.Patient      `json:"patient,omitempty"`
	Goal    *model.Goal         `json:"goal,omitempty"`
	Days    []progress.DayGroup `json:"days"`
}

func runPatientSummary(cmd *cobra.Command, args []string) {
	refetch, _ := cmd.Flags().GetBool("refetch")
	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	get := a.client.Patients.Summary
	if refetch {
		get = a.client.Patients.RefetchSummary
	}
	s, err := get(cmd.Context(), args[0])
	if err != nil {
		exitErr("summary", err)
	}
	printJSON(cmd, summaryReport{
		Patient: s.Patient,
		Goal:    s.Goal,
		Days:    progress.GroupByDay(s.Logs, s.Goal, time.Local),
	})
}
