package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/api"
	"github.com/rcliao/nutricoach/internal/model"
)

func init() {
	goals := &cobra.Command{
		Use:   "goals",
		Short: "Daily macro goals",
	}
	get := &cobra.Command{
		Use:   "get",
		Short: "Show a patient's goal",
		Run:   runGoalsGet,
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace a patient's goal",
		Long:  "Replace a patient's goal. Bounds left unset are cleared.",
		Run:   runGoalsSet,
	}
	for _, name := range []string{"protein", "carbs", "fiber"} {
		set.Flags().Float64(name+"-min", 0, "Daily "+name+" minimum (g)")
		set.Flags().Float64(name+"-max", 0, "Daily "+name+" maximum (g)")
	}
	set.Flags().String("notes", "", "Additional notes")

	for _, c := range []*cobra.Command{get, set} {
		c.Flags().String("patient", "", "Patient id (default: signed-in patient)")
		goals.AddCommand(c)
	}
	RootCmd.AddCommand(goals)
}

func runGoalsGet(cmd *cobra.Command, args []string) {
	patientFlag, _ := cmd.Flags().GetString("patient")
	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	g := goalOrNil(cmd.Context(), a, a.requirePatient(patientFlag))
	if g == nil {
		printJSON(cmd, map[string]any{"goal": nil})
		return
	}
	printJSON(cmd, g)
}

func runGoalsSet(cmd *cobra.Command, args []string) {
	patientFlag, _ := cmd.Flags().GetString("patient")
	notes, _ := cmd.Flags().GetString("notes")

	a := openApp(cmd)
	defer a.close()
	a.requireBackend()
	pid := a.requirePatient(patientFlag)

	bound := func(name string) *float64 {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetFloat64(name)
		return &v
	}
	g := model.Goal{
		PatientID:       model.FlexID(pid),
		DailyProteinMin: bound("protein-min"),
		DailyProteinMax: bound("protein-max"),
		DailyCarbsMin:   bound("carbs-min"),
		DailyCarbsMax:   bound("carbs-max"),
		DailyFiberMin:   bound("fiber-min"),
		DailyFiberMax:   bound("fiber-max"),
		AdditionalNotes: notes,
	}

	saved, err := a.client.Goals.Update(cmd.Context(), g)
	if err != nil {
		exitErr("set goal", err)
	}
	refetchGoalViews(cmd.Context(), a.client, a.log, pid, a.state.Session().Role == model.RoleClinician)
	printJSON(cmd, saved)
}

// refetchGoalViews reloads the views derived from a goal: the goal itself and,
// for clinicians, the patient summary. Failures are logged and dropped.
func refetchGoalViews(ctx context.Context, client *api.Client, log *zap.Logger, pid string, clinician bool) {
	if _, err := client.Goals.Refetch(ctx, pid); err != nil {
		log.Warn("refetch goal", zap.String("patient_id", pid), zap.Error(err))
	}
	if !clinician {
		return
	}
	if _, err := client.Patients.RefetchSummary(ctx, pid); err != nil {
		log.Warn("refetch summary", zap.String("patient_id", pid), zap.Error(err))
	}
}
