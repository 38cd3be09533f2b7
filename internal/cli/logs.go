package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/api"
)

func init() {
	logs := &cobra.Command{
		Use:   "logs",
		Short: "Meal log entries",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List a patient's log entries",
		Run:   runLogsList,
	}
	list.Flags().String("patient", "", "Patient id (default: signed-in patient)")
	list.Flags().String("since", "", "Start date (YYYY-MM-DD or RFC 3339)")
	list.Flags().String("until", "", "End date (YYYY-MM-DD or RFC 3339)")

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a log entry",
		Args:  cobra.ExactArgs(1),
		Run:   runLogsRm,
	}

	logs.AddCommand(list, rm)
	RootCmd.AddCommand(logs)
}

func runLogsList(cmd *cobra.Command, args []string) {
	patientFlag, _ := cmd.Flags().GetString("patient")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")

	q := api.LogQuery{}
	var err error
	if q.Start, err = parseDate(since, false); err != nil {
		exitErr("parse --since", err)
	}
	if q.End, err = parseDate(until, true); err != nil {
		exitErr("parse --until", err)
	}

	a := openApp(cmd)
	defer a.close()
	a.requireBackend()
	q.PatientID = a.requirePatient(patientFlag)

	entries, err := a.client.Logs.List(cmd.Context(), q)
	if err != nil {
		exitErr("list logs", err)
	}
	printJSON(cmd, entries)
}

func runLogsRm(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.close()
	a.requireBackend()
	if err := a.client.Logs.Delete(cmd.Context(), args[0]); err != nil {
		a.log.Warn("delete log", zap.String("log_id", args[0]), zap.Error(err))
		fmt.Fprintf(cmd.OutOrStdout(), `{"ok":false,"id":%q}`+"\n", args[0])
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%q}`+"\n", args[0])
}

// parseDate accepts a bare date (local midnight, or end of day when endOfDay
// is set) or a full RFC 3339 time. Empty input is the zero time.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return t, nil
}
