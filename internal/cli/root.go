// Package cli implements the nutricoach CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/api"
	"github.com/rcliao/nutricoach/internal/config"
	"github.com/rcliao/nutricoach/internal/engine"
	"github.com/rcliao/nutricoach/internal/mockstore"
	"github.com/rcliao/nutricoach/internal/session"
)

var (
	dbPath  string
	apiURL  string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "nutricoach",
	Short: "Nutrition coaching client",
	Long:  "Chat with the nutrition coach, log meals and track macro goals. Works offline against a built-in mock store.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Session database path (default: $NUTRICOACH_DB or ~/.nutricoach/session.db)")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL (default: $NUTRICOACH_API_URL; empty runs offline)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func loadConfig() config.Config {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	return cfg
}

// newLogger writes to stderr so stdout stays machine-readable.
func newLogger() *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// app bundles everything a command needs. close must be called when done.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    *session.SQLiteStore
	state    *session.State
	client   *api.Client
	fallback *mockstore.Store
}

func openApp(cmd *cobra.Command) *app {
	cfg := loadConfig()
	log := newLogger()

	st, err := session.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open session store", err)
	}
	state, err := session.Open(cmd.Context(), st)
	if err != nil {
		st.Close()
		exitErr("open session", err)
	}
	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithCredentials(state),
		api.WithLogger(log),
	)
	return &app{cfg: cfg, log: log, store: st, state: state, client: client, fallback: mockstore.New()}
}

func (a *app) close() {
	_ = a.log.Sync()
	a.store.Close()
}

// engine wires the reconciliation engine. Remote resources are attached only
// when a backend is configured.
func (a *app) engine() *engine.Engine {
	opts := []engine.Option{engine.WithLogger(a.log)}
	if a.client.Configured() {
		opts = append(opts, engine.WithChat(a.client.Chat), engine.WithLogs(a.client.Logs))
	}
	return engine.New(a.state, a.fallback, opts...)
}

func (a *app) requireBackend() {
	if !a.client.Configured() {
		exitErr("backend", api.ErrNoBackend)
	}
}

func (a *app) requirePatient(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if pid := a.state.PatientID(); pid != "" {
		return pid
	}
	exitErr("patient", fmt.Errorf("no patient id: sign in as a patient or pass --patient"))
	return ""
}

func printJSON(cmd *cobra.Command, v any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if err := enc.Encode(v); err != nil {
		exitErr("encode output", err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
