package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/nutricoach/internal/mockserver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory backend for local development",
		Run:   runMockServer,
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	RootCmd.AddCommand(cmd)
}

func runMockServer(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	cfg := loadConfig()
	log := newLogger()
	defer log.Sync()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mockserver.New(cfg.JWTSecret, mockserver.WithLogger(log)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("mock server listening", zap.String("addr", addr))
	cmd.PrintErrf("mock server listening on http://%s\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			exitErr("mock-server", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			exitErr("shutdown", err)
		}
	}
}
