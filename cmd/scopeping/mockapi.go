package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/logging"
	"github.com/hamed0406/scopeping/internal/mockapi"
)

var (
	mockFixture string
	mockAddr    string
)

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Serve a local scope API from a YAML fixture",
	Long: `mock-api serves the group, program and scope endpoints from a YAML
fixture and keeps uploaded reports in memory (GET /api/scans/uploads/).
Point DJANGO_API_URL at it for dry runs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		f, err := mockapi.LoadFixture(mockFixture)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              mockAddr,
			Handler:           mockapi.NewServer(logger, f).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()

		logger.Info("mockapi_listen", zap.String("addr", mockAddr), zap.Int("groups", len(f.Groups)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("mockapi_stopped")
		return nil
	},
}

func init() {
	mockAPICmd.Flags().StringVar(&mockFixture, "fixture", "configs/mockapi.example.yaml", "YAML fixture with groups, programs and scopes")
	mockAPICmd.Flags().StringVar(&mockAddr, "addr", ":8000", "listen address")
	rootCmd.AddCommand(mockAPICmd)
}
