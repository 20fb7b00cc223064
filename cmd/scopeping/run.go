package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/api"
	"github.com/hamed0406/scopeping/internal/fetch"
	"github.com/hamed0406/scopeping/internal/logging"
	"github.com/hamed0406/scopeping/internal/metrics"
	"github.com/hamed0406/scopeping/internal/notify"
	"github.com/hamed0406/scopeping/internal/probe"
	"github.com/hamed0406/scopeping/internal/report"
	"github.com/hamed0406/scopeping/internal/scan"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scan (default)",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runScan only fails when config or logging cannot be set up.
func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Warn("config_incomplete", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetchClient := api.NewClient(cfg.APIURL, cfg.Token, cfg.AuthScheme, cfg.HTTPTimeout)
	uploadClient := api.NewClient(cfg.APIURL, cfg.Token, cfg.AuthScheme, cfg.UploadTimeout)

	runner := &scan.Runner{
		Logger:  logger,
		Targets: &fetch.Fetcher{Src: fetchClient, Log: logger},
		Prober:  probe.NewPinger(cfg.PingBinary, cfg.PingCount, cfg.PingTimeout),
		Reporter: &report.Reporter{
			API:      uploadClient,
			DeviceID: cfg.DeviceID,
			Timeout:  cfg.UploadTimeout,
			Log:      logger,
		},
		Notifier: notify.Build(notify.Settings{
			SlackWebhook:   cfg.SlackWebhook,
			TelegramToken:  cfg.TelegramToken,
			TelegramChatID: cfg.TelegramChatID,
			TelegramAPIURL: cfg.TelegramAPIURL,
		}, logger),
		GroupIDs: cfg.GroupIDList(),
		Delay:    cfg.ProbeDelay,
		Out:      cmd.OutOrStdout(),
	}
	if cfg.DNSCheck {
		runner.DNS = probe.NewDNSDiagnoser()
	}
	if cfg.PushgatewayURL != "" {
		runner.Pusher = metrics.Pusher{
			URL:      cfg.PushgatewayURL,
			Job:      cfg.MetricsJobName,
			Grouping: map[string]string{"device": cfg.DeviceID},
		}
	}

	runner.Run(ctx)
	return nil
}
