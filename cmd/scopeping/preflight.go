package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/scopeping/internal/api"
	"github.com/hamed0406/scopeping/internal/config"
)

var checkAPI bool

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check configuration and the ping binary before a run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !preflight(cmd.Context(), cfg, checkAPI, cmd.OutOrStdout(), cmd.ErrOrStderr()) {
			return errors.New("preflight failed")
		}
		return nil
	},
}

func init() {
	preflightCmd.Flags().BoolVar(&checkAPI, "check-api", false, "also query every group on the scope API")
	rootCmd.AddCommand(preflightCmd)
}

// preflight prints one line per check and reports whether all hard checks passed.
func preflight(ctx context.Context, cfg config.Config, queryAPI bool, out, errOut io.Writer) bool {
	passed := true
	fail := func(msg string) {
		fmt.Fprintln(errOut, "✖", msg)
		passed = false
	}
	warn := func(msg string) { fmt.Fprintln(errOut, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(out, "✔", msg) }

	if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		fail(fmt.Sprintf("DJANGO_API_URL %q is not an absolute URL", cfg.APIURL))
	} else {
		ok("DJANGO_API_URL=" + cfg.APIURL)
	}
	if cfg.Token == "" {
		fail("AUTOMATION_TOKEN is empty (API calls will be rejected).")
	} else {
		ok("AUTOMATION_TOKEN present (scheme " + cfg.AuthScheme + ")")
	}
	groups := cfg.GroupIDList()
	if len(groups) == 0 {
		fail("GROUP_IDS has no group ids.")
	} else {
		ok("GROUP_IDS=" + strings.Join(groups, ","))
	}
	if cfg.DeviceID == "" {
		warn("DEVICE_ID empty; uploads will not name a device.")
	}

	if p, err := exec.LookPath(cfg.PingBinary); err != nil {
		fail(fmt.Sprintf("ping binary %q not found: %v", cfg.PingBinary, err))
	} else {
		ok(fmt.Sprintf("ping binary %s (count %d, timeout %s)", p, cfg.PingCount, cfg.PingTimeout))
	}

	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == "") {
		warn("Telegram needs both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; notifier disabled.")
	}
	if cfg.SlackWebhook == "" && (cfg.TelegramToken == "" || cfg.TelegramChatID == "") {
		warn("no notifier configured; notices go to the log only.")
	}
	if cfg.PushgatewayURL != "" {
		ok("PUSHGATEWAY_URL=" + cfg.PushgatewayURL)
	}

	if queryAPI && passed {
		c := api.NewClient(cfg.APIURL, cfg.Token, cfg.AuthScheme, cfg.HTTPTimeout)
		for _, g := range groups {
			progs, err := c.GroupPrograms(ctx, g)
			if err != nil {
				fail(fmt.Sprintf("group %s: %v", g, err))
				continue
			}
			ok(fmt.Sprintf("group %s: %d programs", g, len(progs)))
		}
	}

	if passed {
		ok("preflight passed")
	}
	return passed
}
