package main

import (
	"github.com/spf13/cobra"

	"github.com/hamed0406/scopeping/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scopeping",
	Short: "Ping every in-scope domain from the scope API and upload a report",
	Long: `scopeping fetches the in-scope domains of the configured groups from the
scope API, pings each of them once and uploads a plain-text summary.

Settings come from the environment (DJANGO_API_URL, AUTOMATION_TOKEN,
GROUP_IDS, ...) and optionally from a YAML file given with --config.`,
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}
