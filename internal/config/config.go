package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIURL     string // scope API base URL, e.g. "https://scope.example.com"
	Token      string // automation token for the scope API
	AuthScheme string // Authorization header scheme ("Token" or "Bearer")
	DeviceID   string // sent along with uploaded results
	GroupIDs   string // comma-separated group ids, e.g. "1,2,3"

	PingBinary  string        // ping executable
	PingCount   int           // echo requests per domain
	PingTimeout time.Duration // per-domain ping timeout
	ProbeDelay  time.Duration // pause between two probes
	DNSCheck    bool          // log a DNS diagnosis for hosts that fail ping

	HTTPTimeout   time.Duration // fetch calls
	UploadTimeout time.Duration // results upload

	LogDir   string // rotated JSON logs
	LogLevel string // debug|info|warn|error

	SlackWebhook   string
	TelegramToken  string
	TelegramChatID string
	TelegramAPIURL string
	PushgatewayURL string // empty disables the metrics push
	MetricsJobName string
}

const (
	defaultPingCount = 4
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 2 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("django_api_url", "http://localhost:8000")
	v.SetDefault("automation_token", "")
	v.SetDefault("api_auth_scheme", "Token")
	v.SetDefault("device_id", "")
	v.SetDefault("group_ids", "1")

	v.SetDefault("ping_binary", "ping")
	v.SetDefault("ping_count", defaultPingCount)
	v.SetDefault("ping_timeout", defaultTimeout.String())
	v.SetDefault("probe_delay", defaultDelay.String())
	v.SetDefault("dns_check", true)

	v.SetDefault("http_timeout", defaultTimeout.String())
	v.SetDefault("upload_timeout", defaultTimeout.String())

	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")

	v.SetDefault("slack_webhook_url", "")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_chat_id", "")
	v.SetDefault("telegram_api_url", "https://api.telegram.org")
	v.SetDefault("pushgateway_url", "")
	v.SetDefault("metrics_job_name", "scopeping")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	// GROUP_IDS="" means no groups, not the default group.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return v
}

// FromEnv reads the configuration from the environment only.
func FromEnv() Config {
	return fromViper(newViper())
}

// Load reads an optional YAML file and lets the environment override it.
// An empty path behaves like FromEnv.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		APIURL:         strings.TrimRight(strings.TrimSpace(v.GetString("django_api_url")), "/"),
		Token:          strings.TrimSpace(v.GetString("automation_token")),
		AuthScheme:     strings.TrimSpace(v.GetString("api_auth_scheme")),
		DeviceID:       strings.TrimSpace(v.GetString("device_id")),
		GroupIDs:       v.GetString("group_ids"),
		PingBinary:     strings.TrimSpace(v.GetString("ping_binary")),
		LogDir:         v.GetString("log_dir"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		SlackWebhook:   strings.TrimSpace(v.GetString("slack_webhook_url")),
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_bot_token")),
		TelegramChatID: strings.TrimSpace(v.GetString("telegram_chat_id")),
		TelegramAPIURL: strings.TrimRight(v.GetString("telegram_api_url"), "/"),
		PushgatewayURL: strings.TrimSpace(v.GetString("pushgateway_url")),
		MetricsJobName: v.GetString("metrics_job_name"),
	}

	// Numbers and durations: bad values fall back to defaults.
	cfg.PingCount = defaultPingCount
	if n, err := parseInt(v.GetString("ping_count")); err == nil && n > 0 {
		cfg.PingCount = n
	}
	cfg.PingTimeout = durationOr(v.GetString("ping_timeout"), defaultTimeout, false)
	cfg.ProbeDelay = durationOr(v.GetString("probe_delay"), defaultDelay, true)
	cfg.HTTPTimeout = durationOr(v.GetString("http_timeout"), defaultTimeout, false)
	cfg.UploadTimeout = durationOr(v.GetString("upload_timeout"), defaultTimeout, false)
	cfg.DNSCheck = boolOr(v.GetString("dns_check"), true)

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Token"
	}
	if cfg.PingBinary == "" {
		cfg.PingBinary = "ping"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.MetricsJobName == "" {
		cfg.MetricsJobName = "scopeping"
	}
	return cfg
}

// GroupIDList splits GroupIDs on commas, dropping blanks.
func (c Config) GroupIDList() []string {
	var out []string
	for _, g := range strings.Split(c.GroupIDs, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// Validate reports settings that make a run pointless.
func (c Config) Validate() error {
	var problems []string
	if c.APIURL == "" {
		problems = append(problems, "DJANGO_API_URL is empty")
	}
	if c.Token == "" {
		problems = append(problems, "AUTOMATION_TOKEN is empty")
	}
	if len(c.GroupIDList()) == 0 {
		problems = append(problems, "GROUP_IDS has no group ids")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func boolOr(raw string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return b
}

// durationOr accepts Go durations ("30s") or plain seconds ("30").
func durationOr(raw string, def time.Duration, allowZero bool) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		n, nerr := parseInt(raw)
		if nerr != nil {
			return def
		}
		d = time.Duration(n) * time.Second
	}
	if d < 0 || (d == 0 && !allowZero) {
		return def
	}
	return d
}
