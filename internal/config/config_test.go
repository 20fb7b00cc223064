package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("DJANGO_API_URL", "https://scope.example.com/")
	t.Setenv("AUTOMATION_TOKEN", " tok_123 ")
	t.Setenv("DEVICE_ID", "runner-7")
	t.Setenv("GROUP_IDS", " 1, 2,,3 ")
	t.Setenv("PING_COUNT", "2")
	t.Setenv("PING_TIMEOUT", "5s")
	t.Setenv("PROBE_DELAY", "0")
	t.Setenv("HTTP_TIMEOUT", "12")
	t.Setenv("LOG_DIR", "./_testlogs")

	cfg := FromEnv()

	if cfg.APIURL != "https://scope.example.com" {
		t.Fatalf("api url not normalized: %q", cfg.APIURL)
	}
	if cfg.Token != "tok_123" || cfg.DeviceID != "runner-7" {
		t.Fatalf("token/device wrong: %+v", cfg)
	}
	ids := cfg.GroupIDList()
	if len(ids) != 3 || ids[0] != "1" || ids[2] != "3" {
		t.Fatalf("group ids wrong: %v", ids)
	}
	if cfg.PingCount != 2 || cfg.PingTimeout != 5*time.Second {
		t.Fatalf("ping settings wrong: count=%d timeout=%v", cfg.PingCount, cfg.PingTimeout)
	}
	if cfg.ProbeDelay != 0 {
		t.Fatalf("probe delay 0 should be allowed, got %v", cfg.ProbeDelay)
	}
	if cfg.HTTPTimeout != 12*time.Second {
		t.Fatalf("plain seconds should parse, got %v", cfg.HTTPTimeout)
	}
	if !cfg.DNSCheck {
		t.Fatalf("dns check should default to on")
	}
	if cfg.LogDir != "./_testlogs" {
		t.Fatalf("log dir wrong: %q", cfg.LogDir)
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("PING_COUNT", "-3")
	t.Setenv("PING_TIMEOUT", "soon")
	t.Setenv("UPLOAD_TIMEOUT", "0s")
	t.Setenv("API_AUTH_SCHEME", "")
	t.Setenv("DNS_CHECK", "false")

	cfg := FromEnv()

	if cfg.PingCount != 4 {
		t.Fatalf("want default ping count 4, got %d", cfg.PingCount)
	}
	if cfg.PingTimeout != 30*time.Second || cfg.UploadTimeout != 30*time.Second {
		t.Fatalf("want default timeouts, got ping=%v upload=%v", cfg.PingTimeout, cfg.UploadTimeout)
	}
	if cfg.ProbeDelay != 2*time.Second {
		t.Fatalf("want default delay 2s, got %v", cfg.ProbeDelay)
	}
	if cfg.DNSCheck {
		t.Fatalf("DNS_CHECK=false should disable the dns check")
	}
	if cfg.AuthScheme != "Token" || cfg.PingBinary != "ping" {
		t.Fatalf("want defaults for scheme/binary, got %q/%q", cfg.AuthScheme, cfg.PingBinary)
	}

	// ensure defaults don't crash if missing env
	os.Unsetenv("PING_COUNT")
	_ = FromEnv()
}

func TestFromEnv_EmptyGroupIDsMeansNoGroups(t *testing.T) {
	t.Setenv("GROUP_IDS", "")
	t.Setenv("DNS_CHECK", "")
	t.Setenv("LOG_DIR", "")

	cfg := FromEnv()

	if ids := cfg.GroupIDList(); len(ids) != 0 {
		t.Fatalf("empty GROUP_IDS should yield no groups, got %v", ids)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("validate should flag empty group ids")
	}
	if !cfg.DNSCheck || cfg.LogDir != "logs" {
		t.Fatalf("empty values should keep defaults: dns=%v log_dir=%q", cfg.DNSCheck, cfg.LogDir)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scopeping.yaml")
	body := []byte("django_api_url: http://file.example\ngroup_ids: \"4,5\"\ndevice_id: from-file\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEVICE_ID", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://file.example" {
		t.Fatalf("file value not used: %q", cfg.APIURL)
	}
	if got := cfg.GroupIDList(); len(got) != 2 || got[1] != "5" {
		t.Fatalf("group ids from file wrong: %v", got)
	}
	if cfg.DeviceID != "from-env" {
		t.Fatalf("env should override file, got %q", cfg.DeviceID)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("group_ids: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for broken yaml")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{APIURL: "http://x", Token: "t", GroupIDs: "1"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := Config{GroupIDs: " , "}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
