package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PRIMARY_SINK", "SERVER_ADDR", "SINK_TIMEOUT", "RATE_LIMIT_MAX", "HOT_LEAD_NOTIFY_TO", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.PrimarySink != SinkSheets {
		t.Errorf("PrimarySink = %q, want %q", cfg.PrimarySink, SinkSheets)
	}
	if cfg.ServerAddr != ":8000" {
		t.Errorf("ServerAddr = %q, want :8000", cfg.ServerAddr)
	}
	if cfg.SinkTimeout != 10*time.Second {
		t.Errorf("SinkTimeout = %v, want 10s", cfg.SinkTimeout)
	}
	if cfg.RateLimitMax != 300 {
		t.Errorf("RateLimitMax = %d, want 300", cfg.RateLimitMax)
	}
	if cfg.HotLeadNotifyTo != nil {
		t.Errorf("HotLeadNotifyTo = %v, want nil", cfg.HotLeadNotifyTo)
	}
	if cfg.IsDatabaseEnabled() {
		t.Error("IsDatabaseEnabled() = true without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PRIMARY_SINK", "Postgres")
	t.Setenv("SINK_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_MAX", "not-a-number")
	t.Setenv("HOT_LEAD_NOTIFY_TO", "a@example.com, ,b@example.com")
	t.Setenv("GOOGLE_SHEET_ID", "sheet")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS", "{}")

	cfg := Load()

	if cfg.PrimarySink != SinkPostgres {
		t.Errorf("PrimarySink = %q, want %q", cfg.PrimarySink, SinkPostgres)
	}
	if cfg.SinkTimeout != 3*time.Second {
		t.Errorf("SinkTimeout = %v, want 3s", cfg.SinkTimeout)
	}
	if cfg.RateLimitMax != 300 {
		t.Errorf("RateLimitMax = %d, want fallback 300", cfg.RateLimitMax)
	}
	if want := []string{"a@example.com", "b@example.com"}; !reflect.DeepEqual(cfg.HotLeadNotifyTo, want) {
		t.Errorf("HotLeadNotifyTo = %v, want %v", cfg.HotLeadNotifyTo, want)
	}
	if !cfg.IsSheetsEnabled() {
		t.Error("IsSheetsEnabled() = false, want true")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{PrimarySink: SinkSheets, SMTPTLS: "starttls"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad primary", func(c *Config) { c.PrimarySink = "s3" }, "PRIMARY_SINK"},
		{"bad tls", func(c *Config) { c.SMTPTLS = "ssl" }, "SMTP_TLS"},
		{"oidc bad redirect", func(c *Config) {
			c.OIDCIssuer, c.OIDCClientID = "https://idp", "client"
			c.OIDCRedirectURL = "ftp://x"
			c.SessionSecret = strings.Repeat("s", 32)
		}, "OIDC_REDIRECT_URL"},
		{"oidc short secret", func(c *Config) {
			c.OIDCIssuer, c.OIDCClientID = "https://idp", "client"
			c.OIDCRedirectURL = "https://app/auth/callback"
			c.SessionSecret = "short"
		}, "SESSION_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSheetsCredentialsJSON(t *testing.T) {
	inline := &Config{GoogleSheetsCredentials: ` {"type":"service_account"}`}
	got, err := inline.SheetsCredentialsJSON()
	if err != nil || !strings.HasPrefix(string(got), "{") {
		t.Errorf("SheetsCredentialsJSON() inline = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	fromFile := &Config{GoogleSheetsCredentials: path}
	got, err = fromFile.SheetsCredentialsJSON()
	if err != nil || string(got) != `{"type":"file"}` {
		t.Errorf("SheetsCredentialsJSON() file = %q, %v", got, err)
	}

	missing := &Config{GoogleSheetsCredentials: filepath.Join(t.TempDir(), "nope.json")}
	if _, err := missing.SheetsCredentialsJSON(); err == nil {
		t.Error("SheetsCredentialsJSON() missing file error = nil")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadYAMLFile(filepath.Join(dir, "missing.yaml"))
	if err != nil || cfg != nil {
		t.Fatalf("loadYAMLFile(missing) = %v, %v, want nil, nil", cfg, err)
	}
	if cfg.FieldAliases() != nil || cfg.ToolNames() != nil {
		t.Error("nil YAMLConfig accessors must return nil")
	}

	path := filepath.Join(dir, "config.yaml")
	content := `
aliases:
  caller_phone: [mobile, cell]
tool_aliases:
  collect_caller_information: [save_lead]
notify:
  hot_leads: [sales@example.com, a@example.com]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err = loadYAMLFile(path)
	if err != nil {
		t.Fatalf("loadYAMLFile() error = %v", err)
	}
	if want := []string{"mobile", "cell"}; !reflect.DeepEqual(cfg.FieldAliases()["caller_phone"], want) {
		t.Errorf("FieldAliases()[caller_phone] = %v, want %v", cfg.FieldAliases()["caller_phone"], want)
	}
	if want := []string{"save_lead"}; !reflect.DeepEqual(cfg.ToolNames()["collect_caller_information"], want) {
		t.Errorf("ToolNames() = %v", cfg.ToolNames())
	}
	got := cfg.HotLeadRecipients([]string{"a@example.com"})
	if want := []string{"a@example.com", "sales@example.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("HotLeadRecipients() = %v, want %v", got, want)
	}

	if err := os.WriteFile(path, []byte("aliases: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadYAMLFile(path); err == nil {
		t.Error("loadYAMLFile(invalid) error = nil")
	}
}
