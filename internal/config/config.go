package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"realflow/internal/validation"
)

// Sink names accepted by PRIMARY_SINK.
const (
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"
	SinkDynamoDB = "dynamodb"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string // debug, info, warn, error

	// Server
	ServerAddr     string
	BaseURL        string
	ServiceVersion string
	RateLimitMax   int // requests per minute per IP

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Sinks; each one is enabled when its settings are present
	PrimarySink string
	SinkTimeout time.Duration

	DatabaseURL string

	GoogleSheetID           string
	GoogleSheetsCredentials string // service account JSON, inline or a file path
	SheetsCallsTab          string
	SheetsHotLeadsTab       string
	SheetsCallbacksTab      string
	SheetsPropertyTab       string

	DynamoDBTable      string
	DynamoDBEndpoint   string // local endpoint override, e.g. http://localhost:8000
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Shared storage for rate limiting and sessions
	RedisURL string

	// OIDC (dashboard login)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for signing cookies (min 32 chars)

	// Email
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPFromName    string
	SMTPTLS         string // none, tls, starttls
	HotLeadNotifyTo []string

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Realflow"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
	SiteLogoURL string // env: SITE_LOGO_URL, default: "" (no logo, text only)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServerAddr:     getEnv("SERVER_ADDR", ":8000"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8000"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
		RateLimitMax:   getEnvInt("RATE_LIMIT_MAX", 300),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),

		PrimarySink: strings.ToLower(getEnv("PRIMARY_SINK", SinkSheets)),
		SinkTimeout: getEnvDuration("SINK_TIMEOUT", 10*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GoogleSheetID:           getEnv("GOOGLE_SHEET_ID", ""),
		GoogleSheetsCredentials: getEnv("GOOGLE_SHEETS_CREDENTIALS", ""),
		SheetsCallsTab:          getEnv("SHEETS_CALLS_TAB", "Calls"),
		SheetsHotLeadsTab:       getEnv("SHEETS_HOT_LEADS_TAB", "Hot Leads"),
		SheetsCallbacksTab:      getEnv("SHEETS_CALLBACKS_TAB", "Callbacks"),
		SheetsPropertyTab:       getEnv("SHEETS_PROPERTY_REQUESTS_TAB", "Property Requests"),

		DynamoDBTable:      getEnv("DYNAMODB_TABLE", ""),
		DynamoDBEndpoint:   getEnv("DYNAMODB_ENDPOINT", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:8000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),

		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:        getEnv("SMTP_FROM", ""),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "Realflow"),
		SMTPTLS:         strings.ToLower(getEnv("SMTP_TLS", "starttls")),
		HotLeadNotifyTo: splitList(getEnv("HOT_LEAD_NOTIFY_TO", "")),

		SiteTitle:   getEnv("SITE_TITLE", "Realflow"),
		SiteTagline: getEnv("SITE_TAGLINE", "Lead intelligence for every call"),
		SiteFooter:  getEnv("SITE_FOOTER", "Realflow AI Agent Backend"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports configuration that would fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.PrimarySink {
	case SinkSheets, SinkPostgres, SinkDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("PRIMARY_SINK %q must be one of %s, %s, %s", c.PrimarySink, SinkSheets, SinkPostgres, SinkDynamoDB))
	}

	switch c.SMTPTLS {
	case "none", "tls", "starttls":
	default:
		errs = append(errs, fmt.Errorf("SMTP_TLS %q must be none, tls or starttls", c.SMTPTLS))
	}

	if c.IsOIDCEnabled() {
		if ok, msg := validation.ValidateURL(c.OIDCRedirectURL); !ok {
			errs = append(errs, fmt.Errorf("OIDC_REDIRECT_URL: %s", msg))
		}
		if len(c.SessionSecret) < 32 {
			errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
		}
	}

	return errors.Join(errs...)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOIDCEnabled returns true if dashboard login is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// IsDatabaseEnabled returns true if the Postgres sink is configured.
func (c *Config) IsDatabaseEnabled() bool {
	return c.DatabaseURL != ""
}

// IsSheetsEnabled returns true if the spreadsheet sink is configured.
func (c *Config) IsSheetsEnabled() bool {
	return c.GoogleSheetID != "" && c.GoogleSheetsCredentials != ""
}

// IsDynamoDBEnabled returns true if the archive sink is configured.
func (c *Config) IsDynamoDBEnabled() bool {
	return c.DynamoDBTable != ""
}

// IsEmailEnabled returns true if SMTP is configured well enough to send.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// SheetsCredentialsJSON returns the service account key. The setting holds
// either the JSON document itself or a path to it.
func (c *Config) SheetsCredentialsJSON() ([]byte, error) {
	v := strings.TrimSpace(c.GoogleSheetsCredentials)
	if strings.HasPrefix(v, "{") {
		return []byte(v), nil
	}
	data, err := os.ReadFile(v)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
	}
	return data, nil
}
