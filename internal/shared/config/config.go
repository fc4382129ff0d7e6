package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// DefaultModel is the Gemini model used when GEMINI_MODEL is unset.
const DefaultModel = "gemini-3-flash-preview"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	AuditRatePerMinute float64
	AuditRateBurst     int

	SnapshotEnabled bool
	SnapshotTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// HasGeminiKey reports whether a provider credential is configured.
func (c Config) HasGeminiKey() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Load reads configuration from .env files and environment variables with
// sensible defaults. Environment variables win over file values.
func Load() (Config, error) {
	return LoadFrom(".env", "cmd/.env")
}

// LoadFrom is Load with an explicit list of optional dotenv files.
func LoadFrom(envFiles ...string) (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("gemini_model", DefaultModel)
	v.SetDefault("gemini_base_url", "")
	v.SetDefault("gemini_timeout_seconds", 120)
	v.SetDefault("audit_rate_per_minute", 6)
	v.SetDefault("audit_rate_burst", 3)
	v.SetDefault("snapshot_enabled", false)
	v.SetDefault("snapshot_timeout_seconds", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY", "GOOGLE_API_KEY"); err != nil {
		return Config{}, eris.Wrap(err, "config: bind env")
	}

	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			return Config{}, eris.Wrapf(err, "config: read %s", path)
		}
	}

	cfg := Config{
		Port:               v.GetString("port"),
		Env:                normalizeEnv(v.GetString("env")),
		CORSAllowOrigin:    splitAndTrim(v.GetString("cors_allow_origins")),
		GeminiAPIKey:       strings.TrimSpace(v.GetString("gemini_api_key")),
		GeminiModel:        strings.TrimSpace(v.GetString("gemini_model")),
		GeminiBaseURL:      strings.TrimSpace(v.GetString("gemini_base_url")),
		GeminiTimeout:      seconds(v.GetInt("gemini_timeout_seconds"), 120),
		AuditRatePerMinute: v.GetFloat64("audit_rate_per_minute"),
		AuditRateBurst:     v.GetInt("audit_rate_burst"),
		SnapshotEnabled:    v.GetBool("snapshot_enabled"),
		SnapshotTimeout:    seconds(v.GetInt("snapshot_timeout_seconds"), 10),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultModel
	}
	return cfg, nil
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
