package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"ohttpc/internal/domain"
)

// Settings mirrors the optional TOML settings file. Only keys present in
// the file are applied.
type Settings struct {
	URL            string `toml:"url"`
	KeyConfig      string `toml:"key_config"`
	Concurrency    int    `toml:"concurrency"`
	Requests       int    `toml:"requests"`
	Trust          string `toml:"trust"`
	Timeout        string `toml:"timeout"`
	HTTP3          bool   `toml:"http3"`
	Retries        int    `toml:"retries"`
	RetryBaseDelay string `toml:"retry_base_delay"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	MetricsFile    string `toml:"metrics_file"`
	SummaryFile    string `toml:"summary_file"`

	md toml.MetaData
}

// LoadSettings decodes the settings file at path. Unknown keys are an error.
func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, domain.Wrap(domain.KindConfig, "load settings", err)
	}
	var s Settings
	md, err := toml.Decode(string(b), &s)
	if err != nil {
		return Settings{}, domain.Wrap(domain.KindConfig, "load settings", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, domain.Wrap(domain.KindConfig, "load settings",
			fmt.Errorf("%s: unknown key %q", path, undecoded[0].String()))
	}
	s.md = md
	return s, nil
}

// Apply overlays the keys present in the file onto cfg.
func (s Settings) Apply(cfg *Config) error {
	set := s.md.IsDefined
	if set("url") {
		cfg.URL = s.URL
	}
	if set("key_config") {
		cfg.KeyConfig = s.KeyConfig
	}
	if set("concurrency") {
		cfg.Concurrency = s.Concurrency
	}
	if set("requests") {
		cfg.Requests = s.Requests
	}
	if set("trust") {
		cfg.Trust = s.Trust
	}
	if set("timeout") {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return domain.Wrap(domain.KindConfig, "settings timeout", err)
		}
		cfg.Timeout = d
	}
	if set("http3") {
		cfg.HTTP3 = s.HTTP3
	}
	if set("retries") {
		cfg.Retries = s.Retries
	}
	if set("retry_base_delay") {
		d, err := time.ParseDuration(s.RetryBaseDelay)
		if err != nil {
			return domain.Wrap(domain.KindConfig, "settings retry_base_delay", err)
		}
		cfg.RetryBaseDelay = d
	}
	if set("log_level") {
		cfg.LogLevel = s.LogLevel
	}
	if set("log_format") {
		cfg.LogFormat = s.LogFormat
	}
	if set("metrics_file") {
		cfg.MetricsFile = s.MetricsFile
	}
	if set("summary_file") {
		cfg.SummaryFile = s.SummaryFile
	}
	return nil
}

// ApplyEnv overlays OHTTPC_* environment variables onto cfg. The named env
// files (".env" when none are given) are loaded first if they exist; they
// never override variables already set in the environment.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return domain.Wrap(domain.KindConfig, "load env file", err)
		}
	}

	var err error
	if cfg.Concurrency, err = getEnvInt("OHTTPC_CONCURRENCY", cfg.Concurrency); err != nil {
		return err
	}
	if cfg.Requests, err = getEnvInt("OHTTPC_REQUESTS", cfg.Requests); err != nil {
		return err
	}
	if cfg.Retries, err = getEnvInt("OHTTPC_RETRIES", cfg.Retries); err != nil {
		return err
	}
	if cfg.Timeout, err = getEnvDuration("OHTTPC_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}
	cfg.Trust = getEnv("OHTTPC_TRUST", cfg.Trust)
	cfg.LogLevel = getEnv("OHTTPC_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("OHTTPC_LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsFile = getEnv("OHTTPC_METRICS_FILE", cfg.MetricsFile)
	cfg.SummaryFile = getEnv("OHTTPC_SUMMARY_FILE", cfg.SummaryFile)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.Wrap(domain.KindConfig, key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, domain.Wrap(domain.KindConfig, key, err)
	}
	return d, nil
}
