package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported provider identities.
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
	ProviderGroq   = "groq"
)

var (
	errInvalidPort      = errors.New("config: invalid PORT number")
	errUnknownProvider  = errors.New("config: AI_PROVIDER must be one of openai, google, groq")
	errRequestLimit     = errors.New("config: MAX_REQUEST_BYTES must be between 1 KiB and 64 MiB")
	errNegativeDuration = errors.New("config: PROVIDER_TIMEOUT must not be negative")
)

// Config holds all application configuration loaded from environment variables,
// optionally overlaid on a YAML file named by A11Y_CONFIG.
type Config struct {
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	ServiceName     string        `yaml:"service_name"`
	Provider        string        `yaml:"provider"`
	OpenAI          Vendor        `yaml:"openai"`
	Google          Vendor        `yaml:"google"`
	Groq            Vendor        `yaml:"groq"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	ReportLanguage  string        `yaml:"report_language"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ZipkinURL       string        `yaml:"zipkin_url"`
}

// Vendor holds the credential and endpoint settings for one AI provider.
type Vendor struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Selected returns the settings of the configured provider.
func (c Config) Selected() Vendor {
	switch c.Provider {
	case ProviderGoogle:
		return c.Google
	case ProviderGroq:
		return c.Groq
	default:
		return c.OpenAI
	}
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:        "3001",
		LogLevel:    "INFO",
		ServiceName: "a11y-insight",
		Provider:    ProviderOpenAI,
		OpenAI: Vendor{
			Model:   "gpt-4",
			BaseURL: "https://api.openai.com/v1",
		},
		Google: Vendor{
			Model:   "gemini-2.5-pro",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		Groq: Vendor{
			Model:   "meta-llama/llama-4-scout-17b-16e-instruct",
			BaseURL: "https://api.groq.com/openai/v1",
		},
		MaxRequestBytes: 10 << 20,
		ReportLanguage:  "pt-BR",
	}
}

// Load reads the optional YAML file, applies environment variables on top,
// and validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("A11Y_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.Provider = strings.ToLower(getEnv("AI_PROVIDER", cfg.Provider))

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = getEnv("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.Google.APIKey = getEnv("GOOGLE_AI_API_KEY", cfg.Google.APIKey)
	cfg.Google.Model = getEnv("GOOGLE_MODEL", cfg.Google.Model)
	cfg.Google.BaseURL = getEnv("GOOGLE_BASE_URL", cfg.Google.BaseURL)
	cfg.Groq.APIKey = getEnv("GROQ_API_KEY", cfg.Groq.APIKey)
	cfg.Groq.Model = getEnv("GROQ_MODEL", cfg.Groq.Model)
	cfg.Groq.BaseURL = getEnv("GROQ_BASE_URL", cfg.Groq.BaseURL)

	cfg.ProviderTimeout = getEnvAsDuration("PROVIDER_TIMEOUT", cfg.ProviderTimeout)
	cfg.MaxRequestBytes = int64(getEnvAsInt("MAX_REQUEST_BYTES", int(cfg.MaxRequestBytes)))
	cfg.ReportLanguage = getEnv("REPORT_LANGUAGE", cfg.ReportLanguage)
	cfg.MetricsEnabled = getEnvAsBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ZipkinURL = getEnv("TRACING_ZIPKIN_URL", cfg.ZipkinURL)

	return cfg, cfg.validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	switch c.Provider {
	case ProviderOpenAI, ProviderGoogle, ProviderGroq:
	default:
		return fmt.Errorf("%w: got %q", errUnknownProvider, c.Provider)
	}

	if c.MaxRequestBytes < 1<<10 || c.MaxRequestBytes > 64<<20 {
		return fmt.Errorf("%w: got %d", errRequestLimit, c.MaxRequestBytes)
	}

	if c.ProviderTimeout < 0 {
		return fmt.Errorf("%w: got %s", errNegativeDuration, c.ProviderTimeout)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
