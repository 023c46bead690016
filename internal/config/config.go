package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
	EngineDeepL  = "deepl"
)

const defaultLanguages = "sv-SE nb-NO da-DK de-DE fr-FR it-IT es-ES nl-NL zh-Hans zh-Hant ja-JP ko-KR"

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"production"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	PublicURL       string        `envconfig:"PUBLIC_URL" default:""`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     string        `envconfig:"CORS_ORIGINS" default:"*"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`
	RatePerMinute   int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`

	APIBearer    string `envconfig:"API_BEARER" default:""`
	AuthDisabled bool   `envconfig:"AUTH_DISABLED" default:"false"`

	DefaultLangs    string        `envconfig:"DEFAULT_LANGS" default:""`
	Engine          string        `envconfig:"TRANSLATE_ENGINE" default:"openai"`
	Model           string        `envconfig:"TRANSLATE_MODEL" default:"gpt-4o-mini"`
	Wrap            int           `envconfig:"TRANSLATE_WRAP" default:"42"`
	BatchSize       int           `envconfig:"TRANSLATE_BATCH_SIZE" default:"40"`
	MaxParallel     int           `envconfig:"TRANSLATE_MAX_PARALLEL" default:"4"`
	BatchParallel   int           `envconfig:"TRANSLATE_BATCH_PARALLEL" default:"2"`
	RetryAttempts   int           `envconfig:"TRANSLATE_RETRY_ATTEMPTS" default:"3"`
	RatePerSecond   float64       `envconfig:"TRANSLATE_RATE_PER_SEC" default:"5"`
	RateBurst       int           `envconfig:"TRANSLATE_RATE_BURST" default:"10"`
	ProviderTimeout time.Duration `envconfig:"TRANSLATE_TIMEOUT" default:"5m"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	DeepLAPIKey   string `envconfig:"DEEPL_API_KEY" default:""`
	DeepLBaseURL  string `envconfig:"DEEPL_BASE_URL" default:""`
}

func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse reads the environment without validating it
func Parse() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings needed by every command
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be >= 1")
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	if c.Wrap < 10 || c.Wrap > 200 {
		return fmt.Errorf("TRANSLATE_WRAP must be between 10 and 200")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("TRANSLATE_BATCH_SIZE must be >= 1")
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("TRANSLATE_MAX_PARALLEL must be >= 1")
	}
	if c.BatchParallel < 1 {
		return fmt.Errorf("TRANSLATE_BATCH_PARALLEL must be >= 1")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("TRANSLATE_RETRY_ATTEMPTS must be >= 1")
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("TRANSLATE_RATE_PER_SEC must be >= 0")
	}
	if c.RatePerSecond > 0 && c.RateBurst < 1 {
		return fmt.Errorf("TRANSLATE_RATE_BURST must be >= 1")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("TRANSLATE_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.PublicURL) != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("PUBLIC_URL must be an absolute URL")
		}
	}

	switch c.EngineName() {
	case EngineOpenAI, EngineGemini, EngineDeepL:
	default:
		return fmt.Errorf("TRANSLATE_ENGINE %q is not supported", c.Engine)
	}
	if key := c.APIKeyFor(c.EngineName()); key == "" {
		return fmt.Errorf("an API key for TRANSLATE_ENGINE=%s is required", c.EngineName())
	}
	return nil
}

// ValidateServer adds the checks that only matter when serving HTTP
func (c *Config) ValidateServer() error {
	if c.AuthDisabled {
		return nil
	}
	if strings.TrimSpace(c.APIBearer) == "" {
		return fmt.Errorf("API_BEARER is required unless AUTH_DISABLED=true")
	}
	if len(strings.TrimSpace(c.APIBearer)) < 16 {
		return fmt.Errorf("API_BEARER must be at least 16 characters")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) EngineName() string {
	return strings.ToLower(strings.TrimSpace(c.Engine))
}

// APIKeyFor returns the credential configured for engine, or ""
func (c *Config) APIKeyFor(engine string) string {
	switch engine {
	case EngineOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey)
	case EngineGemini:
		return strings.TrimSpace(c.GeminiAPIKey)
	case EngineDeepL:
		return strings.TrimSpace(c.DeepLAPIKey)
	}
	return ""
}

// Secrets lists every configured credential for scrubbing
func (c *Config) Secrets() []string {
	out := make([]string, 0, 4)
	for _, s := range []string{c.OpenAIAPIKey, c.GeminiAPIKey, c.DeepLAPIKey, c.APIBearer} {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) CORSOriginsList() []string {
	if c == nil {
		return nil
	}
	origins := splitList(c.CORSOrigins, ",")
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// DefaultLanguageList returns DEFAULT_LANGS or the built-in corporate set
func (c *Config) DefaultLanguageList() []string {
	raw := defaultLanguages
	if c != nil && strings.TrimSpace(c.DefaultLangs) != "" {
		raw = c.DefaultLangs
	}
	return splitList(raw, ", ;\t\n")
}

func splitList(raw, seps string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, exists := seen[part]; exists {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
