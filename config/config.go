// Package config loads the salon-offers configuration from defaults, an optional
// YAML file, a .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var defaultBaseURLs = map[string]string{
	ProviderGroq:   "https://api.groq.com/openai/v1",
	ProviderOpenAI: "https://api.openai.com/v1",
}

var defaultModels = map[string]string{
	ProviderGroq:   "llama-3.3-70b-versatile",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.0-flash",
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RateLimit      int           `yaml:"rate_limit"`        // uploads per client per window
	RateWindow     time.Duration `yaml:"rate_limit_window"` // refill period of the upload bucket
}

// LLMConfig describes the outbound chat-completion provider. An empty APIKey
// disables AI phrasing and every offer uses the fallback templates.
type LLMConfig struct {
	Provider      string        `yaml:"provider"`
	APIKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// CacheConfig controls caching of AI phrasing. Off by default; entries always
// expire. Redis is used when RedisAddr is set, otherwise an in-process cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   5 * time.Minute,
			IdleTimeout:    60 * time.Second,
			MaxUploadBytes: 10 << 20,
			RateLimit:      5,
			RateWindow:     time.Minute,
		},
		LLM: LLMConfig{
			Provider:      ProviderGroq,
			Timeout:       20 * time.Second,
			RatePerSecond: 5,
			Burst:         5,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path may be empty; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// .env is optional, the process environment wins over it
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	// Provider-specific keys only fill the key for their own provider.
	keyEnv := map[string]string{
		ProviderGroq:   "GROQ_API_KEY",
		ProviderOpenAI: "OPENAI_API_KEY",
		ProviderGemini: "GEMINI_API_KEY",
	}
	if name, ok := keyEnv[c.LLM.Provider]; ok {
		if v := os.Getenv(name); v != "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) applyProviderDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[c.LLM.Provider]
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultBaseURLs[c.LLM.Provider]
	}
}

// AIEnabled reports whether a credential is configured for the LLM provider.
func (c *Config) AIEnabled() bool {
	return c.LLM.APIKey != ""
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm timeout must be positive")
	}
	if c.LLM.RatePerSecond <= 0 || c.LLM.Burst <= 0 {
		return errors.New("llm rate_per_second and burst must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server max_upload_bytes must be positive")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateWindow <= 0 {
		return errors.New("server rate_limit and rate_limit_window must be positive")
	}
	if c.Cache.Enabled && c.Cache.TTL < 0 {
		return errors.New("cache ttl must not be negative")
	}
	return nil
}
