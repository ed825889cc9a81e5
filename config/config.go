package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ENV_LLM_API_KEY   = "OPENAI_API_KEY"
	ENV_GEMINI_KEY    = "GEMINI_API_KEY"
	ENV_WEBHOOK_URL   = "SLACK_WEBHOOK_URL"
	ENV_SETTINGS_FILE = "SETTINGS_FILE"
	ENV_SERVER_ADDR   = "SERVER_ADDR"
	ENV_LLM_MODEL     = "LLM_MODEL"
	ENV_LLM_BASE_URL  = "LLM_BASE_URL"
	ENV_LOG_LEVEL     = "LOG_LEVEL"

	DefaultSettingsFile = "config/settings.yaml"
	DefaultServerAddr   = ":8501"
	DefaultModel        = "gemini-1.5-flash"
	DefaultLLMBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultLogLevel     = "info"
	DefaultNotifyHeader = "📢 *Customer Feedback Summary*\n"
)

var ErrConfigMissing = errors.New("required configuration missing")

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Env        string `yaml:"-"`
	LLMAPIKey  string `yaml:"-"`
	WebhookURL string `yaml:"-"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	LLM struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"llm"`
	Notify struct {
		Header string `yaml:"header"`
	} `yaml:"notify"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the .env file for env and builds the Config from the process
// environment. Missing secrets yield an error wrapping ErrConfigMissing.
func Load(env string) (*Config, error) {
	LoadEnv(env)
	cfg, err := FromLookup(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	cfg.Env = env
	return cfg, nil
}

// FromLookup builds the Config using lookup for every environment read.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var missing []string
	apiKey := get(ENV_LLM_API_KEY)
	if apiKey == "" {
		apiKey = get(ENV_GEMINI_KEY)
	}
	if apiKey == "" {
		missing = append(missing, ENV_LLM_API_KEY+" (or "+ENV_GEMINI_KEY+")")
	}
	webhookURL := get(ENV_WEBHOOK_URL)
	if webhookURL == "" {
		missing = append(missing, ENV_WEBHOOK_URL)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s not set; add them to the environment or the .env file",
			ErrConfigMissing, strings.Join(missing, ", "))
	}

	settingsFile := get(ENV_SETTINGS_FILE)
	if settingsFile == "" {
		settingsFile = DefaultSettingsFile
	}
	cfg, err := loadSettings(settingsFile)
	if err != nil {
		return nil, err
	}

	cfg.LLMAPIKey = apiKey
	cfg.WebhookURL = webhookURL

	if v := get(ENV_SERVER_ADDR); v != "" {
		cfg.Server.Addr = v
	}
	if v := get(ENV_LLM_MODEL); v != "" {
		cfg.LLM.Model = v
	}
	if v := get(ENV_LLM_BASE_URL); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := get(ENV_LOG_LEVEL); v != "" {
		cfg.Log.Level = v
	}

	applyDefaults(cfg)
	return cfg, nil
}

func loadSettings(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	slog.Info("[Config] Loaded settings file", slog.String("file", path))
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.Notify.Header == "" {
		cfg.Notify.Header = DefaultNotifyHeader
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
