package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	OpenAI   VendorConfig   `yaml:"openai"`
	Gemini   VendorConfig   `yaml:"gemini"`
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	BaseURL             string `yaml:"base_url"` // public URL prefix used in check_status_url links
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Root string `yaml:"root"` // generated letter artifacts live under <root>/letters/
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// VendorConfig holds one AI vendor's connection settings. API keys are
// never read from the YAML file; they come from the environment.
type VendorConfig struct {
	APIKey         string  `yaml:"-"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
}

// Timeout returns the vendor call timeout as a duration.
func (v VendorConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
		},
		Database: DatabaseConfig{
			Path: "./justicebuddy.db",
		},
		Storage: StorageConfig{
			Root: "./storage",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		OpenAI: VendorConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4",
			TimeoutSeconds: 60,
			MaxTokens:      2048,
			Temperature:    0.7,
		},
		Gemini: VendorConfig{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			Model:          "gemini-pro",
			TimeoutSeconds: 60,
			MaxTokens:      2048,
			Temperature:    0.7,
		},
	}
}

// Load reads a YAML config file and merges it over defaults, then pulls
// secrets from the environment. If the file does not exist, defaults
// are returned without error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("No config file found, using defaults", "path", path)
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
}
