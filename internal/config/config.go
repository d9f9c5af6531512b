// Package config centralizes how tgrepost reads its YAML file and
// environment variables and exposes them as strongly typed Go values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" decode with
// time.ParseDuration semantics.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents runtime configuration for the bot.
type Config struct {
	// Archives lists the exported chat-history HTML documents the bot may
	// draw from. One is picked at random per cycle.
	Archives   []string `yaml:"archives"`
	PhotosDir  string   `yaml:"photos_dir"`
	LedgerPath string   `yaml:"ledger"`
	BotToken   string   `yaml:"bot_token"`
	Channel    string   `yaml:"channel"`
	Caption    string   `yaml:"caption"`
	ParseMode  string   `yaml:"parse_mode"`
	// Extensions lists accepted photo file suffixes such as ".jpg".
	Extensions   []string `yaml:"extensions"`
	IdleDelay    Duration `yaml:"idle_delay"`
	BackoffDelay Duration `yaml:"backoff_delay"`
	LogLevel     string   `yaml:"log_level"`
}

const (
	defaultPhotosDir    = "photos"
	defaultLedgerPath   = "sent_messages.json"
	defaultParseMode    = "MarkdownV2"
	defaultIdleDelay    = 10 * time.Second
	defaultBackoffDelay = 30 * time.Second
	defaultLogLevel     = "info"
)

// Load reads the YAML file at path (optional when path is empty), applies
// TGREPOST_* environment overrides and fills defaults. It follows Go's
// convention of returning (value, error) so callers can handle failures.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// ValidateSources checks the fields every command needs.
func (c *Config) ValidateSources() error {
	if len(c.Archives) == 0 {
		return errors.New("at least one archive document must be configured")
	}
	return nil
}

// Validate checks the fields the sending commands need.
func (c *Config) Validate() error {
	if err := c.ValidateSources(); err != nil {
		return err
	}
	if c.BotToken == "" {
		return errors.New("bot token is not set")
	}
	if c.Channel == "" {
		return errors.New("channel is not set")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := readEnv("TGREPOST_ARCHIVES", ""); v != "" {
		cfg.Archives = splitList(v)
	}
	cfg.PhotosDir = readEnv("TGREPOST_PHOTOS_DIR", cfg.PhotosDir)
	cfg.LedgerPath = readEnv("TGREPOST_LEDGER", cfg.LedgerPath)
	cfg.BotToken = readEnv("TGREPOST_BOT_TOKEN", cfg.BotToken)
	cfg.Channel = readEnv("TGREPOST_CHANNEL", cfg.Channel)
	cfg.Caption = readEnv("TGREPOST_CAPTION", cfg.Caption)
	cfg.ParseMode = readEnv("TGREPOST_PARSE_MODE", cfg.ParseMode)
	if v := readEnv("TGREPOST_EXTENSIONS", ""); v != "" {
		cfg.Extensions = splitList(v)
	}
	cfg.IdleDelay = parseDuration("TGREPOST_IDLE_DELAY", cfg.IdleDelay)
	cfg.BackoffDelay = parseDuration("TGREPOST_BACKOFF_DELAY", cfg.BackoffDelay)
	cfg.LogLevel = readEnv("TGREPOST_LOG_LEVEL", cfg.LogLevel)
}

func applyDefaults(cfg *Config) {
	if cfg.PhotosDir == "" {
		cfg.PhotosDir = defaultPhotosDir
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = defaultLedgerPath
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = defaultParseMode
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".jpg", ".jpeg", ".png"}
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = Duration(defaultIdleDelay)
	}
	if cfg.BackoffDelay <= 0 {
		cfg.BackoffDelay = Duration(defaultBackoffDelay)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
}

func readEnv(key, def string) string {
	// LookupEnv returns (value, true) when the variable is present.
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func splitList(val string) []string {
	out := strings.Split(val, ",")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

func parseDuration(key string, def Duration) Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return Duration(parsed)
		}
	}
	return def
}
