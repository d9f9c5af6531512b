package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "photos", cfg.PhotosDir)
	assert.Equal(t, "sent_messages.json", cfg.LedgerPath)
	assert.Equal(t, "MarkdownV2", cfg.ParseMode)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.Extensions)
	assert.Equal(t, 10*time.Second, time.Duration(cfg.IdleDelay))
	assert.Equal(t, 30*time.Second, time.Duration(cfg.BackoffDelay))
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgrepost.yml")
	data := `archives:
  - exports/messages.html
  - exports/messages2.html
photos_dir: exports/photos
ledger: state/sent.json
bot_token: "12345:token"
channel: "@my_channel"
caption: "[My channel](https://t.me/my_channel)"
extensions: [".jpg", ".png"]
idle_delay: 1m
backoff_delay: 5m
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"exports/messages.html", "exports/messages2.html"}, cfg.Archives)
	assert.Equal(t, "exports/photos", cfg.PhotosDir)
	assert.Equal(t, "state/sent.json", cfg.LedgerPath)
	assert.Equal(t, "12345:token", cfg.BotToken)
	assert.Equal(t, "@my_channel", cfg.Channel)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.Extensions)
	assert.Equal(t, time.Minute, time.Duration(cfg.IdleDelay))
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.BackoffDelay))
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgrepost.yml")
	require.NoError(t, os.WriteFile(path, []byte("idle_delay: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tgrepost.yml")
	require.NoError(t, os.WriteFile(path, []byte("channel: \"@from_file\"\nidle_delay: 10s\n"), 0o644))

	t.Setenv("TGREPOST_CHANNEL", "@from_env")
	t.Setenv("TGREPOST_ARCHIVES", "a.html, b.html")
	t.Setenv("TGREPOST_IDLE_DELAY", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "@from_env", cfg.Channel)
	assert.Equal(t, []string{"a.html", "b.html"}, cfg.Archives)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.IdleDelay))
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.ValidateSources())

	cfg.Archives = []string{"messages.html"}
	require.NoError(t, cfg.ValidateSources())
	require.Error(t, cfg.Validate(), "token still missing")

	cfg.BotToken = "12345:token"
	require.Error(t, cfg.Validate(), "channel still missing")

	cfg.Channel = "@my_channel"
	require.NoError(t, cfg.Validate())
}
