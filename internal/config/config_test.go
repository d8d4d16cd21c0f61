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
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, "espeak-ng", cfg.Speech.Command)
	assert.Equal(t, 300*time.Millisecond, cfg.Stroke.Delay)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
dictionary:
  extra: [mine.jsonl, /abs/other.yaml]
speech:
  command: say
  wpm: 200
server:
  session_ttl: 30m
log:
  format: json
`), 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "mine.jsonl"), "/abs/other.yaml"}, cfg.Dictionary.Extra)
	assert.Equal(t, "say", cfg.Speech.Command)
	assert.Equal(t, 200, cfg.Speech.WPM)
	assert.Equal(t, "cmn", cfg.Speech.Voice, "unset keys keep defaults")
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SUIWEN_SERVER_ADDR", ":9999")
	t.Setenv("SUIWEN_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("log:\n  format: xml\n"), 0644))

	_, err := Load(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"wpm", func(c *Config) { c.Speech.WPM = 0 }},
		{"stroke delay", func(c *Config) { c.Stroke.Delay = 0 }},
		{"session ttl", func(c *Config) { c.Server.SessionTTL = -time.Second }},
		{"upload size", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"extra ext", func(c *Config) { c.Dictionary.Extra = []string{"words.csv"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Speech.Voice = "zh"
	cfg.Server.SessionTTL = 90 * time.Minute
	require.NoError(t, Save(filepath.Join(dir, FileName), cfg))

	loaded, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogFile(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "suiwen.log"), LogFile("a"))
}
