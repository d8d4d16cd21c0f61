// Package config handles loading and saving user configuration for suiwen.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	Dictionary DictionaryConfig `mapstructure:"dictionary" yaml:"dictionary"`
	Reader     ReaderConfig     `mapstructure:"reader" yaml:"reader"`
	Speech     SpeechConfig     `mapstructure:"speech" yaml:"speech"`
	Stroke     StrokeConfig     `mapstructure:"stroke" yaml:"stroke"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// DictionaryConfig lists extra entry files merged over the built-in table.
type DictionaryConfig struct {
	Extra []string `mapstructure:"extra" yaml:"extra"` // .jsonl or .yaml files, later wins
}

// ReaderConfig holds reader defaults.
type ReaderConfig struct {
	DefaultText string `mapstructure:"default_text" yaml:"default_text"`
	FileDir     string `mapstructure:"file_dir" yaml:"file_dir"` // Start directory of the file picker
	Font        string `mapstructure:"font" yaml:"font"`         // TTF/OTF font with CJK glyphs for the big character
}

// SpeechConfig selects the text-to-speech program.
type SpeechConfig struct {
	Command string `mapstructure:"command" yaml:"command"` // e.g. "espeak-ng"; empty disables speech
	Voice   string `mapstructure:"voice" yaml:"voice"`
	WPM     int    `mapstructure:"wpm" yaml:"wpm"` // Words per minute at normal rate
}

// StrokeConfig overrides the stroke animation style.
type StrokeConfig struct {
	StrokeColor  string        `mapstructure:"stroke_color" yaml:"stroke_color"`
	RadicalColor string        `mapstructure:"radical_color" yaml:"radical_color"`
	Delay        time.Duration `mapstructure:"delay" yaml:"delay"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	SessionTTL      time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	AllowOrigins    []string      `mapstructure:"allow_origins" yaml:"allow_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

// Default returns the configuration used when no file or environment
// variable overrides a key.
func Default() *Config {
	return &Config{
		Dictionary: DictionaryConfig{Extra: []string{}},
		Reader: ReaderConfig{
			DefaultText: "我学京剧。京剧很好看。我跟老师学唱戏。",
		},
		Speech: SpeechConfig{
			Command: "espeak-ng",
			Voice:   "cmn",
			WPM:     175,
		},
		Stroke: StrokeConfig{
			StrokeColor:  "#2b7cff",
			RadicalColor: "#ff6b6b",
			Delay:        300 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      2 * time.Hour,
			AllowOrigins:    []string{"*"},
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("dictionary.extra", d.Dictionary.Extra)

	v.SetDefault("reader.default_text", d.Reader.DefaultText)
	v.SetDefault("reader.file_dir", d.Reader.FileDir)
	v.SetDefault("reader.font", d.Reader.Font)

	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.voice", d.Speech.Voice)
	v.SetDefault("speech.wpm", d.Speech.WPM)

	v.SetDefault("stroke.stroke_color", d.Stroke.StrokeColor)
	v.SetDefault("stroke.radical_color", d.Stroke.RadicalColor)
	v.SetDefault("stroke.delay", d.Stroke.Delay)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads config.yaml from dir, or the file at path when path is set,
// then applies SUIWEN_ environment overrides (server.addr is SUIWEN_SERVER_ADDR).
// A missing file in dir is not an error; a missing explicit path is.
func Load(dir, path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("SUIWEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Dictionary.Extra == nil {
		cfg.Dictionary.Extra = []string{}
	}
	for i, p := range cfg.Dictionary.Extra {
		if !filepath.IsAbs(p) && dir != "" {
			cfg.Dictionary.Extra[i] = filepath.Join(dir, p)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for configuration errors.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Speech.WPM <= 0 {
		return fmt.Errorf("speech.wpm must be positive")
	}
	if c.Stroke.Delay <= 0 {
		return fmt.Errorf("stroke.delay must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	for _, p := range c.Dictionary.Extra {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".jsonl", ".json", ".yaml", ".yml":
		default:
			return fmt.Errorf("dictionary.extra: %s: want .jsonl or .yaml", p)
		}
	}
	return nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "suiwen"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// LogFile returns the log file the terminal UI writes to.
func LogFile(dir string) string {
	return filepath.Join(dir, "suiwen.log")
}
