// Package config loads dataexec process settings. Sources are applied in
// order: defaults, an optional TOML file, DATAEXEC_* environment variables,
// then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Defaults.
const (
	DefaultLogLevel       = "info"
	DefaultTransport      = "stdio"
	DefaultHTTPAddr       = "localhost:8001"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxOutputBytes = 64 * 1024
)

// ConfigEnv names the TOML config file when -config is not given.
const ConfigEnv = "DATAEXEC_CONFIG"

var (
	// ErrInvalidTransport is returned by Validate for an unknown transport.
	ErrInvalidTransport = errors.New("config: invalid transport")
	// ErrInvalidLogLevel is returned by Validate for an unparseable level.
	ErrInvalidLogLevel = errors.New("config: invalid log level")
	// ErrNegativeLimit is returned by Validate for a negative timeout or
	// output limit.
	ErrNegativeLimit = errors.New("config: negative limit")
)

// Config holds dataexec process settings.
type Config struct {
	LogLevel       string        `toml:"log_level" env:"DATAEXEC_LOG_LEVEL"`
	LogPretty      bool          `toml:"log_pretty" env:"DATAEXEC_LOG_PRETTY"`
	Transport      string        `toml:"transport" env:"DATAEXEC_TRANSPORT"`
	HTTPAddr       string        `toml:"http_addr" env:"DATAEXEC_HTTP_ADDR"`
	DefaultTimeout time.Duration `toml:"-" env:"DATAEXEC_DEFAULT_TIMEOUT"`
	MaxOutputBytes int           `toml:"max_output_bytes" env:"DATAEXEC_MAX_OUTPUT_BYTES"`
	DataDir        string        `toml:"data_dir" env:"DATAEXEC_DATA_DIR"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       DefaultLogLevel,
		Transport:      DefaultTransport,
		HTTPAddr:       DefaultHTTPAddr,
		DefaultTimeout: DefaultTimeout,
		MaxOutputBytes: DefaultMaxOutputBytes,
	}
}

type fileConfig struct {
	LogLevel       string `toml:"log_level"`
	LogPretty      bool   `toml:"log_pretty"`
	Transport      string `toml:"transport"`
	HTTPAddr       string `toml:"http_addr"`
	DefaultTimeout string `toml:"default_timeout"`
	MaxOutputBytes int    `toml:"max_output_bytes"`
	DataDir        string `toml:"data_dir"`
}

// LoadFile overlays the keys defined in the TOML file at path onto cfg.
// Keys absent from the file leave cfg unchanged.
func LoadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config file: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_pretty") {
		cfg.LogPretty = raw.LogPretty
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.TrimSpace(raw.Transport)
	}
	if meta.IsDefined("http_addr") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("default_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DefaultTimeout))
		if err != nil {
			return fmt.Errorf("parse default_timeout: %w", err)
		}
		cfg.DefaultTimeout = d
	}
	if meta.IsDefined("max_output_bytes") {
		cfg.MaxOutputBytes = raw.MaxOutputBytes
	}
	if meta.IsDefined("data_dir") {
		cfg.DataDir = strings.TrimSpace(raw.DataDir)
	}
	return nil
}

// ParseEnv overlays DATAEXEC_* environment variables onto cfg. Unset
// variables leave the current value in place.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfig builds a Config from every source. The -config flag (or
// DATAEXEC_CONFIG) names the optional TOML file; flags given in args win
// over everything else.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}

	var (
		flags Config
		path  string
	)
	defaults := Default()
	fs.StringVar(&path, "config", "", "Path to a TOML config file (env DATAEXEC_CONFIG)")
	fs.StringVar(&flags.LogLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&flags.LogPretty, "log-pretty", defaults.LogPretty, "Human-readable console logs")
	fs.StringVar(&flags.Transport, "transport", defaults.Transport, "MCP transport: stdio or http")
	fs.StringVar(&flags.HTTPAddr, "http-addr", defaults.HTTPAddr, "Listen address for the http transport")
	fs.DurationVar(&flags.DefaultTimeout, "timeout", defaults.DefaultTimeout, "Default script timeout")
	fs.IntVar(&flags.MaxOutputBytes, "max-output-bytes", defaults.MaxOutputBytes, "Per-stream script output limit in bytes")
	fs.StringVar(&flags.DataDir, "data-dir", defaults.DataDir, "Directory relative CSV paths are resolved against")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaults
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-pretty":
			cfg.LogPretty = flags.LogPretty
		case "transport":
			cfg.Transport = flags.Transport
		case "http-addr":
			cfg.HTTPAddr = flags.HTTPAddr
		case "timeout":
			cfg.DefaultTimeout = flags.DefaultTimeout
		case "max-output-bytes":
			cfg.MaxOutputBytes = flags.MaxOutputBytes
		case "data-dir":
			cfg.DataDir = flags.DataDir
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, c.Transport)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("%w: timeout %s", ErrNegativeLimit, c.DefaultTimeout)
	}
	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("%w: max output bytes %d", ErrNegativeLimit, c.MaxOutputBytes)
	}
	return nil
}
