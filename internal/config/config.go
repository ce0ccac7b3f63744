// Package config loads vizparse settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/chart"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "vizparse.yaml"

// Config is the top-level vizparse configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Parse  ParseConfig  `yaml:"parse"`
	Chart  ChartConfig  `yaml:"chart"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ParseTimeout   time.Duration `yaml:"parse_timeout"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// ParseConfig controls the extractors.
type ParseConfig struct {
	Delimiter            string `yaml:"delimiter"` // one character, "tab", or empty to detect
	Encoding             string `yaml:"encoding"`
	ReadChartHint        bool   `yaml:"read_chart_hint"`
	MaxDecompressedBytes int64  `yaml:"max_decompressed_bytes"` // cap for .gz, .bz2 and .xz payloads
}

// ChartConfig controls inference.
type ChartConfig struct {
	Palette     []string `yaml:"palette"`
	ColorPolicy string   `yaml:"color_policy"` // cycle | truncate
	StrokeWidth float64  `yaml:"stroke_width"`
	DefaultType string   `yaml:"default_type"`
	UseHint     bool     `yaml:"use_hint"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
			ParseTimeout:   30 * time.Second,
			SessionTTL:     time.Hour,
			SweepInterval:  time.Minute,
		},
		Parse: ParseConfig{
			MaxDecompressedBytes: 256 << 20,
		},
		Chart: ChartConfig{
			Palette:     append([]string(nil), chart.DefaultPalette...),
			ColorPolicy: string(chart.PolicyCycle),
			StrokeWidth: chart.DefaultStrokeWidth,
			DefaultType: string(models.ChartBar),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error when path is
// DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VIZPARSE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VIZPARSE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VIZPARSE_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("VIZPARSE_MAX_UPLOAD_BYTES: %w", err)
		}
		c.Server.MaxUploadBytes = n
	}
	return nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0")
	}
	if c.Server.ParseTimeout < 0 {
		return fmt.Errorf("server.parse_timeout must be >= 0")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be > 0")
	}
	if c.Server.SweepInterval <= 0 {
		return fmt.Errorf("server.sweep_interval must be > 0")
	}
	if _, err := c.Parse.DelimiterRune(); err != nil {
		return err
	}
	if c.Parse.MaxDecompressedBytes <= 0 {
		return fmt.Errorf("parse.max_decompressed_bytes must be > 0")
	}
	if len(c.Chart.Palette) == 0 {
		return fmt.Errorf("chart.palette must not be empty")
	}
	for i, color := range c.Chart.Palette {
		if !chart.ValidColor(color) {
			return fmt.Errorf("chart.palette[%d]: invalid color %q", i, color)
		}
	}
	if _, err := chart.ParseColorPolicy(c.Chart.ColorPolicy); err != nil {
		return fmt.Errorf("chart.color_policy: %w", err)
	}
	if c.Chart.StrokeWidth < 0 {
		return fmt.Errorf("chart.stroke_width must be >= 0")
	}
	if _, err := models.ParseChartType(c.Chart.DefaultType); err != nil {
		return fmt.Errorf("chart.default_type: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter, or 0 to detect it.
func (p ParseConfig) DelimiterRune() (rune, error) {
	switch strings.ToLower(p.Delimiter) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(p.Delimiter)
	if size != len(p.Delimiter) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("parse.delimiter: invalid delimiter %q", p.Delimiter)
	}
	return r, nil
}

// Inferrer builds the chart inferrer described by c.
func (c ChartConfig) Inferrer() chart.Inferrer {
	policy, _ := chart.ParseColorPolicy(c.ColorPolicy)
	defaultType, _ := models.ParseChartType(c.DefaultType)
	return chart.Inferrer{
		Palette:     append([]string(nil), c.Palette...),
		Policy:      policy,
		StrokeWidth: c.StrokeWidth,
		DefaultType: defaultType,
		UseHint:     c.UseHint,
	}
}
