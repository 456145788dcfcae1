// Package config loads runtime settings from an optional YAML file and
// THREAT_SCAN_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/imaging"
)

// EnvPrefix prefixes every environment override, e.g. THREAT_SCAN_LOG_LEVEL.
const EnvPrefix = "THREAT_SCAN"

// Config is the complete runtime configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Encode EncodeConfig `mapstructure:"encode"`
	Render RenderConfig `mapstructure:"render"`
}

// LogConfig selects the logger level and encoder.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Mode "release" selects the production JSON encoder; anything else
	// the development console encoder.
	Mode string `mapstructure:"mode"`
}

// EncodeConfig holds defaults for writing containers.
type EncodeConfig struct {
	// Format is the output annotation format. Empty keeps the source
	// format.
	Format string `mapstructure:"format"`

	// Base64 writes text-safe output.
	Base64 bool `mapstructure:"base64"`
}

// RenderConfig holds defaults for mask rendering.
type RenderConfig struct {
	MaskColor string  `mapstructure:"mask_color"`
	Zoom      float64 `mapstructure:"zoom"`
}

// Load reads configuration from an optional YAML file and the environment.
//
// An empty path skips the file. Environment variables override file
// values; a key such as log.level maps to THREAT_SCAN_LOG_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "debug")

	v.SetDefault("encode.format", "")
	v.SetDefault("encode.base64", false)

	v.SetDefault("render.mask_color", imaging.DefaultMaskColor)
	v.SetDefault("render.zoom", 1.0)
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			Mode:  "debug",
		},
		Render: RenderConfig{
			MaskColor: imaging.DefaultMaskColor,
			Zoom:      1.0,
		},
	}
}

// Validate checks values that would otherwise fail later, mid-operation.
func (c *Config) Validate() error {
	if c.Encode.Format != "" {
		if _, err := detection.ParseFormat(c.Encode.Format); err != nil {
			return fmt.Errorf("encode.format: %w", err)
		}
	}
	if _, err := imaging.ParseColor(c.Render.MaskColor); err != nil {
		return fmt.Errorf("render.mask_color: %w", err)
	}
	if c.Render.Zoom <= 0 || c.Render.Zoom > imaging.MaxZoom {
		return fmt.Errorf("render.zoom: %v outside (0, %v]", c.Render.Zoom, imaging.MaxZoom)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
