package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/drawstream"
)

// Config is the streamdump configuration file.
type Config struct {
	Profile  string         `toml:"profile"` // "2d" or "3d"
	Backend  string         `toml:"backend"`
	Logging  LoggingConfig  `toml:"logging"`
	Trace    TraceConfig    `toml:"trace"`
	Capacity CapacityConfig `toml:"capacity"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

type TraceConfig struct {
	Baseline bool `toml:"baseline"`
}

type CapacityConfig struct {
	Commands  int `toml:"commands"`
	Draws     int `toml:"draws"`
	Constants int `toml:"constants"`
}

func defaultConfig() *Config {
	return &Config{
		Profile: "2d",
		Backend: "trace",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// managerOptions converts the config to Manager options.
func (c *Config) managerOptions() ([]drawstream.Option, error) {
	var opts []drawstream.Option
	switch strings.ToLower(c.Profile) {
	case "", "2d":
		opts = append(opts, drawstream.WithDefaults(drawstream.Defaults2D()))
	case "3d":
		opts = append(opts, drawstream.WithDefaults(drawstream.Defaults3D()))
	default:
		return nil, fmt.Errorf("unknown profile %q", c.Profile)
	}
	opts = append(opts,
		drawstream.WithCommandCapacity(c.Capacity.Commands),
		drawstream.WithDrawCapacity(c.Capacity.Draws),
		drawstream.WithConstantCapacity(c.Capacity.Constants))
	return opts, nil
}

// logger builds the slog logger described by the config.
func (c *Config) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch c.Logging.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts)), nil
	}
	return nil, fmt.Errorf("unknown logging format %q", c.Logging.Format)
}
