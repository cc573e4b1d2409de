// Package config loads run settings from YAML.
//
// A config file is an envelope naming its kind with the settings under def:
//
//	kind: gridastar
//	def:
//	  mapFile: maps/astar.txt
//	  output: text
//	  pathColor: red
//	  searchTimeout: 2s
//	  server:
//	    addr: ":8080"
//	    publishInterval: 100ms
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Kind is the only envelope kind accepted.
const Kind = "gridastar"

// DefaultMapFile is read when nothing else is configured.
const DefaultMapFile = "astar.txt"

// Output modes
const (
	OutputText = "text"
	OutputTUI  = "tui"
	OutputPNG  = "png"
)

var ErrUnknownKind = errors.New("unknown config kind")

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds everything a run needs besides the map itself.
// Field names double as YAML keys; viper lowercases keys, so no yaml tags are used.
type Config struct {
	// MapFile is the text map to search.
	MapFile string `mapstructure:"mapFile"`
	// Output selects text, tui or png.
	Output string `mapstructure:"output"`
	// PNGFile is written when Output is png.
	PNGFile  string `mapstructure:"pngFile"`
	PNGScale int    `mapstructure:"pngScale"`
	// Color toggles escape sequences in text output.
	Color     bool   `mapstructure:"color"`
	PathColor string `mapstructure:"pathColor"`
	// MaxExpansions caps the search; zero is unbounded.
	MaxExpansions int `mapstructure:"maxExpansions"`
	// SearchTimeout is a duration string bounding the search, empty for none.
	SearchTimeout string       `mapstructure:"searchTimeout"`
	Server        ServerConfig `mapstructure:"server"`
}

// ServerConfig configures the live visualiser.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// PublishInterval is the delay between snapshots pushed over the websocket.
	PublishInterval string `mapstructure:"publishInterval"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		MapFile:   DefaultMapFile,
		Output:    OutputText,
		PNGFile:   "astar.png",
		PNGScale:  16,
		Color:     true,
		PathColor: "red",
		Server: ServerConfig{
			Addr:            ":8080",
			PublishInterval: "100ms",
		},
	}
}

// Validate checks enumerations and durations.
func (cfg Config) Validate() error {
	switch cfg.Output {
	case OutputText, OutputTUI, OutputPNG:
	default:
		return fmt.Errorf("output %q: want %s, %s or %s", cfg.Output, OutputText, OutputTUI, OutputPNG)
	}
	if cfg.PNGScale <= 0 {
		return fmt.Errorf("pngScale %d: must be positive", cfg.PNGScale)
	}
	if cfg.MaxExpansions < 0 {
		return fmt.Errorf("maxExpansions %d: must not be negative", cfg.MaxExpansions)
	}
	if cfg.SearchTimeout != "" {
		if _, err := time.ParseDuration(cfg.SearchTimeout); err != nil {
			return fmt.Errorf("searchTimeout: %w", err)
		}
	}
	if _, err := cfg.Server.Interval(); err != nil {
		return fmt.Errorf("server.publishInterval: %w", err)
	}
	return nil
}

// Interval parses PublishInterval.
func (cfg ServerConfig) Interval() (time.Duration, error) {
	interval, err := time.ParseDuration(cfg.PublishInterval)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, fmt.Errorf("interval %v must be positive", interval)
	}
	return interval, nil
}

// WithSearchDeadline returns a context extended by the search timeout, if one is specified.
func (cfg Config) WithSearchDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if cfg.SearchTimeout != "" {
		duration, err := time.ParseDuration(cfg.SearchTimeout)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads the envelope at path; keys absent from def keep their defaults.
func FromYaml(path string) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return Config{}, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return Config{}, err
	}
	if outerConfig.Kind != Kind {
		return Config{}, fmt.Errorf("%s: %w %q", path, ErrUnknownKind, outerConfig.Kind)
	}

	var def []byte
	if def, err = yaml.Marshal(outerConfig.Def); err != nil {
		return Config{}, err
	}

	innerConfig := Default()
	if err = yaml.Unmarshal(def, &innerConfig); err != nil {
		return Config{}, err
	}
	if err = innerConfig.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return innerConfig, nil
}
