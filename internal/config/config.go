// Package config loads the YAML configuration used by seriesctl.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/tickseries/config"
)

// Config represents the complete configuration.
type Config struct {
	// Log configures the global logger.
	Log LogConfig `yaml:"log"`

	// Store is the store layout shared by every stream unless overridden.
	Store StoreConfig `yaml:"store"`

	// Streams are the independent evaluation streams to replay.
	Streams []StreamConfig `yaml:"streams"`

	// Export configures Parquet output.
	Export ExportConfig `yaml:"export"`

	// Replay configures the replay runner.
	Replay ReplayConfig `yaml:"replay"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// JSON switches output to JSON.
	JSON bool `yaml:"json"`
}

// StoreConfig describes one series store.
type StoreConfig struct {
	// Channels are the channel names in ordinal order.
	Channels []string `yaml:"channels"`

	// Window is the number of ticks retained per channel.
	Window int `yaml:"window"`

	// TrackHistory keeps an unbounded per-channel log next to the window.
	TrackHistory bool `yaml:"track_history"`
}

// StreamConfig describes one replayed stream.
type StreamConfig struct {
	// Name identifies the stream in logs and results.
	Name string `yaml:"name"`

	// Input is a Parquet tick file.
	Input string `yaml:"input"`

	// Output is an optional Parquet file written after the replay.
	Output string `yaml:"output"`

	// Store overrides the top-level store for this stream.
	Store *StoreOverride `yaml:"store,omitempty"`
}

// StoreOverride replaces parts of the top-level store for one stream.
// Empty Channels, a zero Window and a nil TrackHistory inherit.
type StoreOverride struct {
	Channels     []string `yaml:"channels"`
	Window       int      `yaml:"window"`
	TrackHistory *bool    `yaml:"track_history"`
}

// ExportConfig configures Parquet output.
type ExportConfig struct {
	// Compression is one of none, snappy, zstd, lz4, gzip.
	Compression string `yaml:"compression"`

	// Source is "history" or "window".
	Source string `yaml:"source"`
}

// ReplayConfig configures the replay runner.
type ReplayConfig struct {
	// Parallelism bounds the number of streams replayed at once.
	Parallelism int `yaml:"parallelism"`

	// Percentiles enables DDSketch percentiles in stream summaries.
	Percentiles bool `yaml:"percentiles"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
// Store.Channels is empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: defaults.DefaultLogLevel,
			JSON:  defaults.DefaultLogJSON,
		},
		Store: StoreConfig{
			Window:       defaults.DefaultWindowSize,
			TrackHistory: defaults.DefaultTrackHistory,
		},
		Export: ExportConfig{
			Compression: defaults.DefaultExportCompression,
			Source:      defaults.DefaultExportSource,
		},
		Replay: ReplayConfig{
			Parallelism: defaults.DefaultReplayParallelism,
			Percentiles: defaults.DefaultSummaryPercentiles,
		},
	}
}

// StoreFor returns the effective store layout of a stream.
func (c *Config) StoreFor(s StreamConfig) StoreConfig {
	out := c.Store
	if s.Store == nil {
		return out
	}
	if len(s.Store.Channels) > 0 {
		out.Channels = s.Store.Channels
	}
	if s.Store.Window > 0 {
		out.Window = s.Store.Window
	}
	if s.Store.TrackHistory != nil {
		out.TrackHistory = *s.Store.TrackHistory
	}
	return out
}
