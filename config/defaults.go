// Package config provides configuration defaults for tickseries.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command-line flags.
package config

// =============================================================================
// Store Defaults
// =============================================================================

const (
	// DefaultWindowSize is the number of ticks retained per channel.
	// Override via config: store.window
	DefaultWindowSize = 200

	// DefaultTrackHistory controls the unbounded per-channel history log.
	// Override via config: store.track_history
	DefaultTrackHistory = false
)

// =============================================================================
// Replay Defaults
// =============================================================================

const (
	// DefaultReplayParallelism is the number of streams replayed at once.
	// Each stream owns its store, so streams never contend.
	// Override via config: replay.parallelism
	DefaultReplayParallelism = 4

	// DefaultSummaryPercentiles enables DDSketch percentiles in replay summaries.
	// Override via config: replay.percentiles
	DefaultSummaryPercentiles = true
)

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultExportCompression is the Parquet codec used for exports.
	// Override via config: export.compression
	DefaultExportCompression = "zstd"

	// DefaultExportSource selects what an export writes: "history" or "window".
	// "history" falls back to "window" when the store does not track history.
	// Override via config: export.source
	DefaultExportSource = "history"

	// DefaultReadBatchSize is the number of rows read per Parquet read call.
	DefaultReadBatchSize = 4096
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is the minimum log level.
	// Override via config: log.level
	DefaultLogLevel = "info"

	// DefaultLogJSON switches log output to JSON.
	// Override via config: log.json
	DefaultLogJSON = false
)

// =============================================================================
// Shell Defaults
// =============================================================================

const (
	// DefaultShellPrefix is the interactive prompt.
	DefaultShellPrefix = "series> "

	// DefaultShellWindow is the window used by `seriesctl shell` without -window.
	DefaultShellWindow = 10
)
