package config

import (
	"fmt"

	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/logging"
)

// ValidCompressions lists the accepted export.compression values.
var ValidCompressions = []string{"none", "snappy", "zstd", "lz4", "gzip"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	v := errors.NewValidationErrors()

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		v.Add(errors.NewInvalidValue("log.level", c.Log.Level, "expected debug, info, warn or error"))
	}

	// With streams configured, each stream's effective store is checked instead.
	if len(c.Streams) == 0 {
		v.Add(errors.Wrap(c.Store.Validate(), "store"))
	}
	v.Add(errors.Wrap(c.Export.Validate(), "export"))
	v.Add(errors.Wrap(c.Replay.Validate(), "replay"))

	seen := make(map[string]bool, len(c.Streams))
	for i, s := range c.Streams {
		field := fmt.Sprintf("streams[%d]", i)
		if s.Name == "" {
			v.AddMissing(field + ".name")
		} else if seen[s.Name] {
			v.Add(errors.NewInvalidValue(field+".name", s.Name, "duplicate stream"))
		}
		seen[s.Name] = true

		if s.Input == "" {
			v.AddMissing(field + ".input")
		}
		eff := c.StoreFor(s)
		v.Add(errors.Wrap(eff.Validate(), field+".store"))
	}

	return v.Err()
}

// Validate checks a store layout.
func (c *StoreConfig) Validate() error {
	var errs []error

	if len(c.Channels) == 0 {
		errs = append(errs, errors.NewMissingField("channels"))
	}

	seen := make(map[string]bool, len(c.Channels))
	for i, name := range c.Channels {
		if name == "" {
			errs = append(errs, errors.NewValidation(fmt.Sprintf("channels[%d]", i), "name is empty"))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("channels[%d] %q: %w", i, name, errors.ErrDuplicateChannel))
		}
		seen[name] = true
	}

	if c.Window < 1 {
		errs = append(errs, errors.NewInvalidValue("window", c.Window, "must be at least 1"))
	}

	return errors.Join(errs...)
}

// Validate checks the export configuration.
func (c *ExportConfig) Validate() error {
	var errs []error

	valid := false
	for _, v := range ValidCompressions {
		if c.Compression == v {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, errors.NewInvalidValue("compression", c.Compression, "unsupported algorithm"))
	}

	if c.Source != "history" && c.Source != "window" {
		errs = append(errs, errors.NewInvalidValue("source", c.Source, "expected history or window"))
	}

	return errors.Join(errs...)
}

// Validate checks the replay configuration.
func (c *ReplayConfig) Validate() error {
	if c.Parallelism < 1 {
		return errors.NewInvalidValue("parallelism", c.Parallelism, "must be at least 1")
	}
	return nil
}
