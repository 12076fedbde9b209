// Package series implements a per-channel rolling-window store for
// bar-by-bar evaluation.
//
// Each tick the owning runtime writes one pending value per channel with
// Set, then calls Advance. Advance commits every pending value at once or,
// if any channel was not written, nothing at all. Reads go through Get,
// which returns an immutable View indexed in "ticks ago".
//
//	s, _ := series.New([]string{"open", "close"}, 200)
//	s.Set("open", 101.5)
//	s.Set("close", 102.0)
//	if err := s.Advance(); err != nil { ... }
//	v, _ := s.Get("close")
//	prev, err := v.At(1)
//
// A Store is not safe for concurrent use. Independent streams should each
// own a Store.
package series

import (
	"fmt"
	"log/slog"

	"github.com/xtxerr/tickseries/internal/config"
	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/logging"
	"github.com/xtxerr/tickseries/internal/window"
)

// Store holds the committed window, the pending heads of the in-flight tick
// and, optionally, the unbounded history log of every channel.
type Store struct {
	names    []string
	ordinals map[string]int
	frame    *window.Frame

	// In-flight tick
	pending []float64
	written []bool
	nWrites int

	history [][]float64 // nil when tracking is disabled

	log *slog.Logger

	// Statistics
	writes   int64
	rejected int64
}

// Option configures a Store.
type Option func(*Store)

// WithHistory enables the unbounded per-channel history log.
func WithHistory(enabled bool) Option {
	return func(s *Store) {
		if enabled && s.history == nil {
			s.history = make([][]float64, len(s.names))
		}
		if !enabled {
			s.history = nil
		}
	}
}

// WithLogger replaces the default component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Store for the given channels, retaining capacity ticks each.
// Ordinals follow the order of names.
func New(names []string, capacity int, opts ...Option) (*Store, error) {
	if len(names) == 0 {
		return nil, errors.NewMissingField("channels")
	}

	ordinals := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.NewValidation(fmt.Sprintf("channels[%d]", i), "name is empty")
		}
		if _, dup := ordinals[name]; dup {
			return nil, fmt.Errorf("channel %q: %w", name, errors.ErrDuplicateChannel)
		}
		ordinals[name] = i
	}

	frame, err := window.New(len(names), capacity)
	if err != nil {
		return nil, errors.Wrap(err, "allocate window")
	}

	s := &Store{
		names:    append([]string(nil), names...),
		ordinals: ordinals,
		frame:    frame,
		pending:  make([]float64, len(names)),
		written:  make([]bool, len(names)),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Component("series")
	}

	return s, nil
}

// NewFromConfig creates a Store from a store configuration.
func NewFromConfig(cfg config.StoreConfig, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithHistory(cfg.TrackHistory)}, opts...)
	return New(cfg.Channels, cfg.Window, opts...)
}

// Set stages value as the pending head of channel name for the current tick.
// Writing the same channel again within a tick replaces the staged value.
func (s *Store) Set(name string, value float64) error {
	ord, ok := s.ordinals[name]
	if !ok {
		return &UnknownChannelError{Name: name, Op: "set"}
	}

	s.pending[ord] = value
	if !s.written[ord] {
		s.written[ord] = true
		s.nWrites++
	}
	s.writes++
	return nil
}

// Advance commits the pending heads of every channel as one tick.
// It fails with *IncompleteTickError, leaving committed state and the
// pending heads untouched, if any channel was not written since the last
// commit.
func (s *Store) Advance() error {
	if s.nWrites < len(s.names) {
		missing := s.Missing()
		s.rejected++
		s.log.Warn("advance rejected", "tick", s.frame.Commits(), "missing", missing)
		return &IncompleteTickError{Missing: missing}
	}

	if err := s.commit(); err != nil {
		return err
	}

	for i := range s.written {
		s.written[i] = false
	}
	s.nWrites = 0

	s.log.Debug("tick committed", "tick", s.frame.Commits(), "retained", s.frame.Len())
	return nil
}

// commit pushes s.pending into the window and the history log.
func (s *Store) commit() error {
	if err := s.frame.Push(s.pending); err != nil {
		return errors.Wrap(err, "commit tick")
	}

	if s.history != nil {
		for ord, v := range s.pending {
			s.history[ord] = append(s.history[ord], v)
		}
	}
	return nil
}

// Get returns a snapshot of channel name's committed window.
func (s *Store) Get(name string) (*View, error) {
	ord, ok := s.ordinals[name]
	if !ok {
		return nil, &UnknownChannelError{Name: name, Op: "get"}
	}

	if s.frame.Len() == 0 {
		return nil, &NoCommittedValueError{Name: name}
	}

	values := s.frame.Row(ord, make([]float64, 0, s.frame.Len()))
	return newView(name, values), nil
}

// At returns the value of channel name committed ago ticks before the
// newest one without copying the window.
func (s *Store) At(name string, ago int) (float64, error) {
	ord, ok := s.ordinals[name]
	if !ok {
		return 0, &UnknownChannelError{Name: name, Op: "get"}
	}
	if s.frame.Len() == 0 {
		return 0, &NoCommittedValueError{Name: name}
	}
	v, ok := s.frame.At(ord, ago)
	if !ok {
		return 0, &IndexOutOfRangeError{Name: name, Index: ago, Len: s.frame.Len()}
	}
	return v, nil
}

// Reset drops every committed value, the history log and the in-flight
// tick. Channels, capacity and options are kept.
func (s *Store) Reset() {
	s.frame.Reset()
	for i := range s.written {
		s.written[i] = false
		s.pending[i] = 0
	}
	s.nWrites = 0
	if s.history != nil {
		s.history = make([][]float64, len(s.names))
	}
	s.writes = 0
	s.rejected = 0
	s.log.Debug("store reset")
}

// History returns a copy of channel name's unbounded log, oldest first.
func (s *Store) History(name string) ([]float64, error) {
	ord, ok := s.ordinals[name]
	if !ok {
		return nil, &UnknownChannelError{Name: name, Op: "history"}
	}
	if s.history == nil {
		return nil, fmt.Errorf("channel %q: %w", name, ErrHistoryDisabled)
	}
	return append([]float64(nil), s.history[ord]...), nil
}

// Pending returns the staged value of channel name and whether it was
// written during the current tick.
func (s *Store) Pending(name string) (float64, bool, error) {
	ord, ok := s.ordinals[name]
	if !ok {
		return 0, false, &UnknownChannelError{Name: name, Op: "pending"}
	}
	if !s.written[ord] {
		return 0, false, nil
	}
	return s.pending[ord], true, nil
}

// Missing returns the channels not yet written this tick, in registration order.
func (s *Store) Missing() []string {
	missing := make([]string, 0, len(s.names)-s.nWrites)
	for ord, ok := range s.written {
		if !ok {
			missing = append(missing, s.names[ord])
		}
	}
	return missing
}

// Preload commits equal-length sequences, oldest first, one tick per index.
// Every registered channel must be present and no tick may be in flight.
func (s *Store) Preload(columns map[string][]float64) error {
	if s.nWrites > 0 {
		return fmt.Errorf("preload: %d channels staged: %w", s.nWrites, ErrPendingWrites)
	}

	for name := range columns {
		if _, ok := s.ordinals[name]; !ok {
			return &UnknownChannelError{Name: name, Op: "preload"}
		}
	}

	var absent []string
	n := -1
	for _, name := range s.names {
		col, ok := columns[name]
		if !ok {
			absent = append(absent, name)
			continue
		}
		if n >= 0 && len(col) != n {
			return errors.NewInvalidValue("preload length", len(col),
				fmt.Sprintf("channel %q differs from %d", name, n))
		}
		n = len(col)
	}
	if len(absent) > 0 {
		return &IncompleteTickError{Missing: absent}
	}

	for i := 0; i < n; i++ {
		for ord, name := range s.names {
			s.pending[ord] = columns[name][i]
		}
		if err := s.commit(); err != nil {
			return err
		}
	}

	s.log.Debug("preloaded", "ticks", n, "retained", s.frame.Len())
	return nil
}

// Names returns the channel names in ordinal order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Ordinal returns the storage ordinal of channel name.
func (s *Store) Ordinal(name string) (int, bool) {
	ord, ok := s.ordinals[name]
	return ord, ok
}

// Capacity returns the window capacity.
func (s *Store) Capacity() int {
	return s.frame.Cap()
}

// Len returns the number of retained ticks.
func (s *Store) Len() int {
	return s.frame.Len()
}

// Ticks returns the number of ticks ever committed.
func (s *Store) Ticks() int64 {
	return s.frame.Commits()
}

// HistoryEnabled reports whether the history log is kept.
func (s *Store) HistoryEnabled() bool {
	return s.history != nil
}

// Stats returns store statistics.
func (s *Store) Stats() StoreStats {
	fs := s.frame.Stats()
	return StoreStats{
		Channels:         fs.Channels,
		Capacity:         fs.Capacity,
		Retained:         fs.Count,
		Full:             s.frame.IsFull(),
		Ticks:            fs.Commits,
		Evictions:        fs.Evictions,
		Writes:           s.writes,
		RejectedAdvances: s.rejected,
		HistoryEnabled:   s.history != nil,
	}
}

// StoreStats holds store statistics.
type StoreStats struct {
	Channels         int
	Capacity         int
	Retained         int
	Full             bool
	Ticks            int64
	Evictions        int64
	Writes           int64
	RejectedAdvances int64
	HistoryEnabled   bool
}
