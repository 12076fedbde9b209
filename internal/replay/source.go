package replay

import (
	"context"
	"io"
	"sort"

	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/export"
)

// Tick holds one value per channel for a single evaluation step.
type Tick map[string]float64

// Source yields ticks in order. Next returns io.EOF after the last tick.
type Source interface {
	Next(ctx context.Context) (Tick, error)
}

// SliceSource replays an in-memory sequence of ticks.
type SliceSource struct {
	ticks []Tick
	pos   int
}

// NewSliceSource creates a SliceSource over ticks.
func NewSliceSource(ticks []Tick) *SliceSource {
	return &SliceSource{ticks: ticks}
}

// Next returns the next tick.
func (s *SliceSource) Next(ctx context.Context) (Tick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.ticks) {
		return nil, io.EOF
	}
	t := s.ticks[s.pos]
	s.pos++
	return t, nil
}

// Len returns the total number of ticks.
func (s *SliceSource) Len() int {
	return len(s.ticks)
}

// TicksFromRows groups export rows into ticks ordered by tick number.
func TicksFromRows(rows []export.Row) ([]Tick, error) {
	byTick := make(map[int64]Tick)
	for _, row := range rows {
		t, ok := byTick[row.Tick]
		if !ok {
			t = make(Tick)
			byTick[row.Tick] = t
		}
		if _, dup := t[row.Channel]; dup {
			return nil, errors.NewInvalidValue("row", row.Channel, "duplicate value in one tick")
		}
		t[row.Channel] = row.Value
	}

	keys := make([]int64, 0, len(byTick))
	for k := range byTick {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ticks := make([]Tick, len(keys))
	for i, k := range keys {
		ticks[i] = byTick[k]
	}
	return ticks, nil
}

// LoadParquet reads a Parquet tick file written by the export package.
func LoadParquet(path string) (*SliceSource, error) {
	rows, err := export.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	ticks, err := TicksFromRows(rows)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return NewSliceSource(ticks), nil
}
