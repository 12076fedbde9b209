// Package window implements the fixed-capacity history buffer behind a
// series store: one row per channel, one column per retained tick, and a
// single write cursor shared by every row.
package window

import (
	"fmt"

	"github.com/xtxerr/tickseries/internal/errors"
)

// Frame is a channels x capacity circular buffer of float64 values.
// All rows advance together, so column i of every row always belongs to
// the same tick. Frame is not safe for concurrent use.
type Frame struct {
	data     []float64 // row-major: channel*capacity + slot
	channels int
	capacity int
	head     int   // Next write slot
	count    int   // Retained columns
	commits  int64 // Columns ever pushed

	// Statistics
	evictions int64
}

// New creates a zero-filled Frame.
func New(channels, capacity int) (*Frame, error) {
	if channels < 1 {
		return nil, errors.NewInvalidValue("channels", channels, "must be at least 1")
	}
	if capacity < 1 {
		return nil, errors.NewInvalidValue("capacity", capacity, "must be at least 1")
	}
	return &Frame{
		data:     make([]float64, channels*capacity),
		channels: channels,
		capacity: capacity,
	}, nil
}

// Push appends one column, overwriting the oldest column if the frame is full.
// column[i] is the value for channel i.
func (f *Frame) Push(column []float64) error {
	if len(column) != f.channels {
		return fmt.Errorf("column has %d values, frame has %d channels: %w",
			len(column), f.channels, errors.ErrInvalidConfig)
	}

	if f.count >= f.capacity {
		// Oldest column sits at head once full
		f.count--
		f.evictions++
	}

	for ch, v := range column {
		f.data[ch*f.capacity+f.head] = v
	}
	f.head = (f.head + 1) % f.capacity
	f.count++
	f.commits++

	return nil
}

// slot returns the storage column for the value ago columns back.
func (f *Frame) slot(ago int) int {
	idx := (f.head - 1 - ago) % f.capacity
	if idx < 0 {
		idx += f.capacity
	}
	return idx
}

// At returns the value of channel pushed ago columns before the newest one.
// Returns false if ch or ago is outside the retained range.
func (f *Frame) At(ch, ago int) (float64, bool) {
	if ch < 0 || ch >= f.channels || ago < 0 || ago >= f.count {
		return 0, false
	}
	return f.data[ch*f.capacity+f.slot(ago)], true
}

// Row appends the retained values of channel ch to dst, newest first.
func (f *Frame) Row(ch int, dst []float64) []float64 {
	if ch < 0 || ch >= f.channels {
		return dst
	}
	base := ch * f.capacity
	for ago := 0; ago < f.count; ago++ {
		dst = append(dst, f.data[base+f.slot(ago)])
	}
	return dst
}

// Len returns the number of retained columns.
func (f *Frame) Len() int {
	return f.count
}

// Cap returns the capacity of the frame.
func (f *Frame) Cap() int {
	return f.capacity
}

// Channels returns the number of rows.
func (f *Frame) Channels() int {
	return f.channels
}

// Commits returns the number of columns ever pushed.
func (f *Frame) Commits() int64 {
	return f.commits
}

// IsFull returns true once every slot holds a committed column.
func (f *Frame) IsFull() bool {
	return f.count >= f.capacity
}

// Reset drops every retained column.
func (f *Frame) Reset() {
	for i := range f.data {
		f.data[i] = 0
	}
	f.head = 0
	f.count = 0
	f.commits = 0
	f.evictions = 0
}

// Stats returns frame statistics.
func (f *Frame) Stats() FrameStats {
	return FrameStats{
		Channels:   f.channels,
		Capacity:   f.capacity,
		Count:      f.count,
		UsageRatio: float64(f.count) / float64(f.capacity),
		Commits:    f.commits,
		Evictions:  f.evictions,
	}
}

// FrameStats holds frame statistics.
type FrameStats struct {
	Channels   int
	Capacity   int
	Count      int
	UsageRatio float64
	Commits    int64
	Evictions  int64
}
