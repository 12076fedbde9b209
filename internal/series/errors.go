package series

import (
	"fmt"
	"strings"

	"github.com/xtxerr/tickseries/internal/errors"
)

var (
	ErrUnknownChannel   = errors.ErrUnknownChannel
	ErrNoCommittedValue = errors.ErrNoCommittedValue
	ErrIncompleteTick   = errors.ErrIncompleteTick
	ErrPendingWrites    = errors.ErrPendingWrites
	ErrIndexOutOfRange  = errors.ErrIndexOutOfRange
	ErrInvalidRange     = errors.ErrInvalidRange
	ErrImmutableHistory = errors.ErrImmutableHistory
	ErrHistoryDisabled  = errors.ErrHistoryDisabled
)

// UnknownChannelError is returned when an operation names an unregistered channel.
type UnknownChannelError struct {
	Name string
	Op   string // set, get, history, pending, preload
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("series received %s for unknown channel %q", e.Op, e.Name)
}

func (e *UnknownChannelError) Unwrap() error { return ErrUnknownChannel }

// NoCommittedValueError is returned when a channel is read before the first commit.
type NoCommittedValueError struct {
	Name string
}

func (e *NoCommittedValueError) Error() string {
	return fmt.Sprintf("channel %q has no committed value", e.Name)
}

func (e *NoCommittedValueError) Unwrap() error { return ErrNoCommittedValue }

// IncompleteTickError is returned by Advance while some channels lack a pending write.
// Missing is in registration order.
type IncompleteTickError struct {
	Missing []string
}

func (e *IncompleteTickError) Error() string {
	return fmt.Sprintf("incomplete tick write, channels still unwritten: %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteTickError) Unwrap() error { return ErrIncompleteTick }

// IndexOutOfRangeError is returned when a retrospective offset is not retained.
type IndexOutOfRangeError struct {
	Name  string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("channel %q: offset %d outside retained range [0, %d)", e.Name, e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// InvalidRangeError is returned when range bounds are malformed or not retained.
type InvalidRangeError struct {
	Name  string
	Start int
	Stop  int
	Step  int
	Len   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("channel %q: invalid range [%d:%d:%d] over %d retained values",
		e.Name, e.Start, e.Stop, e.Step, e.Len)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }
