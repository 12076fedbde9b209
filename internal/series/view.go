package series

import (
	"cmp"
	"fmt"
	"strconv"

	"github.com/xtxerr/tickseries/internal/aggregate"
)

// View is a read-only snapshot of one channel taken by Store.Get.
// Offsets count ticks back from the newest committed value: At(0) is the
// current value, At(1) the one before it. Later commits never change a View.
type View struct {
	name   string
	values []float64 // newest first, never empty
}

func newView(name string, newestFirst []float64) *View {
	return &View{name: name, values: newestFirst}
}

// Name returns the channel name.
func (v *View) Name() string {
	return v.name
}

// Value returns the current committed value.
func (v *View) Value() float64 {
	return v.values[0]
}

// Len returns the number of retained values.
func (v *View) Len() int {
	return len(v.values)
}

// At returns the value committed k ticks before the current one.
func (v *View) At(k int) (float64, error) {
	if k < 0 || k >= len(v.values) {
		return 0, &IndexOutOfRangeError{Name: v.name, Index: k, Len: len(v.values)}
	}
	return v.values[k], nil
}

// Range returns the values at offsets start, start+step, ... below stop,
// newest first. step defaults to 1. start == stop yields an empty slice.
func (v *View) Range(start, stop int, step ...int) ([]float64, error) {
	st := 1
	if len(step) > 0 {
		st = step[0]
	}

	if len(step) > 1 || st < 1 || start < 0 || start > stop || stop > len(v.values) {
		return nil, &InvalidRangeError{Name: v.name, Start: start, Stop: stop, Step: st, Len: len(v.values)}
	}

	n := 0
	if stop > start {
		n = (stop-start-1)/st + 1
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = v.values[start+i*st]
	}
	return out, nil
}

// Values returns the retained window oldest first.
func (v *View) Values() []float64 {
	out := make([]float64, len(v.values))
	for i, x := range v.values {
		out[len(out)-1-i] = x
	}
	return out
}

// Set always fails: committed history cannot be altered through a View.
func (v *View) Set(k int, value float64) error {
	return fmt.Errorf("assign offset %d of channel %q: %w", k, v.name, ErrImmutableHistory)
}

// Float returns the current value.
func (v *View) Float() float64 {
	return v.values[0]
}

// Int returns the current value truncated toward zero.
func (v *View) Int() int64 {
	return int64(v.values[0])
}

// Equal reports whether the current value equals x.
func (v *View) Equal(x float64) bool {
	return v.values[0] == x
}

// Compare compares the current value with x like cmp.Compare.
func (v *View) Compare(x float64) int {
	return cmp.Compare(v.values[0], x)
}

// String formats the current value.
func (v *View) String() string {
	return strconv.FormatFloat(v.values[0], 'g', -1, 64)
}

// Summary aggregates the newest n retained values, or all of them when n <= 0.
func (v *View) Summary(n int) (aggregate.Result, error) {
	if n <= 0 {
		n = len(v.values)
	}
	vals, err := v.Range(0, n)
	if err != nil {
		return aggregate.Result{}, err
	}

	agg := aggregate.New(v.name, true)
	for i := len(vals) - 1; i >= 0; i-- {
		agg.Add(vals[i])
	}
	return agg.Result(), nil
}
