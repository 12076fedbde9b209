// Package aggregate computes running statistics over a sequence of tick
// values, with optional DDSketch percentiles.
package aggregate

import (
	"math"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
)

// DefaultAccuracy is the relative accuracy used for percentile sketches.
const DefaultAccuracy = 0.01

// Result holds the statistics of an aggregated sequence.
type Result struct {
	Channel string
	Count   int64
	Sum     float64
	Min     float64
	Max     float64
	Avg     float64
	First   float64 // oldest value added
	Last    float64 // newest value added

	P50 *float64
	P90 *float64
	P95 *float64
	P99 *float64
}

// SetPercentiles stores the given percentile values.
func (r *Result) SetPercentiles(p50, p90, p95, p99 float64) {
	r.P50 = &p50
	r.P90 = &p90
	r.P95 = &p95
	r.P99 = &p99
}

// HasPercentiles reports whether percentiles were computed.
func (r *Result) HasPercentiles() bool {
	return r.P50 != nil
}

// Streaming maintains running statistics for one channel.
type Streaming struct {
	mu sync.Mutex

	channel string

	count int64
	sum   float64
	min   float64
	max   float64
	first float64
	last  float64

	// nil if percentiles are disabled
	sketch   *ddsketch.DDSketch
	accuracy float64
}

// New creates a Streaming aggregate. Percentiles use DefaultAccuracy when enabled.
func New(channel string, enablePercentile bool) *Streaming {
	if !enablePercentile {
		return newStreaming(channel, 0)
	}
	return newStreaming(channel, DefaultAccuracy)
}

// NewWithAccuracy creates a Streaming aggregate with custom percentile accuracy.
func NewWithAccuracy(channel string, accuracy float64) *Streaming {
	return newStreaming(channel, accuracy)
}

func newStreaming(channel string, accuracy float64) *Streaming {
	agg := &Streaming{
		channel:  channel,
		min:      math.MaxFloat64,
		max:      -math.MaxFloat64,
		accuracy: accuracy,
	}
	agg.sketch = newSketch(accuracy)
	return agg
}

func newSketch(accuracy float64) *ddsketch.DDSketch {
	if accuracy <= 0 {
		return nil
	}
	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		return nil
	}
	return sketch
}

// Add adds a value. Values must be added oldest first.
func (a *Streaming) Add(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count == 0 {
		a.first = value
	}
	a.count++
	a.sum += value
	a.last = value

	if value < a.min {
		a.min = value
	}
	if value > a.max {
		a.max = value
	}

	if a.sketch != nil {
		// DDSketch rejects values outside its indexable range; stats above still count them.
		_ = a.sketch.Add(value)
	}
}

// AddAll adds values in order.
func (a *Streaming) AddAll(values []float64) {
	for _, v := range values {
		a.Add(v)
	}
}

// Count returns the number of values added.
func (a *Streaming) Count() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// IsEmpty returns true if no values have been added.
func (a *Streaming) IsEmpty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count == 0
}

// Result returns the aggregation result.
func (a *Streaming) Result() Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := Result{
		Channel: a.channel,
		Count:   a.count,
		Sum:     a.sum,
	}

	if a.count > 0 {
		result.Avg = a.sum / float64(a.count)
		result.Min = a.min
		result.Max = a.max
		result.First = a.first
		result.Last = a.last
	}

	if a.sketch != nil && !a.sketch.IsEmpty() {
		p50, _ := a.sketch.GetValueAtQuantile(0.50)
		p90, _ := a.sketch.GetValueAtQuantile(0.90)
		p95, _ := a.sketch.GetValueAtQuantile(0.95)
		p99, _ := a.sketch.GetValueAtQuantile(0.99)
		result.SetPercentiles(p50, p90, p95, p99)
	}

	return result
}

// Reset clears the aggregate.
func (a *Streaming) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.count = 0
	a.sum = 0
	a.min = math.MaxFloat64
	a.max = -math.MaxFloat64
	a.first = 0
	a.last = 0

	// DDSketch has no Clear
	a.sketch = newSketch(a.accuracy)
}

// Merge appends other's values after a's. other must cover later ticks.
func (a *Streaming) Merge(other *Streaming) {
	if other == nil || other == a {
		return
	}

	other.mu.Lock()
	if other.count == 0 {
		other.mu.Unlock()
		return
	}
	oCount, oSum, oMin, oMax := other.count, other.sum, other.min, other.max
	oFirst, oLast := other.first, other.last
	var oSketch *ddsketch.DDSketch
	if other.sketch != nil {
		oSketch = other.sketch.Copy()
	}
	other.mu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.count == 0 {
		a.first = oFirst
	}
	a.count += oCount
	a.sum += oSum
	a.last = oLast

	if oMin < a.min {
		a.min = oMin
	}
	if oMax > a.max {
		a.max = oMax
	}

	if a.sketch != nil && oSketch != nil {
		_ = a.sketch.MergeWith(oSketch)
	}
}

// Channel returns the channel name the aggregate was created for.
func (a *Streaming) Channel() string {
	return a.channel
}

// Summarize aggregates values in one call.
func Summarize(channel string, values []float64, enablePercentile bool) Result {
	agg := New(channel, enablePercentile)
	agg.AddAll(values)
	return agg.Result()
}
