package series

import (
	"math"
	"reflect"
	"testing"

	"github.com/xtxerr/tickseries/internal/errors"
)

func viewOf(t *testing.T, values ...float64) *View {
	t.Helper()
	s := newTestStore(t, []string{"x"}, 10)
	for _, v := range values {
		tick(t, s, v)
	}
	v, err := s.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return v
}

func TestView_At(t *testing.T) {
	v := viewOf(t, 1, 2, 3)

	if v.Name() != "x" {
		t.Errorf("expected name x, got %s", v.Name())
	}
	if v.Len() != 3 {
		t.Errorf("expected len=3, got %d", v.Len())
	}

	for k, want := range []float64{3, 2, 1} {
		got, err := v.At(k)
		if err != nil || got != want {
			t.Errorf("At(%d) = %v,%v, want %v", k, got, err, want)
		}
	}

	for _, k := range []int{3, 100, -1} {
		_, err := v.At(k)
		var oor *IndexOutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("At(%d): expected *IndexOutOfRangeError, got %v", k, err)
			continue
		}
		if oor.Index != k || oor.Len != 3 || oor.Name != "x" {
			t.Errorf("unexpected payload: %+v", oor)
		}
	}
}

func TestView_Range(t *testing.T) {
	v := viewOf(t, 0, 1, 2, 3, 4, 5, 6)

	tests := []struct {
		start, stop int
		step        []int
		want        []float64
	}{
		{0, 7, nil, []float64{6, 5, 4, 3, 2, 1, 0}},
		{0, 3, nil, []float64{6, 5, 4}},
		{2, 5, nil, []float64{4, 3, 2}},
		{0, 7, []int{2}, []float64{6, 4, 2, 0}},
		{1, 7, []int{3}, []float64{5, 2}},
		{3, 3, nil, []float64{}},
		{6, 7, []int{10}, []float64{0}},
	}

	for _, tt := range tests {
		got, err := v.Range(tt.start, tt.stop, tt.step...)
		if err != nil {
			t.Errorf("Range(%d,%d,%v): %v", tt.start, tt.stop, tt.step, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Range(%d,%d,%v) = %v, want %v", tt.start, tt.stop, tt.step, got, tt.want)
		}
	}
}

func TestView_RangeStride(t *testing.T) {
	v := viewOf(t, 0, 1, 2, 3, 4, 5, 6)

	tests := []struct {
		start, stop, step int
		want              []float64
	}{
		{0, 7, 7, []float64{6}},           // step equals span
		{2, 6, 4, []float64{4}},           // step equals stop-start
		{0, 7, 8, []float64{6}},           // step larger than span
		{0, 7, 6, []float64{6, 0}},        // last offset lands on stop-1
		{0, 7, math.MaxInt, []float64{6}}, // step near overflow
		{1, 2, math.MaxInt, []float64{5}},
		{6, 7, math.MaxInt, []float64{0}},
		{3, 3, math.MaxInt, []float64{}},
		{0, 7, math.MaxInt - 1, []float64{6}},
	}

	for _, tt := range tests {
		got, err := v.Range(tt.start, tt.stop, tt.step)
		if err != nil {
			t.Errorf("Range(%d,%d,%d): %v", tt.start, tt.stop, tt.step, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Range(%d,%d,%d) = %v, want %v", tt.start, tt.stop, tt.step, got, tt.want)
		}
	}
}

func TestView_RangeInvalid(t *testing.T) {
	v := viewOf(t, 1, 2, 3)

	tests := []struct {
		start, stop int
		step        []int
	}{
		{0, 4, nil},       // beyond retained history
		{-1, 2, nil},      // negative start
		{2, 1, nil},       // reversed bounds
		{0, 2, []int{0}},  // zero step
		{0, 2, []int{-1}}, // negative step
		{0, 2, []int{1, 1}},
		{0, math.MaxInt, nil},           // huge stop
		{math.MaxInt, math.MaxInt, nil}, // huge empty range
		{math.MinInt, 0, nil},
		{0, 2, []int{math.MinInt}},
	}

	for _, tt := range tests {
		_, err := v.Range(tt.start, tt.stop, tt.step...)
		var bad *InvalidRangeError
		if !errors.As(err, &bad) {
			t.Errorf("Range(%d,%d,%v): expected *InvalidRangeError, got %v", tt.start, tt.stop, tt.step, err)
		}
	}
}

func TestView_Immutable(t *testing.T) {
	s := newTestStore(t, []string{"x"}, 5)
	tick(t, s, 1)
	tick(t, s, 2)

	v, _ := s.Get("x")
	if err := v.Set(0, 42); !errors.Is(err, ErrImmutableHistory) {
		t.Errorf("expected ErrImmutableHistory, got %v", err)
	}
	if err := v.Set(1, 42); !errors.Is(err, ErrImmutableHistory) {
		t.Errorf("expected ErrImmutableHistory, got %v", err)
	}

	again, _ := s.Get("x")
	if got, _ := again.Range(0, 2); !reflect.DeepEqual(got, []float64{2, 1}) {
		t.Errorf("store changed after view assignment: %v", got)
	}

	// Mutating returned slices never reaches the view.
	vals := v.Values()
	vals[0] = 99
	rng, _ := v.Range(0, 2)
	rng[0] = 99
	if got, _ := v.At(0); got != 2 {
		t.Errorf("view changed through returned slice: %v", got)
	}
	if got, _ := v.At(1); got != 1 {
		t.Errorf("view changed through returned slice: %v", got)
	}
}

func TestView_SnapshotSurvivesAdvance(t *testing.T) {
	s := newTestStore(t, []string{"x"}, 2)
	tick(t, s, 1)
	tick(t, s, 2)

	v, _ := s.Get("x")
	tick(t, s, 3)
	tick(t, s, 4)

	if got, _ := v.Range(0, 2); !reflect.DeepEqual(got, []float64{2, 1}) {
		t.Errorf("snapshot changed after advance: %v", got)
	}
}

func TestView_Coercion(t *testing.T) {
	v := viewOf(t, 4, 5.75)

	if !v.Equal(5.75) {
		t.Error("Equal(5.75) should be true")
	}
	if v.Equal(5) {
		t.Error("Equal(5) should be false")
	}
	if v.Float() != 5.75 {
		t.Errorf("Float() = %v", v.Float())
	}
	if v.Int() != 5 {
		t.Errorf("Int() = %v", v.Int())
	}
	if v.Compare(6) != -1 || v.Compare(5) != 1 || v.Compare(5.75) != 0 {
		t.Error("unexpected Compare results")
	}
	if v.String() != "5.75" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestView_Values(t *testing.T) {
	v := viewOf(t, 0, 1, 2, 3, 4, 5, 6)
	if got := v.Values(); !reflect.DeepEqual(got, []float64{0, 1, 2, 3, 4, 5, 6}) {
		t.Errorf("Values() = %v", got)
	}
}

func TestView_Summary(t *testing.T) {
	v := viewOf(t, 1, 2, 3, 4, 10)

	all, err := v.Summary(0)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if all.Count != 5 || all.Sum != 20 || all.Max != 10 || all.Min != 1 {
		t.Errorf("unexpected summary: %+v", all)
	}
	if all.First != 1 || all.Last != 10 {
		t.Errorf("summary should run oldest to newest: first=%v last=%v", all.First, all.Last)
	}
	if !all.HasPercentiles() {
		t.Error("expected percentiles")
	}

	last2, err := v.Summary(2)
	if err != nil {
		t.Fatalf("Summary(2): %v", err)
	}
	if last2.Count != 2 || math.Abs(last2.Avg-7) > 1e-9 {
		t.Errorf("unexpected summary of last 2: %+v", last2)
	}

	if _, err := v.Summary(6); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for oversized summary, got %v", err)
	}
}
