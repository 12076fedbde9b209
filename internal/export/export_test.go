package export

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/logging"
	"github.com/xtxerr/tickseries/internal/series"
)

func buildStore(t *testing.T, capacity int, history bool, ticks int) *series.Store {
	t.Helper()
	s, err := series.New([]string{"a", "b"}, capacity,
		series.WithHistory(history), series.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < ticks; i++ {
		s.Set("a", float64(i))
		s.Set("b", float64(i*10))
		if err := s.Advance(); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	return s
}

func TestParseCompressionType(t *testing.T) {
	tests := map[string]CompressionType{
		"snappy": CompressionSnappy,
		"zstd":   CompressionZstd,
		"lz4":    CompressionLZ4,
		"gzip":   CompressionGzip,
		"none":   CompressionNone,
		"":       CompressionNone,
		"bogus":  CompressionZstd,
	}
	for in, want := range tests {
		if got := ParseCompressionType(in); got != want {
			t.Errorf("ParseCompressionType(%q) = %d, want %d", in, got, want)
		}
	}

	if ParseSource("window") != SourceWindow || ParseSource("history") != SourceHistory {
		t.Error("unexpected ParseSource result")
	}
}

func TestStoreRows_Window(t *testing.T) {
	s := buildStore(t, 3, false, 5)

	rows, err := StoreRows(s, SourceHistory) // falls back to window
	if err != nil {
		t.Fatalf("StoreRows: %v", err)
	}

	want := []Row{
		{Tick: 2, Channel: "a", Value: 2}, {Tick: 2, Channel: "b", Value: 20},
		{Tick: 3, Channel: "a", Value: 3}, {Tick: 3, Channel: "b", Value: 30},
		{Tick: 4, Channel: "a", Value: 4}, {Tick: 4, Channel: "b", Value: 40},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestStoreRows_History(t *testing.T) {
	s := buildStore(t, 2, true, 4)

	rows, err := StoreRows(s, SourceHistory)
	if err != nil {
		t.Fatalf("StoreRows: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}
	if rows[0].Tick != 0 || rows[7].Tick != 3 || rows[7].Value != 30 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	rows, _ = StoreRows(s, SourceWindow)
	if len(rows) != 4 || rows[0].Tick != 2 {
		t.Errorf("window rows should start at tick 2: %+v", rows)
	}
}

func TestStoreRows_Empty(t *testing.T) {
	s := buildStore(t, 2, false, 0)
	rows, err := StoreRows(s, SourceWindow)
	if err != nil || len(rows) != 0 {
		t.Errorf("expected no rows, got %v %v", rows, err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := buildStore(t, 10, true, 6)
	path := filepath.Join(t.TempDir(), "nested", "ticks.parquet")

	n, err := WriteStore(path, s, DefaultOptions())
	if err != nil {
		t.Fatalf("WriteStore: %v", err)
	}
	if n != 12 {
		t.Errorf("expected 12 rows written, got %d", n)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.NumRows() != 12 {
		t.Errorf("expected 12 rows in file, got %d", r.NumRows())
	}
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	names, cols, err := Columns(rows)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("names = %v", names)
	}
	if !reflect.DeepEqual(cols["b"], []float64{0, 10, 20, 30, 40, 50}) {
		t.Errorf("column b = %v", cols["b"])
	}

	// The columns rebuild an equivalent store.
	restored, _ := series.New(names, 10, series.WithLogger(logging.Discard()))
	if err := restored.Preload(cols); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	v, _ := restored.Get("a")
	if got, _ := v.Range(0, 3); !reflect.DeepEqual(got, []float64{5, 4, 3}) {
		t.Errorf("restored Range = %v", got)
	}
}

func TestWriter_Closed(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "x.parquet"), Options{Compression: CompressionSnappy})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write(nil); err != nil {
		t.Errorf("empty write should be a no-op: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}
	if err := w.Write([]Row{{Tick: 0, Channel: "a"}}); !errors.Is(err, errors.ErrWriterClosed) {
		t.Errorf("expected ErrWriterClosed, got %v", err)
	}
}

func TestColumns_Unsorted(t *testing.T) {
	rows := []Row{
		{Tick: 1, Channel: "a", Value: 1},
		{Tick: 0, Channel: "b", Value: 0},
		{Tick: 0, Channel: "a", Value: 0},
		{Tick: 1, Channel: "b", Value: 10},
	}
	names, cols, err := Columns(rows)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("names = %v", names)
	}
	if !reflect.DeepEqual(cols["a"], []float64{0, 1}) || !reflect.DeepEqual(cols["b"], []float64{0, 10}) {
		t.Errorf("unexpected columns: %v", cols)
	}
}

func TestColumns_Errors(t *testing.T) {
	_, _, err := Columns([]Row{
		{Tick: 0, Channel: "a"}, {Tick: 0, Channel: "a"},
	})
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected duplicate tick error, got %v", err)
	}

	_, _, err = Columns([]Row{
		{Tick: 0, Channel: "a"}, {Tick: 1, Channel: "a"}, {Tick: 0, Channel: "b"},
	})
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected ragged column error, got %v", err)
	}

	// Equal counts but different ticks would misalign the channels.
	_, _, err = Columns([]Row{
		{Tick: 0, Channel: "a", Value: 1}, {Tick: 1, Channel: "a", Value: 2},
		{Tick: 1, Channel: "b", Value: 20}, {Tick: 2, Channel: "b", Value: 30},
	})
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected misaligned tick error, got %v", err)
	}

	names, cols, err := Columns(nil)
	if err != nil || len(names) != 0 || len(cols) != 0 {
		t.Errorf("empty rows should give empty columns, got %v %v %v", names, cols, err)
	}
}
