// Package export writes series ticks to Parquet files and reads them back.
//
// A file holds one row per channel per tick. Rows are ordered by tick and,
// within a tick, by channel ordinal. Tick numbers are absolute commit
// indices of the store the rows came from.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/tickseries/internal/errors"
	"github.com/xtxerr/tickseries/internal/series"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// Source selects the store data to export with WriteStore.
	Source Source
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// Source selects which committed values WriteStore exports.
type Source int

const (
	// SourceHistory exports the unbounded history log, falling back to
	// SourceWindow when the store does not track history.
	SourceHistory Source = iota
	// SourceWindow exports the retained window only.
	SourceWindow
)

// DefaultOptions returns default export options.
func DefaultOptions() Options {
	return Options{
		Compression: CompressionZstd,
		Source:      SourceHistory,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// ParseSource parses an export source string.
func ParseSource(s string) Source {
	if s == "window" {
		return SourceWindow
	}
	return SourceHistory
}

func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// Row is one committed value in Parquet format.
type Row struct {
	Tick    int64   `parquet:"tick"`
	Channel string  `parquet:"channel,zstd"`
	Value   float64 `parquet:"value"`
}

// Writer writes rows to a Parquet file.
type Writer struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[Row]
	rowCount int64
	closed   bool
}

// NewWriter creates a Parquet writer, creating parent directories as needed.
func NewWriter(path string, opts Options) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writer := parquet.NewGenericWriter[Row](f,
		parquet.Compression(getCompression(opts.Compression)),
	)

	return &Writer{
		path:   path,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends rows to the file.
func (w *Writer) Write(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.ErrWriterClosed
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *Writer) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *Writer) Path() string {
	return w.path
}

// StoreRows returns the rows WriteStore would write.
func StoreRows(s *series.Store, src Source) ([]Row, error) {
	names := s.Names()
	cols := make([][]float64, len(names))
	var first int64

	if src == SourceHistory && s.HistoryEnabled() {
		for i, name := range names {
			hist, err := s.History(name)
			if err != nil {
				return nil, err
			}
			cols[i] = hist
		}
	} else {
		if s.Len() == 0 {
			return nil, nil
		}
		first = s.Ticks() - int64(s.Len())
		for i, name := range names {
			v, err := s.Get(name)
			if err != nil {
				return nil, err
			}
			cols[i] = v.Values()
		}
	}

	n := len(cols[0])
	rows := make([]Row, 0, n*len(names))
	for t := 0; t < n; t++ {
		for i, name := range names {
			rows = append(rows, Row{Tick: first + int64(t), Channel: name, Value: cols[i][t]})
		}
	}
	return rows, nil
}

// WriteStore exports the committed values of s to path.
// It returns the number of rows written.
func WriteStore(path string, s *series.Store, opts Options) (int64, error) {
	rows, err := StoreRows(s, opts.Source)
	if err != nil {
		return 0, errors.Wrap(err, "collect rows")
	}

	w, err := NewWriter(path, opts)
	if err != nil {
		return 0, err
	}

	if err := w.Write(rows); err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.RowCount(), nil
}
