package export

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/parquet-go/parquet-go"

	defaults "github.com/xtxerr/tickseries/config"
	"github.com/xtxerr/tickseries/internal/errors"
)

// Reader reads rows from a Parquet file.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[Row]
	path   string
}

// Open opens a Parquet tick file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	reader := parquet.NewGenericReader[Row](f, parquet.ReadBufferSize(1024*1024))

	return &Reader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// Read reads up to n rows. It returns io.EOF once the file is exhausted.
func (r *Reader) Read(n int) ([]Row, error) {
	rows := make([]Row, n)
	count, err := r.reader.Read(rows)
	if count > 0 && err == io.EOF {
		err = nil
	}
	return rows[:count], err
}

// ReadAll reads every remaining row.
func (r *Reader) ReadAll() ([]Row, error) {
	out := make([]Row, 0, r.reader.NumRows())
	for {
		rows, err := r.Read(defaults.DefaultReadBatchSize)
		out = append(out, rows...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	}
}

// NumRows returns the total number of rows in the file.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *Reader) Path() string {
	return r.path
}

// ReadFile reads every row of the file at path.
func ReadFile(path string) ([]Row, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAll()
}

// Columns groups rows into per-channel sequences ordered by tick, suitable
// for Store.Preload. names lists channels in order of first appearance.
// Every channel must have exactly one row for each tick present in rows.
func Columns(rows []Row) (names []string, columns map[string][]float64, err error) {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	columns = make(map[string][]float64)
	ticks := make(map[string][]int64)
	for _, row := range rows {
		if _, ok := columns[row.Channel]; !ok {
			columns[row.Channel] = nil
			names = append(names, row.Channel)
		}
	}

	for _, row := range sorted {
		seen := ticks[row.Channel]
		if n := len(seen); n > 0 && seen[n-1] == row.Tick {
			return nil, nil, errors.NewInvalidValue("row", row.Channel,
				fmt.Sprintf("duplicate value at tick %d", row.Tick))
		}
		ticks[row.Channel] = append(seen, row.Tick)
		columns[row.Channel] = append(columns[row.Channel], row.Value)
	}

	if len(names) == 0 {
		return names, columns, nil
	}
	ref := ticks[names[0]]
	for _, name := range names[1:] {
		got := ticks[name]
		if len(got) != len(ref) {
			return nil, nil, errors.NewInvalidValue("rows", name,
				fmt.Sprintf("has %d ticks, expected %d", len(got), len(ref)))
		}
		for i := range got {
			if got[i] != ref[i] {
				return nil, nil, errors.NewInvalidValue("rows", name,
					fmt.Sprintf("has tick %d where %s has tick %d", got[i], names[0], ref[i]))
			}
		}
	}

	return names, columns, nil
}
