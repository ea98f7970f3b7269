package trainer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// LabelColumn holds the binary heart-disease outcome.
const LabelColumn = "condition"

// ErrDatasetMissing means the dataset source does not exist.
var ErrDatasetMissing = errors.New("dataset not found")

type Row struct {
	Raw   [vitals.NumFeatures]float64
	Label float64
}

type Dataset struct {
	Rows []Row
}

// Observed returns the per-feature min and max over all rows.
func (d *Dataset) Observed() [vitals.NumFeatures]vitals.Range {
	var res [vitals.NumFeatures]vitals.Range
	for i := range res {
		res[i] = vitals.Range{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	for _, row := range d.Rows {
		for i, x := range row.Raw {
			res[i].Min = min(res[i].Min, x)
			res[i].Max = max(res[i].Max, x)
		}
	}
	return res
}

// OpenDataset opens a local CSV file. Files ending in .zst are decompressed.
func OpenDataset(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	if filepath.Ext(path) != ".zst" {
		return f, nil
	}
	d, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	return &zstdFile{Decoder: d, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// ReadCSV parses a dataset with a header row. Only the feature columns and
// the label column are read; any other columns are ignored.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	required := mapset.NewSet(vitals.Columns()...)
	required.Add(LabelColumn)
	missing := required.Difference(mapset.NewSet(header...))
	if missing.Cardinality() > 0 {
		names := missing.ToSlice()
		slices.Sort(names)
		return nil, fmt.Errorf("dataset is missing columns: %s", strings.Join(names, ", "))
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	ds := &Dataset{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		var row Row
		for i, col := range vitals.Columns() {
			if row.Raw[i], err = parseCell(rec, index[col], col, line); err != nil {
				return nil, err
			}
		}
		if row.Label, err = parseCell(rec, index[LabelColumn], LabelColumn, line); err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, row)
	}
	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}
	return ds, nil
}

func parseCell(rec []string, idx int, col string, line int) (float64, error) {
	if idx >= len(rec) {
		return 0, fmt.Errorf("dataset line %d has no %s value", line, col)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("dataset line %d: %s is not a number: %q", line, col, rec[idx])
	}
	return x, nil
}
