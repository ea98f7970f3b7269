package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/s3downl"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// Trainer fits the linear risk model. Features are scaled with the injected
// range table, the same one producers and the orchestrator use; ranges seen
// in the dataset are only compared against it.
type Trainer struct {
	Table        vitals.RangeTable
	Layout       exchange.Layout
	TestFraction float64
	Seed         uint64

	// CacheDir receives datasets fetched from S3.
	CacheDir string
	// Download fetches S3 sources; nil disables remote datasets.
	Download s3downl.DownloadFunc

	Logger *slog.Logger
}

func New(table vitals.RangeTable, layout exchange.Layout, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{
		Table:        table,
		Layout:       layout,
		TestFraction: DefaultTestFraction,
		Seed:         DefaultSeed,
		Logger:       logger,
	}
}

type Report struct {
	Manifest *Manifest
	Model    exchange.Model
	R2       float64
	Drift    []ObservedRange
}

// Run loads the dataset from source, fits the model and writes weights.txt,
// bias.txt and the manifest into the layout root.
func (t *Trainer) Run(ctx context.Context, source string) (*Report, error) {
	if err := t.Table.Validate(); err != nil {
		return nil, err
	}

	localPath, err := t.resolve(ctx, source)
	if err != nil {
		return nil, err
	}

	rc, err := OpenDataset(localPath)
	if err != nil {
		return nil, err
	}
	ds, err := ReadCSV(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}
	t.Logger.Info("dataset loaded", "source", source, "rows", len(ds.Rows))

	observed := ds.Observed()
	var ranges []ObservedRange
	var drift []ObservedRange
	for _, f := range vitals.Features() {
		want := t.Table.Range(f)
		o := ObservedRange{
			Column: f.Column(),
			Min:    observed[f].Min,
			Max:    observed[f].Max,
			Drift:  observed[f] != want,
		}
		ranges = append(ranges, o)
		if o.Drift {
			drift = append(drift, o)
			t.Logger.Warn("dataset range differs from range table",
				"column", o.Column,
				"observed_min", o.Min, "observed_max", o.Max,
				"table_min", want.Min, "table_max", want.Max,
				"table_version", t.Table.Version)
		}
	}

	x := make([]vitals.FeatureVector, len(ds.Rows))
	y := make([]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		x[i] = t.Table.Normalize(vitals.SampleFromValues(row.Raw))
		y[i] = row.Label
	}

	trainIdx, testIdx := Split(len(ds.Rows), t.TestFraction, t.Seed)
	xTrain, yTrain := pick(x, y, trainIdx)
	xTest, yTest := pick(x, y, testIdx)

	model, err := FitOLS(xTrain, yTrain)
	if err != nil {
		return nil, err
	}
	r2 := R2(model, xTest, yTest)

	t.Logger.Info("training finished",
		"features", vitals.Columns(),
		"weights", model.Weights,
		"bias", model.Bias,
		"r2", r2,
		"train_rows", len(trainIdx),
		"test_rows", len(testIdx))

	if err := exchange.WriteModel(t.Layout, model); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		RunUuid:      uuid.NewString(),
		TrainedAt:    time.Now().UTC().Truncate(time.Second),
		Source:       source,
		TableVersion: t.Table.Version,
		Features:     vitals.Columns(),
		Weights:      model.Weights[:],
		Bias:         model.Bias,
		R2:           r2,
		TrainRows:    len(trainIdx),
		TestRows:     len(testIdx),
		Observed:     ranges,
	}
	if err := WriteManifest(t.Layout.Root, manifest); err != nil {
		return nil, err
	}

	return &Report{Manifest: manifest, Model: model, R2: r2, Drift: drift}, nil
}

// resolve turns an S3 URL into a cached local file. Local paths are taken
// relative to the layout root.
func (t *Trainer) resolve(ctx context.Context, source string) (string, error) {
	if !s3downl.IsURL(source) {
		if filepath.IsAbs(source) {
			return source, nil
		}
		return filepath.Join(t.Layout.Root, source), nil
	}

	_, key, _ := s3downl.ParseURL(source)
	cached := filepath.Join(t.CacheDir, path.Base(key))
	if filepath.Ext(cached) == ".zst" {
		// decompressed on download
		cached = cached[:len(cached)-len(".zst")]
	}
	if _, err := os.Stat(cached); err == nil {
		t.Logger.Debug("using cached dataset", "path", cached)
		return cached, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check dataset cache: %w", err)
	}

	if t.Download == nil {
		return "", fmt.Errorf("%w: %s (remote datasets are not configured)", ErrDatasetMissing, source)
	}
	if err := t.Download(ctx, source, cached); err != nil {
		return "", fmt.Errorf("failed to fetch dataset: %w", err)
	}
	return cached, nil
}

func pick(x []vitals.FeatureVector, y []float64, idx []int) ([]vitals.FeatureVector, []float64) {
	xs := make([]vitals.FeatureVector, 0, len(idx))
	ys := make([]float64, 0, len(idx))
	for _, i := range idx {
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
