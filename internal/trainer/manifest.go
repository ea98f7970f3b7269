package trainer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is written next to weights.txt and bias.txt.
const ManifestFile = "model.toml"

// Manifest describes how the model artifacts were produced.
type Manifest struct {
	RunUuid      string          `toml:"run_uuid"`
	TrainedAt    time.Time       `toml:"trained_at"`
	Source       string          `toml:"source"`
	TableVersion string          `toml:"table_version"`
	Features     []string        `toml:"features"`
	Weights      []float64       `toml:"weights"`
	Bias         float64         `toml:"bias"`
	R2           float64         `toml:"r2"`
	TrainRows    int             `toml:"train_rows"`
	TestRows     int             `toml:"test_rows"`
	Observed     []ObservedRange `toml:"observed"`
}

type ObservedRange struct {
	Column string  `toml:"column"`
	Min    float64 `toml:"min"`
	Max    float64 `toml:"max"`
	Drift  bool    `toml:"drift"`
}

func WriteManifest(root string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest returns os.ErrNotExist (wrapped) when no model was trained in root.
func ReadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no model manifest: %w", err)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
