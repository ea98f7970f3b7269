package vitals

import (
	"fmt"
	"slices"
)

// Feature is a positional index into a FeatureVector. The order is shared
// with the trained weights, which are positional, not named.
type Feature int

const (
	Age Feature = iota
	BloodPressure
	Cholesterol
	MaxHeartRate
)

// NumFeatures is the length of every feature vector and weight vector.
const NumFeatures = 4

var featureColumns = [NumFeatures]string{"age", "trestbps", "chol", "thalach"}

var featureNames = [NumFeatures]string{"age", "blood pressure", "cholesterol", "max heart rate"}

// Features returns all features in vector order.
func Features() []Feature {
	return []Feature{Age, BloodPressure, Cholesterol, MaxHeartRate}
}

// Column is the dataset column the feature is read from.
func (f Feature) Column() string {
	return featureColumns[f]
}

func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// Columns returns the dataset column names in vector order.
func Columns() []string {
	return slices.Clone(featureColumns[:])
}

type Range struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

func (r Range) Clamp(x float64) float64 {
	return min(max(x, r.Min), r.Max)
}

// RangeTable holds the (min, max) pair of every feature. Producers, the
// trainer and the orchestrator must all scale with the same table, so it is
// versioned and injected rather than redeclared.
type RangeTable struct {
	Version string
	Ranges  [NumFeatures]Range
}

// DefaultTable is the range table of the Cleveland heart-disease dataset the
// model is trained on.
var DefaultTable = RangeTable{
	Version: "cleveland-v1",
	Ranges: [NumFeatures]Range{
		Age:           {Min: 29, Max: 77},
		BloodPressure: {Min: 94, Max: 200},
		Cholesterol:   {Min: 126, Max: 564},
		MaxHeartRate:  {Min: 71, Max: 202},
	},
}

// Range returns the range of a single feature.
func (t RangeTable) Range(f Feature) Range {
	return t.Ranges[f]
}

// Validate checks the normalization precondition max > min for every feature.
func (t RangeTable) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("range table has no version")
	}
	for _, f := range Features() {
		r := t.Ranges[f]
		if !(r.Max > r.Min) {
			return fmt.Errorf("range of %s is degenerate: [%g, %g]", f, r.Min, r.Max)
		}
	}
	return nil
}
