package vitals

import (
	"fmt"
	"strings"
)

// ClinicalSample is a single patient's raw measurements: age in years,
// systolic blood pressure in mmHg, cholesterol in mg/dL and maximum heart
// rate in bpm.
type ClinicalSample struct {
	Age           float64 `json:"age" toml:"age"`
	BloodPressure float64 `json:"bp" toml:"bp"`
	Cholesterol   float64 `json:"chol" toml:"chol"`
	MaxHeartRate  float64 `json:"heart_rate" toml:"heart_rate"`
}

// Values returns the sample in feature vector order.
func (s ClinicalSample) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{s.Age, s.BloodPressure, s.Cholesterol, s.MaxHeartRate}
}

// SampleFromValues is the inverse of Values.
func SampleFromValues(v [NumFeatures]float64) ClinicalSample {
	return ClinicalSample{
		Age:           v[Age],
		BloodPressure: v[BloodPressure],
		Cholesterol:   v[Cholesterol],
		MaxHeartRate:  v[MaxHeartRate],
	}
}

func (s ClinicalSample) String() string {
	return fmt.Sprintf("age=%g bp=%g chol=%g heart_rate=%g",
		s.Age, s.BloodPressure, s.Cholesterol, s.MaxHeartRate)
}

// FeatureVector is a normalized sample, nominally in [0,1] per feature.
type FeatureVector [NumFeatures]float64

func (v FeatureVector) String() string {
	parts := make([]string, 0, NumFeatures)
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%.6f", x))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
