package exchange

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// Model is the trained linear model consumed by the external server.
// Weights are positional in feature vector order.
type Model struct {
	Weights [vitals.NumFeatures]float64
	Bias    float64
}

// Predict evaluates the model in plaintext. The server does the same under
// encryption.
func (m Model) Predict(v vitals.FeatureVector) float64 {
	sum := m.Bias
	for i, w := range m.Weights {
		sum += w * v[i]
	}
	return sum
}

func FormatWeights(w [vitals.NumFeatures]float64) string {
	parts := make([]string, 0, len(w))
	for _, x := range w {
		parts = append(parts, strconv.FormatFloat(x, 'f', 6, 64))
	}
	return strings.Join(parts, " ")
}

func ParseWeights(content string) ([vitals.NumFeatures]float64, error) {
	var w [vitals.NumFeatures]float64
	fields := strings.Fields(content)
	if len(fields) != vitals.NumFeatures {
		return w, fmt.Errorf("weights has %d values, want %d", len(fields), vitals.NumFeatures)
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return w, fmt.Errorf("weight %d is not a decimal: %q", i, f)
		}
		w[i] = x
	}
	return w, nil
}

func FormatBias(b float64) string {
	return strconv.FormatFloat(b, 'f', 6, 64)
}

func ParseBias(content string) (float64, error) {
	raw := strings.TrimSpace(content)
	b, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bias is not a decimal: %q", raw)
	}
	return b, nil
}

// WriteModel writes weights.txt and bias.txt.
func WriteModel(l Layout, m Model) error {
	if err := os.WriteFile(l.Path(Weights), []byte(FormatWeights(m.Weights)), 0644); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := os.WriteFile(l.Path(Bias), []byte(FormatBias(m.Bias)), 0644); err != nil {
		return fmt.Errorf("failed to write bias: %w", err)
	}
	return nil
}

func ReadModel(l Layout) (Model, error) {
	var m Model
	wData, err := os.ReadFile(l.Path(Weights))
	if err != nil {
		return m, fmt.Errorf("failed to read weights: %w", err)
	}
	bData, err := os.ReadFile(l.Path(Bias))
	if err != nil {
		return m, fmt.Errorf("failed to read bias: %w", err)
	}
	if m.Weights, err = ParseWeights(string(wData)); err != nil {
		return m, err
	}
	if m.Bias, err = ParseBias(string(bData)); err != nil {
		return m, err
	}
	return m, nil
}
