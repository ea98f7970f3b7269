package trainer

import (
	"fmt"
	"math"

	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"gonum.org/v1/gonum/mat"
)

// FitOLS fits y ≈ bias + w·x by least squares. The design matrix carries a
// leading column of ones for the intercept.
func FitOLS(x []vitals.FeatureVector, y []float64) (exchange.Model, error) {
	const cols = vitals.NumFeatures + 1
	if len(x) != len(y) {
		return exchange.Model{}, fmt.Errorf("have %d samples but %d labels", len(x), len(y))
	}
	if len(x) < cols {
		return exchange.Model{}, fmt.Errorf("need at least %d samples to fit, have %d", cols, len(x))
	}

	a := mat.NewDense(len(x), cols, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}
	b := mat.NewVecDense(len(y), append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(a, b); err != nil {
		return exchange.Model{}, fmt.Errorf("least squares did not converge: %w", err)
	}

	m := exchange.Model{Bias: beta.AtVec(0)}
	for j := range m.Weights {
		m.Weights[j] = beta.AtVec(j + 1)
	}
	return m, nil
}

// R2 is the coefficient of determination of the model on (x, y). It is NaN
// when y has no variance.
func R2(m exchange.Model, x []vitals.FeatureVector, y []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		d := v - m.Predict(x[i])
		ssRes += d * d
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}
