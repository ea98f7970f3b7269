package vitals

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Policy decides what happens to operator input outside the range table.
type Policy string

const (
	// Reject refuses samples with any out-of-range feature.
	Reject Policy = "reject"
	// Clamp moves out-of-range features onto the nearest bound.
	Clamp Policy = "clamp"
	// Extrapolate keeps the value; its feature lies outside [0,1].
	Extrapolate Policy = "extrapolate"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Reject, Clamp, Extrapolate:
		return p, nil
	case "":
		return Reject, nil
	default:
		return "", fmt.Errorf("unknown range policy %q (want reject, clamp or extrapolate)", s)
	}
}

// OutOfRangeError lists every feature that fell outside its range.
type OutOfRangeError struct {
	Violations []Violation
}

type Violation struct {
	Feature Feature
	Value   float64
	Range   Range
}

func (e *OutOfRangeError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s=%g not in [%g, %g]", v.Feature, v.Value, v.Range.Min, v.Range.Max))
	}
	return "out of range: " + strings.Join(parts, "; ")
}

var ErrNotFinite = errors.New("measurement is not a finite number")

// Check applies the policy to a sample. NaN and infinite measurements are
// refused under every policy.
func (t RangeTable) Check(s ClinicalSample, p Policy) (ClinicalSample, error) {
	vals := s.Values()
	var violations []Violation
	for i, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return s, fmt.Errorf("%s: %w", Feature(i), ErrNotFinite)
		}
		r := t.Ranges[i]
		if r.Contains(x) {
			continue
		}
		switch p {
		case Clamp:
			vals[i] = r.Clamp(x)
		case Extrapolate:
		default:
			violations = append(violations, Violation{Feature: Feature(i), Value: x, Range: r})
		}
	}
	if len(violations) > 0 {
		return s, &OutOfRangeError{Violations: violations}
	}
	return SampleFromValues(vals), nil
}
