package vitals_test

import (
	"errors"
	"math"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Boundaries(t *testing.T) {
	table := vitals.DefaultTable

	lo := table.Normalize(vitals.ClinicalSample{Age: 29, BloodPressure: 94, Cholesterol: 126, MaxHeartRate: 71})
	hi := table.Normalize(vitals.ClinicalSample{Age: 77, BloodPressure: 200, Cholesterol: 564, MaxHeartRate: 202})

	for i := range vitals.NumFeatures {
		assert.Equal(t, 0.0, lo[i], "feature %s at min", vitals.Feature(i))
		assert.Equal(t, 1.0, hi[i], "feature %s at max", vitals.Feature(i))
	}
}

func TestNormalize_AgeMidpoint(t *testing.T) {
	v := vitals.DefaultTable.Normalize(vitals.ClinicalSample{Age: 53, BloodPressure: 94, Cholesterol: 126, MaxHeartRate: 71})
	assert.Equal(t, 0.5, v[vitals.Age])
}

func TestNormalize_AffineAgainstTable(t *testing.T) {
	table := vitals.DefaultTable
	s := vitals.ClinicalSample{Age: 50, BloodPressure: 120, Cholesterol: 200, MaxHeartRate: 150}
	v := table.Normalize(s)

	raw := s.Values()
	for _, f := range vitals.Features() {
		r := table.Range(f)
		assert.InDelta(t, (raw[f]-r.Min)/(r.Max-r.Min), v[f], 1e-12)
	}
	assert.InDelta(t, 21.0/48.0, v[vitals.Age], 1e-12)
	assert.InDelta(t, 26.0/106.0, v[vitals.BloodPressure], 1e-12)
	assert.InDelta(t, 74.0/438.0, v[vitals.Cholesterol], 1e-12)
	assert.InDelta(t, 79.0/131.0, v[vitals.MaxHeartRate], 1e-12)
}

func TestNormalize_InRangeStaysInUnitInterval(t *testing.T) {
	table := vitals.DefaultTable
	for age := 29.0; age <= 77; age++ {
		for bp := 94.0; bp <= 200; bp += 7 {
			for chol := 126.0; chol <= 564; chol += 31 {
				for hr := 71.0; hr <= 202; hr += 13 {
					v := table.Normalize(vitals.ClinicalSample{Age: age, BloodPressure: bp, Cholesterol: chol, MaxHeartRate: hr})
					for _, x := range v {
						require.GreaterOrEqual(t, x, 0.0)
						require.LessOrEqual(t, x, 1.0)
					}
				}
			}
		}
	}
}

func TestNormalize_OutOfRangeExtrapolates(t *testing.T) {
	v := vitals.DefaultTable.Normalize(vitals.ClinicalSample{Age: 101, BloodPressure: 80, Cholesterol: 126, MaxHeartRate: 71})
	assert.InDelta(t, 1.5, v[vitals.Age], 1e-12)
	assert.Less(t, v[vitals.BloodPressure], 0.0)
}

func TestDenormalize_Inverse(t *testing.T) {
	table := vitals.DefaultTable
	s := vitals.ClinicalSample{Age: 61, BloodPressure: 134, Cholesterol: 234, MaxHeartRate: 145}
	back := table.Denormalize(table.Normalize(s))
	assert.InDelta(t, s.Age, back.Age, 1e-9)
	assert.InDelta(t, s.BloodPressure, back.BloodPressure, 1e-9)
	assert.InDelta(t, s.Cholesterol, back.Cholesterol, 1e-9)
	assert.InDelta(t, s.MaxHeartRate, back.MaxHeartRate, 1e-9)
}

func TestRangeTable_Validate(t *testing.T) {
	require.NoError(t, vitals.DefaultTable.Validate())

	bad := vitals.DefaultTable
	bad.Ranges[vitals.Cholesterol] = vitals.Range{Min: 200, Max: 200}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cholesterol")

	unversioned := vitals.DefaultTable
	unversioned.Version = ""
	require.Error(t, unversioned.Validate())
}

func TestCheck_Policies(t *testing.T) {
	table := vitals.DefaultTable
	s := vitals.ClinicalSample{Age: 90, BloodPressure: 120, Cholesterol: 100, MaxHeartRate: 150}

	_, err := table.Check(s, vitals.Reject)
	var oor *vitals.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	require.Len(t, oor.Violations, 2)
	assert.Equal(t, vitals.Age, oor.Violations[0].Feature)
	assert.Equal(t, vitals.Cholesterol, oor.Violations[1].Feature)

	clamped, err := table.Check(s, vitals.Clamp)
	require.NoError(t, err)
	assert.Equal(t, 77.0, clamped.Age)
	assert.Equal(t, 126.0, clamped.Cholesterol)
	assert.Equal(t, 120.0, clamped.BloodPressure)

	kept, err := table.Check(s, vitals.Extrapolate)
	require.NoError(t, err)
	assert.Equal(t, s, kept)

	_, err = table.Check(vitals.ClinicalSample{Age: math.NaN(), BloodPressure: 120, Cholesterol: 200, MaxHeartRate: 150}, vitals.Extrapolate)
	assert.True(t, errors.Is(err, vitals.ErrNotFinite))
}

func TestParsePolicy(t *testing.T) {
	p, err := vitals.ParsePolicy("CLAMP")
	require.NoError(t, err)
	assert.Equal(t, vitals.Clamp, p)

	p, err = vitals.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, vitals.Reject, p)

	_, err = vitals.ParsePolicy("ignore")
	require.Error(t, err)
}

func TestFeatureColumns(t *testing.T) {
	assert.Equal(t, []string{"age", "trestbps", "chol", "thalach"}, vitals.Columns())
	assert.Equal(t, "thalach", vitals.MaxHeartRate.Column())
}
