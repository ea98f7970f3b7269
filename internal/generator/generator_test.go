package generator_test

import (
	"math/rand/v2"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/generator"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_WithinInclusiveRanges(t *testing.T) {
	g := generator.New(vitals.DefaultTable, rand.New(rand.NewPCG(1, 2)))
	seenMin := make(map[vitals.Feature]bool)
	seenMax := make(map[vitals.Feature]bool)
	for i := 0; i < 20000; i++ {
		s := g.Sample()
		vals := s.Values()
		for _, f := range vitals.Features() {
			r := vitals.DefaultTable.Range(f)
			x := vals[f]
			require.True(t, r.Contains(x), "%s=%v", f, x)
			require.Equal(t, float64(int(x)), x)
			if x == r.Min {
				seenMin[f] = true
			}
			if x == r.Max {
				seenMax[f] = true
			}
		}
	}
	assert.Len(t, seenMin, vitals.NumFeatures)
	assert.Len(t, seenMax, vitals.NumFeatures)
}

func TestProduce_WritesNormalizedVector(t *testing.T) {
	root := t.TempDir()
	l := exchange.NewLayout(root)
	g := generator.New(vitals.DefaultTable, rand.New(rand.NewPCG(42, 42)))

	p, err := g.Produce(l)
	require.NoError(t, err)
	assert.Equal(t, l.Path(exchange.RawInput), p.Path)

	v, err := exchange.ReadRawInput(l)
	require.NoError(t, err)
	for i := range v {
		assert.InDelta(t, p.Features[i], v[i], 5e-7)
		assert.GreaterOrEqual(t, v[i], 0.0)
		assert.LessOrEqual(t, v[i], 1.0)
	}
	back := vitals.DefaultTable.Denormalize(p.Features)
	assert.InDelta(t, p.Sample.Age, back.Age, 1e-9)
}

func TestNew_NilRand(t *testing.T) {
	g := generator.New(vitals.DefaultTable, nil)
	require.NotNil(t, g.Rand)
	s := g.Sample()
	assert.True(t, vitals.DefaultTable.Range(vitals.Age).Contains(s.Age))
}
