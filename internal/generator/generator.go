// Package generator produces random patient samples for demo runs.
package generator

import (
	"math/rand/v2"

	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// Generator draws whole-number vitals uniformly from each inclusive range
// of the table.
type Generator struct {
	Table vitals.RangeTable
	Rand  *rand.Rand
}

// New seeds the generator from the runtime source when r is nil.
func New(table vitals.RangeTable, r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{Table: table, Rand: r}
}

func (g *Generator) Sample() vitals.ClinicalSample {
	var v [vitals.NumFeatures]float64
	for _, f := range vitals.Features() {
		v[f] = g.draw(g.Table.Range(f))
	}
	return vitals.SampleFromValues(v)
}

func (g *Generator) draw(r vitals.Range) float64 {
	lo := int(r.Min)
	hi := int(r.Max)
	return float64(lo + g.Rand.IntN(hi-lo+1))
}

// Produced is what one generator run wrote.
type Produced struct {
	Sample   vitals.ClinicalSample
	Features vitals.FeatureVector
	Path     string
}

// Produce draws a sample, normalizes it and replaces the raw input file.
func (g *Generator) Produce(l exchange.Layout) (*Produced, error) {
	s := g.Sample()
	v := g.Table.Normalize(s)
	if err := exchange.WriteRawInput(l, v); err != nil {
		return nil, err
	}
	return &Produced{Sample: s, Features: v, Path: l.Path(exchange.RawInput)}, nil
}
