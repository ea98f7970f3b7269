package vitals

// Normalize maps a sample to the unit interval with
// (x - min) / (max - min) per feature. It is a pure affine map: values
// outside the table's ranges produce features outside [0,1].
//
// The table must satisfy max > min for every feature (see Validate).
func (t RangeTable) Normalize(s ClinicalSample) FeatureVector {
	var out FeatureVector
	for i, x := range s.Values() {
		r := t.Ranges[i]
		out[i] = (x - r.Min) / (r.Max - r.Min)
	}
	return out
}

// Denormalize is the inverse of Normalize.
func (t RangeTable) Denormalize(v FeatureVector) ClinicalSample {
	var raw [NumFeatures]float64
	for i, x := range v {
		r := t.Ranges[i]
		raw[i] = r.Min + x*(r.Max-r.Min)
	}
	return SampleFromValues(raw)
}
