package field

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of per-entity magnitudes of a field.
type Summary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Magnitudes returns the magnitude of every entity of raw.
func Magnitudes(raw *Raw) []float64 {
	if raw.Validate() != nil {
		return nil
	}
	switch raw.Kind {
	case KindScalar:
		return magnitudes[Scalar](raw)
	case KindVector:
		return magnitudes[Vector](raw)
	case KindTensor:
		return magnitudes[Tensor](raw)
	case KindSymmTensor:
		return magnitudes[SymmTensor](raw)
	case KindSphTensor:
		return magnitudes[SphTensor](raw)
	}
	return nil
}

func magnitudes[T Value[T]](raw *Raw) []float64 {
	var zero T
	nc := raw.Kind.Components()
	out := make([]float64, raw.Count)
	for i := range out {
		out[i] = zero.Unflatten(raw.Data[i*nc : (i+1)*nc]).Mag()
	}
	return out
}

// Summarize computes magnitude statistics. An empty field yields a zero
// Summary.
func Summarize(raw *Raw) Summary {
	mags := Magnitudes(raw)
	if len(mags) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(mags),
		Min:   floats.Min(mags),
		Max:   floats.Max(mags),
		Mean:  stat.Mean(mags, nil),
	}
}
