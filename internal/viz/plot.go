package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phaseavg/internal/storage"
)

// PlotMagnitudes draws per-entity magnitudes. Empty input yields "".
func PlotMagnitudes(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// PlotSamples draws the mean magnitude of every matched sample of a run. Fewer
// than two matches yield "".
func PlotSamples(samples []storage.Sample) string {
	var data []float64
	for _, s := range samples {
		if s.Status == "matched" {
			data = append(data, s.MeanMag)
		}
	}
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption("mean |x| per matched instant"),
	)
}
