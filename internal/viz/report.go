package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/phaseavg/internal/average"
	"github.com/san-kum/phaseavg/internal/caseio"
)

// RenderReport summarizes a finished run.
func RenderReport(res *average.Result) string {
	var b strings.Builder

	b.WriteString(Title.Render(res.Name) + "\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("%s %s, written at %s", res.Kind.ClassName(), res.Field, res.TimeName)) + "\n\n")

	scheduled := len(res.Samples)
	metric := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("  %-14s", label)) + MetricValue.Render(value) + "\n")
	}
	metric("phase start", caseio.FormatTime(res.Schedule.PhaseStart, caseio.DefaultTimePrecision))
	metric("cycle", caseio.FormatTime(res.Schedule.CycleLength, caseio.DefaultTimePrecision))
	if res.Schedule.Tolerance > 0 {
		metric("tolerance", fmt.Sprintf("%g", res.Schedule.Tolerance))
	}
	metric("timestamps", fmt.Sprintf("%d", res.Visited))
	metric("averaged", fmt.Sprintf("%d of %d", res.Count, scheduled))
	metric("entities", fmt.Sprintf("%d", res.Summary.Count))
	metric("|mean| range", fmt.Sprintf("%.6g .. %.6g", res.Summary.Min, res.Summary.Max))
	metric("|mean| avg", fmt.Sprintf("%.6g", res.Summary.Mean))

	if scheduled > 0 {
		b.WriteString("\n" + HeaderStyle.Render("  instant      time         status      |x|") + "\n")
		mags := make([]float64, 0, scheduled)
		for _, s := range res.Samples {
			b.WriteString(fmt.Sprintf("  %-12s %-12s %s %s\n",
				caseio.FormatTime(s.Instant, caseio.DefaultTimePrecision),
				caseio.FormatTime(s.Time, caseio.DefaultTimePrecision),
				StatusStyle(s.Status.String()).Render(fmt.Sprintf("%-11s", s.Status)),
				magText(s)))
			if s.Status == average.StatusMatched {
				mags = append(mags, s.MeanMag)
			}
		}
		if len(mags) > 1 {
			b.WriteString("\n  " + Sparkline(mags, 40) + "\n")
		}
	}
	if res.Count == 0 {
		b.WriteString("\n" + StatusWarn.Render("  no snapshot matched the schedule; wrote a zero field") + "\n")
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func magText(v average.Visit) string {
	if v.Status != average.StatusMatched {
		return Subtle.Render("-")
	}
	return fmt.Sprintf("%.6g", v.MeanMag)
}
