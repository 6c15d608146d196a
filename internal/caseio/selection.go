package caseio

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive time interval. Open ends are unbounded.
type Range struct {
	Lo, Hi       float64
	HasLo, HasHi bool
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t float64) bool {
	if r.HasLo && t < r.Lo {
		return false
	}
	if r.HasHi && t > r.Hi {
		return false
	}
	return true
}

// ParseRanges parses a comma separated list of times and ranges such as
// "0.5:1.5,2", ":1" or "3:".
func ParseRanges(s string) ([]Range, error) {
	var ranges []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, ":")
		var r Range
		if lo = strings.TrimSpace(lo); lo != "" {
			v, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
			}
			r.Lo, r.HasLo = v, true
		}
		if !isRange {
			if !r.HasLo {
				return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
			}
			r.Hi, r.HasHi = r.Lo, true
			ranges = append(ranges, r)
			continue
		}
		if hi = strings.TrimSpace(hi); hi != "" {
			v, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadRange, part)
			}
			r.Hi, r.HasHi = v, true
		}
		if r.HasLo && r.HasHi && r.Lo > r.Hi {
			return nil, fmt.Errorf("%w: %q is empty", ErrBadRange, part)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// Selection restricts which time directories are visible.
type Selection struct {
	// Ranges in ParseRanges syntax. Empty selects every time.
	Ranges string
	// LatestTime keeps only the last selected time.
	LatestTime bool
	// NoZero drops time 0.
	NoZero bool
}

// Apply filters an ascending list of times.
func (s Selection) Apply(all []float64) ([]float64, error) {
	ranges, err := ParseRanges(s.Ranges)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(all))
	for _, t := range all {
		if s.NoZero && t == 0 {
			continue
		}
		if len(ranges) > 0 && !anyContains(ranges, t) {
			continue
		}
		out = append(out, t)
	}

	if s.LatestTime && len(out) > 1 {
		out = out[len(out)-1:]
	}
	return out, nil
}

func anyContains(ranges []Range, t float64) bool {
	for _, r := range ranges {
		if r.Contains(t) {
			return true
		}
	}
	return false
}
