package report

import (
	"math"
	"strconv"
	"strings"

	"fieldtrack.org/internal/track"
)

// EntryHours derives a non-negative fractional-hour duration for one entry.
// When both time-of-day strings parse as HH:MM the minute difference is used,
// adding a day when the span crosses midnight. Otherwise the date span is the
// fallback. Malformed data degrades to zero instead of failing the report.
func EntryHours(e track.TimeEntry) float64 {
	if e.StartTimeOfDay != "" && e.EndTimeOfDay != "" {
		start, okStart := parseClock(e.StartTimeOfDay)
		end, okEnd := parseClock(e.EndTimeOfDay)
		if okStart && okEnd {
			diff := end - start
			if diff < 0 {
				diff += 24 * 60
			}
			return clampHours(float64(diff) / 60)
		}
	}
	return clampHours(e.EndDate.Sub(e.StartDate).Hours())
}

// entryHours computes the duration of every entry once, so an entry appearing
// in several groupings within one report contributes a single cached value.
func entryHours(entries []track.TimeEntry) []float64 {
	hours := make([]float64, len(entries))
	for i, e := range entries {
		hours[i] = EntryHours(e)
	}
	return hours
}

// parseClock parses an "HH:MM" string into minutes since midnight.
func parseClock(s string) (int, bool) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

func clampHours(h float64) float64 {
	if math.IsNaN(h) || h < 0 {
		return 0
	}
	return h
}
