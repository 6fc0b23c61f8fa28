// ABOUTME: Maps Ask time filters to the start of the search window
// ABOUTME: Month-based filters step back calendar months, not fixed day counts
package core

import (
	"strings"
	"time"

	"github.com/harper/voicenotes/internal/models"
)

// ParseTimeFilter normalizes a caller-supplied filter. Unknown or empty
// values search everything.
func ParseTimeFilter(s string) models.TimeFilter {
	switch f := models.TimeFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case models.FilterWeek, models.FilterMonth, models.FilterThreeMonths:
		return f
	}
	return models.FilterAll
}

// TimeRangeStart returns the inclusive lower bound for filter relative to
// now. The zero time means unbounded.
func TimeRangeStart(filter models.TimeFilter, now time.Time) time.Time {
	switch filter {
	case models.FilterWeek:
		return now.AddDate(0, 0, -7)
	case models.FilterMonth:
		return now.AddDate(0, -1, 0)
	case models.FilterThreeMonths:
		return now.AddDate(0, -3, 0)
	}
	return time.Time{}
}
