package services

import (
	"fmt"
	"time"

	"github.com/workshoperp/demandcast/internal/models"
)

// monthKeyLayout is the wire format for monthly period keys.
const monthKeyLayout = "2006-01"

// ParseMonth parses a "YYYY-MM" period key into the first day of that
// month in UTC.
func ParseMonth(key string) (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad period %q: %v", ErrInvalidRange, key, err)
	}
	return t.UTC(), nil
}

// MonthKey formats a period as its "YYYY-MM" key.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// truncateToMonth normalizes an arbitrary timestamp to the first day of
// its calendar month in UTC.
func truncateToMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BuildDemandSeries produces a gapless monthly demand series covering the
// inclusive [start, end] month range. Observations are keyed "YYYY-MM";
// months without an observation are filled with zero. The output length
// always equals the number of calendar months spanned, in chronological
// order. A reversed range is a caller error and returns ErrInvalidRange.
func BuildDemandSeries(start, end time.Time, observations map[string]float64) (models.DemandSeries, error) {
	first := truncateToMonth(start)
	last := truncateToMonth(end)
	if last.Before(first) {
		return models.DemandSeries{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, MonthKey(first), MonthKey(last))
	}

	var points []models.SeriesPoint
	for period := first; !period.After(last); period = period.AddDate(0, 1, 0) {
		qty := observations[MonthKey(period)]
		if qty < 0 {
			qty = 0
		}
		points = append(points, models.SeriesPoint{Period: period, Quantity: qty})
	}

	return models.DemandSeries{Points: points}, nil
}
