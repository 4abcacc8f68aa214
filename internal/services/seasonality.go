package services

import (
	"github.com/workshoperp/demandcast/internal/models"
)

const (
	seasonalityMinPeriods       = 12
	seasonalityMinBucketSamples = 2
)

// neutralProfile returns a profile with every index at 1.0 and no
// seasonality flagged.
func neutralProfile(reason string) *models.SeasonalProfile {
	indices := make(map[int]float64, 12)
	for month := 1; month <= 12; month++ {
		indices[month] = 1.0
	}
	return &models.SeasonalProfile{
		Indices:        indices,
		HasSeasonality: false,
		Confidence:     "low",
		Reason:         reason,
		PeakMonth:      1,
		LowMonth:       1,
	}
}

// DetectSeasonality computes a per-calendar-month seasonal index: the
// ratio of that month's historical mean to the overall series mean.
// Buckets are keyed by each point's actual calendar month, so the series
// does not need to start in January.
//
// Seasonality is flagged significant only when the peak-to-trough index
// spread exceeds the threshold AND every month bucket holds at least two
// observations; a single year of data cannot distinguish a one-off spike
// from a recurring pattern and yields a low-confidence profile instead.
// This never returns nil and never fails: degenerate inputs produce a
// neutral profile with an explanatory reason.
func DetectSeasonality(series models.DemandSeries, threshold float64) *models.SeasonalProfile {
	if series.Len() < seasonalityMinPeriods {
		return neutralProfile("insufficient data")
	}

	sums := make(map[int]float64, 12)
	counts := make(map[int]int, 12)
	for _, p := range series.Points {
		month := int(p.Period.Month())
		sums[month] += p.Quantity
		counts[month]++
	}

	grandMean := calculateMean(series.Values())
	if grandMean == 0 {
		return neutralProfile("no demand recorded")
	}

	indices := make(map[int]float64, 12)
	minBucket := series.Len()
	for month := 1; month <= 12; month++ {
		index := 1.0
		if counts[month] > 0 {
			index = (sums[month] / float64(counts[month])) / grandMean
		}
		indices[month] = index
		if counts[month] < minBucket {
			minBucket = counts[month]
		}
	}

	peakMonth, lowMonth := 1, 1
	for month := 2; month <= 12; month++ {
		if indices[month] > indices[peakMonth] {
			peakMonth = month
		}
		if indices[month] < indices[lowMonth] {
			lowMonth = month
		}
	}
	spread := indices[peakMonth] - indices[lowMonth]
	profile := &models.SeasonalProfile{
		Indices:    indices,
		Confidence: "high",
		PeakMonth:  peakMonth,
		LowMonth:   lowMonth,
	}

	if minBucket < seasonalityMinBucketSamples {
		profile.Confidence = "low"
		profile.Reason = "insufficient samples per month"
		return profile
	}

	profile.HasSeasonality = spread > threshold
	return profile
}
