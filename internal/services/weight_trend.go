package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"

	poundsPerKilogram = 2.20462262185
	trendStableBand   = 0.1
)

type WeightTrend struct {
	Direction        string    `json:"direction"`
	ChangeAmount     float64   `json:"changeAmount"`
	ChangePercentage float64   `json:"changePercentage"`
	Unit             string    `json:"unit"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	EntryCount       int       `json:"entryCount"`
}

func ConvertWeight(value float64, from string, to string) float64 {
	switch {
	case from == to:
		return value
	case from == models.WeightUnitLB && to == models.WeightUnitKG:
		return value / poundsPerKilogram
	case from == models.WeightUnitKG && to == models.WeightUnitLB:
		return value * poundsPerKilogram
	default:
		return value
	}
}

// BuildWeightTrend compares the earliest and latest entries within the last
// days, counted back from the most recent entry. Weights are converted to unit
// first. It returns false when fewer than two entries fall inside the window.
func BuildWeightTrend(entries []models.WeightEntry, days int, unit string) (WeightTrend, bool) {
	if unit != models.WeightUnitLB {
		unit = models.WeightUnitKG
	}
	if len(entries) < 2 {
		return WeightTrend{Direction: TrendStable, Unit: unit, EntryCount: len(entries)}, false
	}

	sorted := make([]models.WeightEntry, 0, len(entries))
	sorted = append(sorted, entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	latest := sorted[len(sorted)-1]
	windowStart := DateAtLocation(latest.Date, time.UTC).AddDate(0, 0, -days)
	window := make([]models.WeightEntry, 0, len(sorted))
	for _, entry := range sorted {
		if !entry.Date.Before(windowStart) {
			window = append(window, entry)
		}
	}
	if len(window) < 2 {
		return WeightTrend{Direction: TrendStable, Unit: unit, EntryCount: len(window)}, false
	}

	first := window[0]
	firstWeight := ConvertWeight(first.Weight, first.Unit, unit)
	lastWeight := ConvertWeight(latest.Weight, latest.Unit, unit)
	change := lastWeight - firstWeight

	trend := WeightTrend{
		Direction:    TrendStable,
		ChangeAmount: roundTo(change, 1),
		Unit:         unit,
		From:         first.Date,
		To:           latest.Date,
		EntryCount:   len(window),
	}
	if firstWeight != 0 {
		trend.ChangePercentage = roundTo(change/firstWeight*100, 1)
	}
	if math.Abs(change) >= trendStableBand {
		if change > 0 {
			trend.Direction = TrendIncreasing
		} else {
			trend.Direction = TrendDecreasing
		}
	}
	return trend, true
}
