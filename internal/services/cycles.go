package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

type CycleSummary struct {
	CycleCount          int       `json:"cycleCount"`
	LastPeriodStart     time.Time `json:"lastPeriodStart"`
	AverageCycleLength  float64   `json:"averageCycleLength"`
	MedianCycleLength   int       `json:"medianCycleLength"`
	AveragePeriodLength float64   `json:"averagePeriodLength"`
	NextPeriodStart     time.Time `json:"nextPeriodStart"`
	CurrentCycleDay     int       `json:"currentCycleDay"`
}

// BuildCycleSummary derives averages from the six most recent cycles and
// predicts the next start from the median length, or the default length when
// there is only one cycle on record.
func BuildCycleSummary(entries []models.CycleEntry, now time.Time) CycleSummary {
	summary := CycleSummary{CycleCount: len(entries)}
	if len(entries) == 0 {
		return summary
	}

	sorted := make([]models.CycleEntry, 0, len(entries))
	sorted = append(sorted, entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	lengths := make([]int, 0, len(sorted))
	for index := 1; index < len(sorted); index++ {
		if length := daysBetween(sorted[index-1].StartDate, sorted[index].StartDate); length > 0 {
			lengths = append(lengths, length)
		}
	}
	recentLengths := tailInts(lengths, 6)
	if len(recentLengths) > 0 {
		summary.AverageCycleLength = roundTo(averageInts(recentLengths), 1)
		summary.MedianCycleLength = medianInt(recentLengths)
	}

	periodLengths := make([]int, 0, len(sorted))
	for _, entry := range sorted {
		if entry.EndDate != nil {
			if length := daysBetween(entry.StartDate, *entry.EndDate) + 1; length > 0 {
				periodLengths = append(periodLengths, length)
			}
		}
	}
	if recent := tailInts(periodLengths, 6); len(recent) > 0 {
		summary.AveragePeriodLength = roundTo(averageInts(recent), 1)
	}

	last := sorted[len(sorted)-1]
	summary.LastPeriodStart = DateAtLocation(last.StartDate, time.UTC)

	predictionLength := summary.MedianCycleLength
	if predictionLength == 0 {
		predictionLength = models.DefaultCycleLength
	}
	summary.NextPeriodStart = summary.LastPeriodStart.AddDate(0, 0, predictionLength)

	if day := daysBetween(summary.LastPeriodStart, now) + 1; day > 0 {
		summary.CurrentCycleDay = day
	}
	return summary
}

func tailInts(values []int, n int) []int {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var total int
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int, 0, len(values))
	sorted = append(sorted, values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	left := sorted[mid-1]
	right := sorted[mid]
	return int(float64(left+right)/2 + 0.5)
}
