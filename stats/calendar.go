// Package stats derives view-ready aggregates from raw GitHub activity
// data: contribution overviews, language distribution, repository
// counters, and the repository list filter/sort pipeline.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Nethaiah/commitlens/models"
)

// dayNames indexes GitHub's weekday numbering (Sunday = 0).
var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// dayLabels are the short Mon..Sun labels used by the productivity bar.
var dayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// FlattenWeeks returns all days of the calendar in ascending date
// order.
func FlattenWeeks(weeks []models.ContributionWeek) []models.ContributionDay {
	var days []models.ContributionDay
	for _, w := range weeks {
		days = append(days, w.Days...)
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// ComputeOverview derives the activity statistics for a calendar.
// total is the platform-reported contribution total for the range;
// days must cover the same range. An empty calendar yields all zeros.
func ComputeOverview(total int, days []models.ContributionDay) models.Overview {
	sorted := make([]models.ContributionDay, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	activeDays := 0
	longestStreak := 0
	streak := 0
	for _, d := range sorted {
		if d.Count > 0 {
			activeDays++
			streak++
			if streak > longestStreak {
				longestStreak = streak
			}
		} else {
			streak = 0
		}
	}

	currentStreak := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Count == 0 {
			break
		}
		currentStreak++
	}

	totalDays := len(sorted)
	if totalDays == 0 {
		totalDays = 1
	}
	avg := math.Round(float64(total)/float64(totalDays)*100) / 100

	return models.Overview{
		TotalCommits:     total,
		ActiveDays:       activeDays,
		CurrentStreak:    currentStreak,
		LongestStreak:    longestStreak,
		AvgCommitsPerDay: avg,
	}
}

// PeakDay returns the weekday name and commit count of the busiest day
// in the given days. Equal counts resolve to the later occurrence: the
// scan compares with >= so later ties overwrite earlier ones.
func PeakDay(days []models.ContributionDay) (string, int) {
	peakIdx := 0
	peakVal := 0
	for _, d := range days {
		if d.Count >= peakVal {
			peakVal = d.Count
			peakIdx = ((d.Weekday % 7) + 7) % 7
		}
	}
	return dayNames[peakIdx], peakVal
}

// MostProductiveDays projects the last 7 calendar days onto short
// weekday labels for the productivity bar.
func MostProductiveDays(weeks []models.ContributionWeek) []models.MostProductiveDay {
	days := FlattenWeeks(weeks)
	if len(days) > 7 {
		days = days[len(days)-7:]
	}

	out := make([]models.MostProductiveDay, 0, len(days))
	for _, d := range days {
		label := ""
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			// time.Weekday is Sunday-based; shift to a Monday-based index.
			label = dayLabels[(int(t.Weekday())+6)%7]
		}
		out = append(out, models.MostProductiveDay{Day: label, Commits: d.Count})
	}
	return out
}
