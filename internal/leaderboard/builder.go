package leaderboard

import (
	"math"
	"sort"

	"runhub/internal/domain"
)

// BuildRaceLeaderboard filters runs to one race category and ranks them
// fastest first. Ties on elapsed time break deterministically by start date,
// then activity ID, so repeated requests always agree on ordering.
func BuildRaceLeaderboard(runs []domain.ClassifiedRun, raceType domain.RaceType) []domain.RaceRow {
	var filtered []domain.ClassifiedRun
	for _, run := range runs {
		if run.RaceType == raceType {
			filtered = append(filtered, run)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.TimeSeconds != b.TimeSeconds {
			return a.TimeSeconds < b.TimeSeconds
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})

	rows := make([]domain.RaceRow, len(filtered))
	for i, run := range filtered {
		rows[i] = domain.RaceRow{
			Rank:       i + 1,
			Name:       run.Name,
			Date:       run.DateFormatted,
			DistanceKm: run.DistanceKm,
			Time:       run.TimeFormatted,
			Pace:       run.Pace,
		}
	}
	return rows
}

// BuildWeeklySparse ranks the distinct weeks an athlete has run, most recent
// week first. Weeks with no activity do not appear.
func BuildWeeklySparse(runs []domain.ClassifiedRun) []domain.WeeklyRow {
	grouped := GroupByWeek(runs)

	buckets := make([]domain.WeekBucket, 0, len(grouped))
	for _, bucket := range grouped {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].WeekStart.After(buckets[j].WeekStart)
	})

	return bucketsToRows(buckets)
}

// BuildWeeklyDense turns a pre-accumulated dense window into rows, keeping
// generation order (most recent first). Empty weeks render numeric zero.
func BuildWeeklyDense(buckets []domain.WeekBucket) []domain.WeeklyRow {
	return bucketsToRows(buckets)
}

func bucketsToRows(buckets []domain.WeekBucket) []domain.WeeklyRow {
	rows := make([]domain.WeeklyRow, len(buckets))
	for i, bucket := range buckets {
		rows[i] = domain.WeeklyRow{
			Rank:             i + 1,
			WeekStart:        bucket.WeekStart.Format("2006-01-02"),
			Label:            bucket.Label,
			TotalKm:          math.Round(bucket.TotalKm*100) / 100,
			TotalTimeSeconds: bucket.TotalTimeSeconds,
		}
	}
	return rows
}
