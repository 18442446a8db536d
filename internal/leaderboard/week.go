package leaderboard

import (
	"fmt"
	"time"

	"runhub/internal/domain"
)

// WeekKeyOf returns the Monday 00:00:00 (in t's location) that canonically
// identifies the calendar week containing t. Applying it to its own result
// returns the same key.
func WeekKeyOf(t time.Time) time.Time {
	day := int(t.Weekday()) // 0=Sunday .. 6=Saturday
	offset := 1 - day
	if day == 0 {
		offset = -6
	}
	monday := t.AddDate(0, 0, offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// WeekLabel renders a week as "YYYY/Mon (startDay-endDay)".
func WeekLabel(weekStart time.Time) string {
	end := weekStart.AddDate(0, 0, 6)
	return fmt.Sprintf("%d/%s (%d-%d)", weekStart.Year(), weekStart.Format("Jan"), weekStart.Day(), end.Day())
}

// GenerateWeeks builds count consecutive week buckets walking backward from
// the current week, zero-seeded, most recent first. Weeks with no activity
// stay in the window.
func GenerateWeeks(count int) []domain.WeekBucket {
	return GenerateWeeksFrom(time.Now(), count)
}

// GenerateWeeksFrom is GenerateWeeks anchored at an explicit instant.
func GenerateWeeksFrom(now time.Time, count int) []domain.WeekBucket {
	buckets := make([]domain.WeekBucket, 0, count)
	start := WeekKeyOf(now)
	for i := 0; i < count; i++ {
		weekStart := start.AddDate(0, 0, -7*i)
		buckets = append(buckets, domain.WeekBucket{
			WeekStart: weekStart,
			Label:     WeekLabel(weekStart),
		})
	}
	return buckets
}

// GroupByWeek is the sparse representation: only weeks that actually had
// activity appear, keyed by their Monday.
func GroupByWeek(runs []domain.ClassifiedRun) map[time.Time]domain.WeekBucket {
	totals := make(map[time.Time]domain.WeekBucket)
	for _, run := range runs {
		key := WeekKeyOf(run.StartDate)
		bucket, ok := totals[key]
		if !ok {
			bucket = domain.WeekBucket{WeekStart: key, Label: WeekLabel(key)}
		}
		bucket.TotalKm += run.DistanceKm
		bucket.TotalTimeSeconds += run.TimeSeconds
		totals[key] = bucket
	}
	return totals
}

// AccumulateInto assigns every run to the bucket whose inclusive
// [weekStart, weekStart+6d 23:59:59.999] range contains its start date.
// Buckets never overlap, so at most one matches.
func AccumulateInto(buckets []domain.WeekBucket, runs []domain.ClassifiedRun) {
	for _, run := range runs {
		for i := range buckets {
			start := buckets[i].WeekStart
			end := start.AddDate(0, 0, 7)
			if !run.StartDate.Before(start) && run.StartDate.Before(end) {
				buckets[i].TotalKm += run.DistanceKm
				buckets[i].TotalTimeSeconds += run.TimeSeconds
				break
			}
		}
	}
}
