// Package leaderboard holds the pure core of the engine: run classification,
// duration/pace formatting, week bucketing, ranking and pagination. Everything
// here is request-scoped and side-effect free.
package leaderboard

import (
	"fmt"
	"math"
	"time"

	"runhub/internal/api"
	"runhub/internal/domain"
)

// Distance tolerance bands in km, inclusive, checked in priority order.
// Wider than the nominal race distances to absorb GPS measurement drift.
var raceBands = []struct {
	raceType domain.RaceType
	min, max float64
}{
	{domain.RaceFiveK, 4.5, 5.5},
	{domain.RaceTenK, 9.7, 10.5},
	{domain.RaceHalfMarathon, 20.0, 22.0},
	{domain.RaceFullMarathon, 41.0, 43.0},
}

// Classify assigns a race category to a run by its distance in meters.
func Classify(distanceMeters float64) domain.RaceType {
	distanceKm := distanceMeters / 1000
	for _, band := range raceBands {
		if distanceKm >= band.min && distanceKm <= band.max {
			return band.raceType
		}
	}
	return domain.RaceOther
}

// FormatDuration renders seconds as "HH:MM:SS". Hours do not roll over into
// days, an ultra can legitimately show "26:10:03".
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// ComputePace renders seconds over distance as "M:SS min/km". Minutes are
// floored and seconds rounded; a rounded seconds component of 60 carries into
// the minutes. Zero distance yields the "N/A" sentinel instead of an error.
func ComputePace(seconds int, distanceKm float64) string {
	if distanceKm == 0 {
		return "N/A"
	}

	paceSecondsPerKm := float64(seconds) / distanceKm
	mins := int(paceSecondsPerKm / 60)
	secs := int(math.Round(math.Mod(paceSecondsPerKm, 60)))
	if secs == 60 {
		secs = 0
		mins++
	}
	return fmt.Sprintf("%d:%02d min/km", mins, secs)
}

// ClassifyActivity derives a ClassifiedRun from one raw upstream record.
// Returns an error for records whose start date cannot be parsed; callers
// skip those rather than propagate undefined values into formatting.
func ClassifyActivity(a api.Activity) (domain.ClassifiedRun, error) {
	start, err := time.Parse(time.RFC3339, a.StartDateLocal)
	if err != nil {
		return domain.ClassifiedRun{}, fmt.Errorf("activity %d has unparseable start date %q: %w", a.ID, a.StartDateLocal, err)
	}

	distanceKm := math.Round(a.Distance/1000*100) / 100

	return domain.ClassifiedRun{
		ID:            a.ID,
		Name:          a.Name,
		RaceType:      Classify(a.Distance),
		DistanceKm:    distanceKm,
		TimeSeconds:   a.MovingTime,
		TimeFormatted: FormatDuration(a.MovingTime),
		Pace:          ComputePace(a.MovingTime, distanceKm),
		DateFormatted: start.Format("02 Jan 2006"),
		StartDate:     start,
	}, nil
}
