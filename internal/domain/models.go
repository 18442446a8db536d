package domain

import (
	"time"
)

// RaceType is the distance category assigned to a run. Bands are wider than
// the nominal race distances to tolerate GPS drift.
type RaceType string

const (
	RaceFiveK        RaceType = "5K"
	RaceTenK         RaceType = "10K"
	RaceHalfMarathon RaceType = "HM"
	RaceFullMarathon RaceType = "FM"
	RaceOther        RaceType = "OTHER"
)

// Athlete is the per-account credential record persisted across requests.
// Tokens are mutated only by the credential manager on refresh.
type Athlete struct {
	AthleteID      int64
	Username       string
	Firstname      string
	Lastname       string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt int64 // epoch seconds
	JoinedAt       time.Time
}

// DisplayName is what the community leaderboard shows for an athlete.
func (a *Athlete) DisplayName() string {
	if a.Firstname != "" {
		return a.Firstname
	}
	return a.Username
}

// ClassifiedRun is derived from a raw activity per request, never cached.
type ClassifiedRun struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	RaceType      RaceType  `json:"raceType"`
	DistanceKm    float64   `json:"distance_km"`
	TimeSeconds   int       `json:"time_seconds"`
	TimeFormatted string    `json:"time"`
	Pace          string    `json:"pace"`
	DateFormatted string    `json:"date"`
	StartDate     time.Time `json:"-"`
}

// WeekBucket accumulates distance and time for one Monday-aligned week.
type WeekBucket struct {
	WeekStart        time.Time `json:"week_start"`
	Label            string    `json:"label"`
	TotalKm          float64   `json:"total_km"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
}

// RaceRow is one ranked entry of a per-distance race leaderboard.
type RaceRow struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	DistanceKm float64 `json:"distance_km"`
	Time       string  `json:"time"`
	Pace       string  `json:"pace"`
}

// WeeklyRow is one entry of the personal weekly-mileage leaderboard.
type WeeklyRow struct {
	Rank             int     `json:"rank"`
	WeekStart        string  `json:"week_start"`
	Label            string  `json:"label,omitempty"`
	TotalKm          float64 `json:"total_km"`
	TotalTimeSeconds int     `json:"total_time_seconds"`
}

// CommunityEntry is one ranked athlete in the cross-user weekly leaderboard.
type CommunityEntry struct {
	Rank        int     `json:"rank"`
	AthleteID   int64   `json:"athlete_id"`
	DisplayName string  `json:"name"`
	TotalKm     float64 `json:"total_km"`
	RunCount    int     `json:"run_count"`
}

// Page wraps an ordered subsequence of results with pagination metadata.
// Total reflects the pre-slice collection size.
type Page[T any] struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Results    []T `json:"results"`
}
