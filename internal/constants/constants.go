package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second

	// Per-athlete budget inside the community fan-out; one slow or dead
	// upstream call must not hold the whole batch hostage.
	CommunityAthleteTimeout = 15 * time.Second
)

const (
	// ActivityPageSize is the Strava maximum for per_page.
	ActivityPageSize = 100

	DefaultPage  = 1
	DefaultLimit = 10

	// DenseWeekWindow is the number of consecutive weeks generated for the
	// gap-free personal history, current week included.
	DenseWeekWindow = 12
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
