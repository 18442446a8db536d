package service

import (
	"context"
	"testing"
	"time"

	"runhub/internal/api"
	"runhub/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekActivities(count int, km float64) []api.Activity {
	page := make([]api.Activity, count)
	for i := range page {
		page[i] = api.Activity{
			ID:             int64(i + 1),
			Name:           "Weekly Run",
			Type:           "Run",
			Distance:       km * 1000,
			MovingTime:     1800,
			StartDateLocal: "2026-08-25T07:00:00Z",
		}
	}
	return page
}

func newCommunityService(provider *fakeProvider, store *fakeStore, includeZero bool) *CommunityService {
	cfg := &config.Config{CommunityConcurrency: 3, CommunityIncludeZero: includeZero}
	return NewCommunityService(store, newActivityService(provider, store, 10), cfg, zerolog.Nop())
}

func testWeek() (time.Time, time.Time) {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 7)
}

func TestBuildCommunityLeaderboard(t *testing.T) {
	store := newFakeStore(validAthlete(1), validAthlete(2), validAthlete(3))
	provider := &fakeProvider{pages: map[string][][]api.Activity{
		"tok-1": {weekActivities(2, 5)},  // 10 km
		"tok-2": {weekActivities(3, 10)}, // 30 km
		"tok-3": {weekActivities(1, 21)}, // 21 km
	}}
	svc := newCommunityService(provider, store, false)

	weekStart, weekEnd := testWeek()
	athletes, err := store.List(context.Background())
	require.NoError(t, err)

	entries := svc.BuildCommunityLeaderboard(context.Background(), athletes, weekStart, weekEnd)
	require.Len(t, entries, 3)

	assert.Equal(t, int64(2), entries[0].AthleteID)
	assert.InDelta(t, 30.0, entries[0].TotalKm, 1e-9)
	assert.Equal(t, int64(3), entries[1].AthleteID)
	assert.Equal(t, int64(1), entries[2].AthleteID)

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
	assert.Equal(t, "Athlete2", entries[0].DisplayName)
	assert.Equal(t, 3, entries[0].RunCount)
}

// One athlete's upstream failure must not abort the whole aggregation.
func TestBuildCommunityLeaderboardSkipsFailedAthlete(t *testing.T) {
	store := newFakeStore(
		validAthlete(1), validAthlete(2), validAthlete(3), validAthlete(4), validAthlete(5),
	)
	provider := &fakeProvider{
		failToken: "tok-3",
		pages: map[string][][]api.Activity{
			"tok-1": {weekActivities(1, 5)},
			"tok-2": {weekActivities(1, 8)},
			"tok-4": {weekActivities(1, 12)},
			"tok-5": {weekActivities(1, 3)},
		},
	}
	svc := newCommunityService(provider, store, false)

	weekStart, weekEnd := testWeek()
	athletes, err := store.List(context.Background())
	require.NoError(t, err)

	entries := svc.BuildCommunityLeaderboard(context.Background(), athletes, weekStart, weekEnd)
	require.Len(t, entries, 4)

	for _, entry := range entries {
		assert.NotEqual(t, int64(3), entry.AthleteID, "failed athlete is skipped, not ranked at zero")
	}
	assert.Equal(t, int64(4), entries[0].AthleteID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 4, entries[3].Rank)
}

func TestBuildCommunityLeaderboardZeroActivityPolicy(t *testing.T) {
	store := newFakeStore(validAthlete(1), validAthlete(2))
	provider := &fakeProvider{pages: map[string][][]api.Activity{
		"tok-1": {weekActivities(1, 5)},
		// tok-2 has no pages at all: zero runs this week
	}}

	weekStart, weekEnd := testWeek()
	athletes, err := store.List(context.Background())
	require.NoError(t, err)

	omitted := newCommunityService(provider, store, false).
		BuildCommunityLeaderboard(context.Background(), athletes, weekStart, weekEnd)
	require.Len(t, omitted, 1)
	assert.Equal(t, int64(1), omitted[0].AthleteID)

	included := newCommunityService(provider, store, true).
		BuildCommunityLeaderboard(context.Background(), athletes, weekStart, weekEnd)
	require.Len(t, included, 2)
	assert.Equal(t, int64(2), included[1].AthleteID)
	assert.Zero(t, included[1].TotalKm)
	assert.Equal(t, 2, included[1].Rank)
}
