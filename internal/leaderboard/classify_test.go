package leaderboard

import (
	"testing"

	"runhub/internal/api"
	"runhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		distanceMeters float64
		expected       domain.RaceType
	}{
		{"5K band lower edge", 4500, domain.RaceFiveK},
		{"5K nominal", 5000, domain.RaceFiveK},
		{"5K band upper edge", 5500, domain.RaceFiveK},
		{"just past 5K band", 5600, domain.RaceOther},
		{"just under 10K band", 9600, domain.RaceOther},
		{"10K band lower edge", 9700, domain.RaceTenK},
		{"10K band upper edge", 10500, domain.RaceTenK},
		{"half marathon", 21200, domain.RaceHalfMarathon},
		{"full marathon", 42300, domain.RaceFullMarathon},
		{"just past FM band", 43010, domain.RaceOther},
		{"short jog", 3000, domain.RaceOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.distanceMeters))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "00:00:59", FormatDuration(59))
	assert.Equal(t, "00:00:00", FormatDuration(0))

	// no day rollover
	assert.Equal(t, "26:10:03", FormatDuration(26*3600+10*60+3))
}

func TestComputePace(t *testing.T) {
	assert.Equal(t, "5:00 min/km", ComputePace(1500, 5.0))
	assert.Equal(t, "4:33 min/km", ComputePace(1365, 5.0))

	// zero distance yields the sentinel, never a division result
	assert.Equal(t, "N/A", ComputePace(1500, 0))
}

func TestComputePaceCarriesRoundedSixtySeconds(t *testing.T) {
	// 3599s over 10km is 359.9 s/km: minutes floor to 5, seconds round to
	// 60 and must carry instead of rendering "5:60".
	assert.Equal(t, "6:00 min/km", ComputePace(3599, 10.0))
}

func TestClassifyActivity(t *testing.T) {
	run, err := ClassifyActivity(api.Activity{
		ID:             42,
		Name:           "Morning Run",
		Type:           "Run",
		Distance:       5012.7,
		MovingTime:     1500,
		StartDateLocal: "2026-08-26T07:15:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), run.ID)
	assert.Equal(t, domain.RaceFiveK, run.RaceType)
	assert.Equal(t, 5.01, run.DistanceKm)
	assert.Equal(t, 1500, run.TimeSeconds)
	assert.Equal(t, "00:25:00", run.TimeFormatted)
	assert.Equal(t, "26 Aug 2026", run.DateFormatted)
}

func TestClassifyActivityRejectsBadStartDate(t *testing.T) {
	_, err := ClassifyActivity(api.Activity{
		ID:             7,
		Distance:       5000,
		MovingTime:     1500,
		StartDateLocal: "not-a-date",
	})
	require.Error(t, err)
}
