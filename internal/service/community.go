package service

import (
	"context"
	"math"
	"sort"
	"time"

	"runhub/internal/config"
	"runhub/internal/constants"
	"runhub/internal/domain"
	"runhub/internal/leaderboard"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AthleteLister loads the set of known accounts for cross-user aggregation.
type AthleteLister interface {
	List(ctx context.Context) ([]domain.Athlete, error)
}

type CommunityService struct {
	athletes    AthleteLister
	activities  *ActivityService
	concurrency int
	includeZero bool
	logger      zerolog.Logger
}

func NewCommunityService(athletes AthleteLister, activities *ActivityService, cfg *config.Config, logger zerolog.Logger) *CommunityService {
	return &CommunityService{
		athletes:    athletes,
		activities:  activities,
		concurrency: cfg.CommunityConcurrency,
		includeZero: cfg.CommunityIncludeZero,
		logger:      logger,
	}
}

// CurrentWeek builds the community leaderboard for the week containing now.
func (s *CommunityService) CurrentWeek(ctx context.Context) ([]domain.CommunityEntry, error) {
	athletes, err := s.athletes.List(ctx)
	if err != nil {
		return nil, err
	}

	weekStart := leaderboard.WeekKeyOf(time.Now())
	weekEnd := weekStart.AddDate(0, 0, 7)
	return s.BuildCommunityLeaderboard(ctx, athletes, weekStart, weekEnd), nil
}

// BuildCommunityLeaderboard fans the [weekStart, weekEnd) fetch out across
// all athletes with bounded parallelism, sums per-athlete distance and ranks
// descending. A failed or canceled fetch drops that athlete from the ranking,
// never the whole batch.
func (s *CommunityService) BuildCommunityLeaderboard(ctx context.Context, athletes []domain.Athlete, weekStart, weekEnd time.Time) []domain.CommunityEntry {
	results := make([]*domain.CommunityEntry, len(athletes))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i, athlete := range athletes {
		i, athlete := i, athlete
		g.Go(func() error {
			entry, err := s.aggregateAthlete(ctx, athlete, weekStart, weekEnd)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Int64("athlete_id", athlete.AthleteID).
					Msg("skipping athlete in community aggregation")
				return nil
			}
			results[i] = entry
			return nil
		})
	}
	// Tasks never return errors; Wait only synchronizes the pool.
	_ = g.Wait()

	entries := make([]domain.CommunityEntry, 0, len(results))
	for _, entry := range results {
		if entry == nil {
			continue
		}
		if entry.RunCount == 0 && !s.includeZero {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalKm != entries[j].TotalKm {
			return entries[i].TotalKm > entries[j].TotalKm
		}
		return entries[i].AthleteID < entries[j].AthleteID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.logger.Info().
		Int("athlete_count", len(athletes)).
		Int("ranked_count", len(entries)).
		Time("week_start", weekStart).
		Msg("community leaderboard built")

	return entries
}

func (s *CommunityService) aggregateAthlete(ctx context.Context, athlete domain.Athlete, weekStart, weekEnd time.Time) (*domain.CommunityEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CommunityAthleteTimeout)
	defer cancel()

	accessToken, err := s.activities.tokens.EnsureValid(ctx, athlete.AthleteID)
	if err != nil {
		return nil, err
	}

	// Strava's after/before are exclusive bounds on the start date; shifting
	// after by one second keeps the window [weekStart, weekEnd).
	runs, err := s.activities.FetchRunsBetween(ctx, accessToken, weekStart.Unix()-1, weekEnd.Unix(), s.activities.maxPages)
	if err != nil {
		return nil, err
	}

	var totalKm float64
	for _, run := range runs {
		totalKm += run.Distance / 1000
	}

	return &domain.CommunityEntry{
		AthleteID:   athlete.AthleteID,
		DisplayName: athlete.DisplayName(),
		TotalKm:     math.Round(totalKm*100) / 100,
		RunCount:    len(runs),
	}, nil
}
