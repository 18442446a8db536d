package service

import (
	"context"
	"fmt"

	"runhub/internal/api"
	"runhub/internal/auth"
	"runhub/internal/constants"
	"runhub/internal/domain"
	"runhub/internal/leaderboard"

	"github.com/rs/zerolog"
)

// ActivityAPI is the slice of the provider client the fetcher needs.
type ActivityAPI interface {
	GetActivities(ctx context.Context, accessToken string, page, perPage int, filter api.ActivityFilter) ([]api.Activity, error)
}

type ActivityService struct {
	provider ActivityAPI
	tokens   *auth.Manager
	maxPages int
	logger   zerolog.Logger
}

func NewActivityService(provider ActivityAPI, tokens *auth.Manager, maxPages int, logger zerolog.Logger) *ActivityService {
	return &ActivityService{provider: provider, tokens: tokens, maxPages: maxPages, logger: logger}
}

// FetchAllRuns pages through the athlete's activity history, keeping only
// runs. It stops when a page comes back short of the page size or the page
// cap is hit; the cap is a hard bound, not a completeness guarantee, so an
// account whose history ends exactly on a page boundary costs one extra
// request.
func (s *ActivityService) FetchAllRuns(ctx context.Context, accessToken string, maxPages int) ([]api.Activity, error) {
	return s.fetchRuns(ctx, accessToken, maxPages, api.ActivityFilter{})
}

// FetchRunsBetween is FetchAllRuns narrowed server-side to [after, before)
// epoch seconds.
func (s *ActivityService) FetchRunsBetween(ctx context.Context, accessToken string, after, before int64, maxPages int) ([]api.Activity, error) {
	return s.fetchRuns(ctx, accessToken, maxPages, api.ActivityFilter{After: after, Before: before})
}

func (s *ActivityService) fetchRuns(ctx context.Context, accessToken string, maxPages int, filter api.ActivityFilter) ([]api.Activity, error) {
	var runs []api.Activity

	for page := 1; page <= maxPages; page++ {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		batch, err := s.provider.GetActivities(apiCtx, accessToken, page, constants.ActivityPageSize, filter)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch activities page %d: %w", page, err)
		}

		for _, a := range batch {
			if a.Type != "Run" {
				continue
			}
			if !s.validActivity(a) {
				continue
			}
			runs = append(runs, a)
		}

		if len(batch) < constants.ActivityPageSize {
			break
		}
	}

	s.logger.Debug().Int("run_count", len(runs)).Msg("activity history fetched")
	return runs, nil
}

// validActivity rejects upstream records missing the fields formatting
// depends on; bad data degrades to a skipped record, never a failed request.
func (s *ActivityService) validActivity(a api.Activity) bool {
	if a.ID == 0 || a.StartDateLocal == "" || a.MovingTime <= 0 || a.Distance < 0 {
		s.logger.Warn().
			Int64("activity_id", a.ID).
			Str("start_date_local", a.StartDateLocal).
			Int("moving_time", a.MovingTime).
			Msg("skipping malformed activity record")
		return false
	}
	return true
}

// GetClassifiedRuns is the single-athlete pipeline: valid token, bounded
// history fetch, classification. Runs whose record cannot be classified are
// skipped with a warning.
func (s *ActivityService) GetClassifiedRuns(ctx context.Context, athleteID int64) ([]domain.ClassifiedRun, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	accessToken, err := s.tokens.EnsureValid(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	activities, err := s.FetchAllRuns(ctx, accessToken, s.maxPages)
	if err != nil {
		s.logger.Error().Err(err).Int64("athlete_id", athleteID).Msg("failed to fetch activities")
		return nil, err
	}

	runs := make([]domain.ClassifiedRun, 0, len(activities))
	for _, a := range activities {
		run, err := leaderboard.ClassifyActivity(a)
		if err != nil {
			s.logger.Warn().Err(err).Int64("activity_id", a.ID).Msg("skipping unclassifiable activity")
			continue
		}
		runs = append(runs, run)
	}

	s.logger.Info().Int64("athlete_id", athleteID).Int("run_count", len(runs)).Msg("classified runs built")
	return runs, nil
}
