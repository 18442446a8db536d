package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"runhub/internal/api"
	"runhub/internal/config"
	"runhub/internal/constants"
	"runhub/internal/domain"
	"runhub/internal/leaderboard"
	"runhub/internal/repository"
	"runhub/internal/service"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// RunHubServer exposes the core operations as a JSON HTTP surface for the
// front-end: the OAuth connect flow, raw classified activities and the
// leaderboard family.
type RunHubServer struct {
	cfg          *config.Config
	strava       *api.StravaClient
	athletes     *repository.AthleteRepository
	activitySvc  *service.ActivityService
	communitySvc *service.CommunityService
	logger       zerolog.Logger
}

func NewRunHubServer(
	cfg *config.Config,
	strava *api.StravaClient,
	athletes *repository.AthleteRepository,
	activitySvc *service.ActivityService,
	communitySvc *service.CommunityService,
	logger zerolog.Logger,
) *RunHubServer {
	return &RunHubServer{
		cfg:          cfg,
		strava:       strava,
		athletes:     athletes,
		activitySvc:  activitySvc,
		communitySvc: communitySvc,
		logger:       logger,
	}
}

// RegisterRoutes attaches all handlers to the mux.
func (s *RunHubServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/strava", s.handleAuthRedirect)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("GET /auth/status", s.handleAuthStatus)
	mux.HandleFunc("GET /activities", s.handleActivities)
	mux.HandleFunc("GET /leaderboard/weekly", s.handleWeeklyLeaderboard)
	mux.HandleFunc("GET /leaderboard/weekly/dense", s.handleDenseWeekly)
	mux.HandleFunc("GET /leaderboard/5k", s.handleRaceLeaderboard(domain.RaceFiveK))
	mux.HandleFunc("GET /leaderboard/10k", s.handleRaceLeaderboard(domain.RaceTenK))
	mux.HandleFunc("GET /leaderboard/hm", s.handleRaceLeaderboard(domain.RaceHalfMarathon))
	mux.HandleFunc("GET /leaderboard/fm", s.handleRaceLeaderboard(domain.RaceFullMarathon))
	mux.HandleFunc("GET /community/leaderboard/weekly", s.handleCommunityWeekly)
}

func (s *RunHubServer) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := gonanoid.New()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to start authorization")
		return
	}
	http.Redirect(w, r, s.strava.AuthorizeURL(s.cfg.RedirectURI, state), http.StatusFound)
}

func (s *RunHubServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := s.strava.ExchangeCode(r.Context(), code)
	if err != nil {
		s.logger.Error().Err(err).Msg("authorization code exchange failed")
		s.writeError(w, http.StatusInternalServerError, "Strava auth failed")
		return
	}

	athlete := &domain.Athlete{
		AthleteID:      token.Athlete.ID,
		Username:       token.Athlete.Username,
		Firstname:      token.Athlete.Firstname,
		Lastname:       token.Athlete.Lastname,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: token.ExpiresAt,
	}
	if err := s.athletes.Upsert(r.Context(), athlete); err != nil {
		s.logger.Error().Err(err).Int64("athlete_id", athlete.AthleteID).Msg("failed to persist credential")
		s.writeError(w, http.StatusInternalServerError, "Strava auth failed")
		return
	}

	s.logger.Info().Int64("athlete_id", athlete.AthleteID).Msg("athlete connected")
	http.Redirect(w, r, s.cfg.FrontendURL+"?athlete_id="+strconv.FormatInt(athlete.AthleteID, 10), http.StatusFound)
}

func (s *RunHubServer) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := s.athleteID(w, r)
	if !ok {
		return
	}

	athlete, err := s.athletes.Get(r.Context(), athleteID)
	if errors.Is(err, repository.ErrAthleteNotFound) {
		s.writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to check authentication")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"athlete": map[string]any{
			"id":        athlete.AthleteID,
			"username":  athlete.Username,
			"firstname": athlete.Firstname,
			"lastname":  athlete.Lastname,
		},
	})
}

func (s *RunHubServer) handleActivities(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := s.athleteID(w, r)
	if !ok {
		return
	}

	runs, err := s.activitySvc.GetClassifiedRuns(r.Context(), athleteID)
	if err != nil {
		s.writeServiceError(w, err, "Failed to fetch activities")
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *RunHubServer) handleWeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := s.athleteID(w, r)
	if !ok {
		return
	}

	runs, err := s.activitySvc.GetClassifiedRuns(r.Context(), athleteID)
	if err != nil {
		s.writeServiceError(w, err, "Failed to generate weekly leaderboard")
		return
	}

	rows := leaderboard.BuildWeeklySparse(runs)
	page, limit := pagination(r)
	s.writeJSON(w, http.StatusOK, leaderboard.Paginate(rows, page, limit))
}

func (s *RunHubServer) handleDenseWeekly(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := s.athleteID(w, r)
	if !ok {
		return
	}

	runs, err := s.activitySvc.GetClassifiedRuns(r.Context(), athleteID)
	if err != nil {
		s.writeServiceError(w, err, "Failed to generate weekly history")
		return
	}

	buckets := leaderboard.GenerateWeeks(constants.DenseWeekWindow)
	leaderboard.AccumulateInto(buckets, runs)
	rows := leaderboard.BuildWeeklyDense(buckets)
	page, limit := pagination(r)
	s.writeJSON(w, http.StatusOK, leaderboard.Paginate(rows, page, limit))
}

func (s *RunHubServer) handleRaceLeaderboard(raceType domain.RaceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		athleteID, ok := s.athleteID(w, r)
		if !ok {
			return
		}

		runs, err := s.activitySvc.GetClassifiedRuns(r.Context(), athleteID)
		if err != nil {
			s.writeServiceError(w, err, "Failed to generate race leaderboard")
			return
		}

		rows := leaderboard.BuildRaceLeaderboard(runs, raceType)
		page, limit := pagination(r)
		s.writeJSON(w, http.StatusOK, leaderboard.Paginate(rows, page, limit))
	}
}

func (s *RunHubServer) handleCommunityWeekly(w http.ResponseWriter, r *http.Request) {
	entries, err := s.communitySvc.CurrentWeek(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "Failed to generate community leaderboard")
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *RunHubServer) athleteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("athlete_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "missing or invalid athlete_id")
		return 0, false
	}
	return id, true
}

func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

func (s *RunHubServer) writeServiceError(w http.ResponseWriter, err error, message string) {
	if domain.IsAuthError(err) {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated with Strava")
		return
	}
	s.logger.Error().Err(err).Msg(message)
	s.writeError(w, http.StatusInternalServerError, message)
}

func (s *RunHubServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *RunHubServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
