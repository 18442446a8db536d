// Package auth owns the per-athlete credential lifecycle: expiry detection
// and the single proactive refresh attempt before any upstream call.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"runhub/internal/api"
	"runhub/internal/domain"
	"runhub/internal/repository"

	"github.com/rs/zerolog"
)

// CredentialStore is the read/write contract the manager needs from the
// athlete store.
type CredentialStore interface {
	Get(ctx context.Context, athleteID int64) (*domain.Athlete, error)
	UpdateTokens(ctx context.Context, athleteID int64, accessToken, refreshToken string, expiresAt int64) error
}

// TokenRefresher performs the refresh_token grant against the provider.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
}

type Manager struct {
	store    CredentialStore
	provider TokenRefresher
	logger   zerolog.Logger

	// locks serializes check-then-refresh per athlete; two requests that both
	// observe an expired token must not both run the refresh exchange, the
	// loser would invalidate the winner's newly stored token.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(store CredentialStore, provider TokenRefresher, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		provider: provider,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (m *Manager) lockFor(athleteID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[athleteID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[athleteID] = l
	}
	return l
}

// EnsureValid returns a usable access token for the athlete, refreshing it
// first when the stored one has expired. The stored credential is mutated
// only here.
func (m *Manager) EnsureValid(ctx context.Context, athleteID int64) (string, error) {
	l := m.lockFor(athleteID)
	l.Lock()
	defer l.Unlock()

	athlete, err := m.store.Get(ctx, athleteID)
	if errors.Is(err, repository.ErrAthleteNotFound) {
		return "", &domain.AuthError{AthleteID: athleteID, Reason: "no stored credential"}
	}
	if err != nil {
		return "", err
	}

	if athlete.TokenExpiresAt > time.Now().Unix() {
		return athlete.AccessToken, nil
	}

	m.logger.Info().
		Int64("athlete_id", athleteID).
		Int64("token_expires_at", athlete.TokenExpiresAt).
		Msg("access token expired, refreshing")

	token, err := m.provider.RefreshToken(ctx, athlete.RefreshToken)
	if err != nil {
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && ue.StatusCode != 0 {
			return "", &domain.AuthError{AthleteID: athleteID, Reason: "refresh rejected by provider", Err: err}
		}
		return "", err
	}

	// Providers may or may not rotate the refresh token; never overwrite a
	// stored one with empty.
	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = athlete.RefreshToken
	}

	if err := m.store.UpdateTokens(ctx, athleteID, token.AccessToken, refreshToken, token.ExpiresAt); err != nil {
		return "", err
	}

	m.logger.Info().
		Int64("athlete_id", athleteID).
		Int64("token_expires_at", token.ExpiresAt).
		Msg("token refreshed")

	return token.AccessToken, nil
}
