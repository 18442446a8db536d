package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"runhub/internal/api"
	"runhub/internal/domain"
	"runhub/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	athletes map[int64]*domain.Athlete
}

func newFakeStore(athletes ...*domain.Athlete) *fakeStore {
	s := &fakeStore{athletes: make(map[int64]*domain.Athlete)}
	for _, a := range athletes {
		s.athletes[a.AthleteID] = a
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, athleteID int64) (*domain.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[athleteID]
	if !ok {
		return nil, repository.ErrAthleteNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) UpdateTokens(_ context.Context, athleteID int64, accessToken, refreshToken string, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[athleteID]
	if !ok {
		return repository.ErrAthleteNotFound
	}
	a.AccessToken = accessToken
	a.RefreshToken = refreshToken
	a.TokenExpiresAt = expiresAt
	return nil
}

type fakeRefresher struct {
	calls    atomic.Int64
	response *api.TokenResponse
	err      error
}

func (r *fakeRefresher) RefreshToken(context.Context, string) (*api.TokenResponse, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return r.response, nil
}

func freshToken(access, refresh string) *api.TokenResponse {
	return &api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}
}

func TestEnsureValidReturnsStoredTokenWhenNotExpired(t *testing.T) {
	store := newFakeStore(&domain.Athlete{
		AthleteID:      1,
		AccessToken:    "stored-token",
		RefreshToken:   "stored-refresh",
		TokenExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	refresher := &fakeRefresher{}
	m := NewManager(store, refresher, zerolog.Nop())

	token, err := m.EnsureValid(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
	assert.Zero(t, refresher.calls.Load(), "no refresh for a valid token")
}

func TestEnsureValidRefreshesExpiredToken(t *testing.T) {
	store := newFakeStore(&domain.Athlete{
		AthleteID:      1,
		AccessToken:    "old-token",
		RefreshToken:   "old-refresh",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	refresher := &fakeRefresher{response: freshToken("new-token", "new-refresh")}
	m := NewManager(store, refresher, zerolog.Nop())

	token, err := m.EnsureValid(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.EqualValues(t, 1, refresher.calls.Load())

	persisted, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "new-token", persisted.AccessToken)
	assert.Equal(t, "new-refresh", persisted.RefreshToken)
	assert.Greater(t, persisted.TokenExpiresAt, time.Now().Unix())
}

func TestEnsureValidKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	store := newFakeStore(&domain.Athlete{
		AthleteID:      1,
		AccessToken:    "old-token",
		RefreshToken:   "old-refresh",
		TokenExpiresAt: 0,
	})
	refresher := &fakeRefresher{response: freshToken("new-token", "")}
	m := NewManager(store, refresher, zerolog.Nop())

	_, err := m.EnsureValid(context.Background(), 1)
	require.NoError(t, err)

	persisted, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", persisted.RefreshToken)
}

func TestEnsureValidMissingCredential(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeRefresher{}, zerolog.Nop())

	_, err := m.EnsureValid(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err))
}

func TestEnsureValidRefreshRejected(t *testing.T) {
	store := newFakeStore(&domain.Athlete{
		AthleteID:      1,
		AccessToken:    "old-token",
		RefreshToken:   "revoked",
		TokenExpiresAt: 0,
	})
	refresher := &fakeRefresher{err: &domain.UpstreamError{Op: "refresh token", StatusCode: 401}}
	m := NewManager(store, refresher, zerolog.Nop())

	_, err := m.EnsureValid(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, domain.IsAuthError(err), "a provider-rejected refresh means not authenticated")
	assert.EqualValues(t, 1, refresher.calls.Load(), "exactly one refresh attempt")
}

func TestEnsureValidSerializesRefreshPerAthlete(t *testing.T) {
	store := newFakeStore(&domain.Athlete{
		AthleteID:      1,
		AccessToken:    "old-token",
		RefreshToken:   "old-refresh",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	refresher := &fakeRefresher{response: freshToken("new-token", "new-refresh")}
	m := NewManager(store, refresher, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := m.EnsureValid(context.Background(), 1)
			assert.NoError(t, err)
			assert.Equal(t, "new-token", token)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, refresher.calls.Load(), "concurrent callers must not race duplicate refreshes")
}
