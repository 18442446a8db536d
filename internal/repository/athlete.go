package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"runhub/internal/domain"

	"github.com/rs/zerolog"
)

// ErrAthleteNotFound is returned when no credential exists for an athlete.
var ErrAthleteNotFound = errors.New("athlete not found")

type AthleteRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAthleteRepository(sqlDB *sql.DB, logger zerolog.Logger) *AthleteRepository {
	return &AthleteRepository{db: sqlDB, logger: logger}
}

func (r *AthleteRepository) Get(ctx context.Context, athleteID int64) (*domain.Athlete, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT athlete_id, username, firstname, lastname,
		       access_token, refresh_token, token_expires_at, joined_at
		FROM athletes WHERE athlete_id = ?`, athleteID)

	var a domain.Athlete
	err := row.Scan(&a.AthleteID, &a.Username, &a.Firstname, &a.Lastname,
		&a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlete %d: %w", athleteID, err)
	}
	return &a, nil
}

func (r *AthleteRepository) List(ctx context.Context) ([]domain.Athlete, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT athlete_id, username, firstname, lastname,
		       access_token, refresh_token, token_expires_at, joined_at
		FROM athletes ORDER BY joined_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	var athletes []domain.Athlete
	for rows.Next() {
		var a domain.Athlete
		if err := rows.Scan(&a.AthleteID, &a.Username, &a.Firstname, &a.Lastname,
			&a.AccessToken, &a.RefreshToken, &a.TokenExpiresAt, &a.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// Upsert stores the credential written by the initial authorization exchange.
func (r *AthleteRepository) Upsert(ctx context.Context, a *domain.Athlete) error {
	if a.JoinedAt.IsZero() {
		a.JoinedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO athletes (athlete_id, username, firstname, lastname,
		                      access_token, refresh_token, token_expires_at, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id) DO UPDATE SET
			username = excluded.username,
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at`,
		a.AthleteID, a.Username, a.Firstname, a.Lastname,
		a.AccessToken, a.RefreshToken, a.TokenExpiresAt, a.JoinedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("athlete_id", a.AthleteID).Msg("failed to upsert athlete")
		return fmt.Errorf("failed to upsert athlete %d: %w", a.AthleteID, err)
	}

	r.logger.Debug().Int64("athlete_id", a.AthleteID).Msg("athlete upserted")
	return nil
}

// UpdateTokens persists the result of a refresh exchange.
func (r *AthleteRepository) UpdateTokens(ctx context.Context, athleteID int64, accessToken, refreshToken string, expiresAt int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE athletes
		SET access_token = ?, refresh_token = ?, token_expires_at = ?
		WHERE athlete_id = ?`,
		accessToken, refreshToken, expiresAt, athleteID)
	if err != nil {
		r.logger.Error().Err(err).Int64("athlete_id", athleteID).Msg("failed to update tokens")
		return fmt.Errorf("failed to update tokens for athlete %d: %w", athleteID, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrAthleteNotFound
	}

	r.logger.Debug().Int64("athlete_id", athleteID).Int64("token_expires_at", expiresAt).Msg("tokens updated")
	return nil
}
