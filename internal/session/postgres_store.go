package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

// PostgresStore keeps one session row per profile in client_sessions.
// Shared terminals and kiosks use it so the session survives machine rebuilds.
type PostgresStore struct {
	db      *sql.DB
	profile string
}

func NewPostgresStore(db *sql.DB, profile string) *PostgresStore {
	return &PostgresStore{db: db, profile: profile}
}

func (p *PostgresStore) Load(ctx context.Context) (State, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "LoadSession"),
		zap.String("profile", p.profile),
	)

	query := `
	SELECT
		access_token,
		device_id,
		cookies,
		updated_at
	FROM client_sessions
	WHERE profile = $1
	`

	var (
		st      State
		cookies []byte
	)
	err := p.db.QueryRowContext(ctx, query, p.profile).Scan(
		&st.AccessToken,
		&st.DeviceID,
		&cookies,
		&st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		log.Debug("no stored session")
		return State{}, nil
	}
	if err != nil {
		log.Error("failed to load session", zap.Error(err))
		return State{}, err
	}

	if len(cookies) > 0 {
		if err := json.Unmarshal(cookies, &st.Cookies); err != nil {
			log.Warn("ignoring unreadable cookies column", zap.Error(err))
		}
	}
	return st, nil
}

func (p *PostgresStore) Save(ctx context.Context, st State) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SaveSession"),
		zap.String("profile", p.profile),
	)

	cookies, err := json.Marshal(st.Cookies)
	if err != nil {
		return err
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}

	query := `
	INSERT INTO client_sessions (
		profile,
		access_token,
		device_id,
		cookies,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (profile) DO UPDATE SET
		access_token = EXCLUDED.access_token,
		device_id = EXCLUDED.device_id,
		cookies = EXCLUDED.cookies,
		updated_at = EXCLUDED.updated_at
	`

	if _, err := p.db.ExecContext(ctx, query,
		p.profile,
		st.AccessToken,
		st.DeviceID,
		cookies,
		st.UpdatedAt,
	); err != nil {
		log.Error("failed to save session", zap.Error(err))
		return err
	}

	log.Debug("session saved")
	return nil
}
