package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-service/internal/platform/obs"

	"go.uber.org/zap"
)

// PostgresStore keeps JSON records in the kv_store jsonb table.
type PostgresStore struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{DB: db, Logger: logger}
}

func (s *PostgresStore) Get(ctx context.Context, key string, dst any) (_ bool, err error) {
	defer obs.Time(ctx, s.Logger, "store.pg.Get")(&err)

	if s.DB == nil {
		return false, errors.New("kv store: db is nil")
	}

	var raw []byte
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("kv get %q: decode: %w", key, err)
	}
	return true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value any) (err error) {
	defer obs.Time(ctx, s.Logger, "store.pg.Put")(&err)

	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv put %q: encode: %w", key, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
