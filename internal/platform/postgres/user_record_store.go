package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

// PostgresUserRecordStore implements the store.UserRecordStore interface
// using a PostgreSQL database as the storage backend. The whole per-user
// record is stored as one JSONB blob with a version column used for
// optimistic concurrency on replace.
type PostgresUserRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserRecordStore creates a new PostgreSQL implementation of
// the UserRecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserRecordStore(db store.DBTX, logger *slog.Logger) *PostgresUserRecordStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_record_store")),
	}
}

// Ensure PostgresUserRecordStore implements store.UserRecordStore interface
var _ store.UserRecordStore = (*PostgresUserRecordStore)(nil)

// Get implements store.UserRecordStore.Get
// A user with no stored record gets a fresh empty record at version 0.
func (s *PostgresUserRecordStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserRecord, error) {
	const query = `
		SELECT record, version
		FROM user_records
		WHERE user_id = $1`

	var (
		blob    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&blob, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lazy creation: absence of a record is an empty record.
			return domain.NewUserRecord(), nil
		}
		return nil, mapConnError(fmt.Errorf("failed to get user record: %w", err))
	}

	var record domain.UserRecord
	if err := json.Unmarshal(blob, &record); err != nil {
		return nil, store.NewStoreError("user_record", "get", "corrupt record blob", err)
	}
	record.EnsureMaps()
	record.Version = version

	return &record, nil
}

// Put implements store.UserRecordStore.Put
// Returns store.ErrConflict if the stored version no longer matches the
// version carried by the record.
func (s *PostgresUserRecordStore) Put(ctx context.Context, userID uuid.UUID, record *domain.UserRecord) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return store.NewStoreError("user_record", "put", "failed to encode record", err)
	}

	if record.Version == 0 {
		const insert = `
			INSERT INTO user_records (user_id, record, version, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (user_id) DO NOTHING`

		res, err := s.db.ExecContext(ctx, insert, userID, blob)
		if err != nil {
			return mapConnError(fmt.Errorf("failed to insert user record: %w", err))
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			// Someone created the record since our read.
			return store.ErrConflict
		}
		record.Version = 1
		return nil
	}

	const update = `
		UPDATE user_records
		SET record = $1, version = version + 1, updated_at = now()
		WHERE user_id = $2 AND version = $3`

	res, err := s.db.ExecContext(ctx, update, blob, userID, record.Version)
	if err != nil {
		return mapConnError(fmt.Errorf("failed to update user record: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapConnError(fmt.Errorf("failed to update user record: %w", err))
	}
	if n == 0 {
		return store.ErrConflict
	}
	record.Version++

	return nil
}
