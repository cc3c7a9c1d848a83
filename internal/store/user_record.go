package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// UserRecordStore defines whole-record persistence for per-user engine
// state. The engine treats Get/Put as a read-modify-write critical
// section; callers serialize access per user.
// Version: 1.0
type UserRecordStore interface {
	// Get retrieves the user's record. A user with no stored record gets
	// a fresh empty record (lazy creation); this is not an error. The
	// returned record is a private copy the caller may mutate freely.
	// Returns ErrUnavailable (wrapped) if the store cannot be reached.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserRecord, error)

	// Put replaces the user's record as a single unit. The record's
	// Version must match the version read by Get; Put returns
	// ErrConflict if another writer got there first, in which case the
	// caller may safely retry the whole operation (all scheduling math
	// is deterministic and side-effect-free until this write).
	// Returns ErrUnavailable (wrapped) if the store cannot be reached.
	Put(ctx context.Context, userID uuid.UUID, record *domain.UserRecord) error
}
