// Package review implements the adaptive review scheduling and batch
// composition engine: deciding which item a learner sees next, when an
// item must resurface, how a balanced batch of due and new items is
// composed without duplicates, and how batch restarts are gated by a
// tamper-resistant cooldown.
//
// All state for one learner lives in a single domain.UserRecord that is
// read, mutated, and replaced as a unit. "Due" and "cooldown expired"
// are computed lazily against the clock at request time; the engine has
// no timers or background jobs.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// Service provides the scheduling and serving operations exposed to the
// API layer.
type Service interface {
	// RecordAnswer stores the outcome of an answered item: it updates
	// the effective difficulty, schedules the next review via the
	// scheduler, and increments the review counter.
	//
	// Returns:
	//   - (*domain.ReviewRecord, nil): the updated record
	//   - (nil, ErrItemNotFound): if the item is not in the catalog
	//   - (nil, ErrValidation...): if inputs are malformed
	RecordAnswer(
		ctx context.Context,
		userID uuid.UUID,
		itemID string,
		wasCorrect bool,
		effectiveDifficulty domain.Difficulty,
	) (*domain.ReviewRecord, error)

	// RecordRating stores a self-rated difficulty for an item and sets a
	// provisional next-review date assuming future correctness. The
	// review counter is not incremented; the item stays "new" until an
	// answer is actually recorded.
	RecordRating(
		ctx context.Context,
		userID uuid.UUID,
		itemID string,
		rating domain.Difficulty,
	) (*domain.ReviewRecord, error)

	// StartSession establishes the session subtopic set. If a session
	// already exists and forceNew is false, the existing subtopics are
	// returned unchanged. forceNew during an active cooldown is rejected
	// with a CooldownActiveError carrying the remaining time.
	StartSession(ctx context.Context, userID uuid.UUID, forceNew bool) ([]string, error)

	// ServeNext returns the next item to show the learner: the active
	// batch first, then due items, then session subtopics, then a global
	// fallback. Returns a CooldownActiveError when only the cooldown
	// stands between the learner and a new batch, and
	// ErrNoReviewableItems when the catalog has nothing to serve.
	ServeNext(ctx context.Context, userID uuid.UUID) (*domain.Item, error)

	// CompleteBatch validates the client-reported completion time,
	// archives the current batch into the exclusion history, and starts
	// the cooldown. Timestamps from the future or implausibly far in the
	// past are rejected as validation errors, never clamped.
	CompleteBatch(ctx context.Context, userID uuid.UUID, completedAt time.Time) error

	// GetCooldown reports whether a fresh batch may start and how many
	// seconds of the cooldown window remain. Both the timer and the
	// "an incorrectly answered item is due again" signal can
	// independently make CanStart true.
	GetCooldown(ctx context.Context, userID uuid.UUID) (*CooldownStatus, error)
}

// CooldownStatus reports the inter-batch gate state for one user.
// RemainingSeconds is derived from the timer alone, so a client can
// still render a countdown when CanStart is true via the retry signal.
type CooldownStatus struct {
	CanStart         bool `json:"can_start"`
	RemainingSeconds int  `json:"remaining_seconds"`
}
