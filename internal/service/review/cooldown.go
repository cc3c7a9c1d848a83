package review

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
)

// cooldownRemaining returns the whole seconds left of the cooldown
// window, or 0 when no cooldown is active. Partial seconds round up so
// a countdown never reports zero while the gate still holds.
func (s *serviceImpl) cooldownRemaining(rec *domain.UserRecord, now time.Time) int {
	anchor := rec.Batch.CooldownAnchor
	if anchor == nil {
		return 0
	}
	elapsed := now.Sub(*anchor)
	if elapsed >= s.params.CooldownWindow {
		return 0
	}
	return int(math.Ceil((s.params.CooldownWindow - elapsed).Seconds()))
}

// CompleteBatch implements Service.CompleteBatch.
//
// The completion time comes from the client so the cooldown anchors to
// when the learner actually finished, but it is only accepted inside a
// narrow window around the server clock: anything ahead of the server
// or older than a live completion could plausibly be is rejected,
// never clamped. This stops a client from fabricating completion times
// to shorten its own cooldown or replaying an old one.
func (s *serviceImpl) CompleteBatch(
	ctx context.Context,
	userID uuid.UUID,
	completedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	if completedAt.After(now.Add(s.params.CompletionMaxFuture)) {
		return ErrTimestampInFuture
	}
	if now.Sub(completedAt) > s.params.CompletionMaxAge {
		return ErrTimestampTooOld
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return &ServiceError{Operation: "complete_batch", Message: "failed to load user record", Err: err}
	}

	// A completion during an active cooldown would re-trigger the timer.
	if remaining := s.cooldownRemaining(rec, now); remaining > 0 {
		return &CooldownActiveError{RemainingSeconds: remaining}
	}

	// Archive the batch into the exclusion history and mark its
	// subtopics completed with a subtopic-level review date.
	if len(rec.Batch.Current) > 0 {
		rec.Batch.Previous = append(rec.Batch.Previous, rec.Batch.Current)
		if len(rec.Batch.Previous) > s.params.BatchHistory {
			rec.Batch.Previous = rec.Batch.Previous[len(rec.Batch.Previous)-s.params.BatchHistory:]
		}
		for _, id := range rec.Batch.Current {
			if item, ok := s.catalog.ItemByID(id); ok {
				rec.Session.CompletedSubtopics[item.Subtopic] = true
				rec.Subtopics[item.Subtopic] = s.scheduler.NextReviewAt(true, item.Difficulty, completedAt)
			}
		}
	}

	rec.Batch.Current = nil
	rec.Batch.ServingIndex = 0
	anchor := completedAt
	rec.Batch.CooldownAnchor = &anchor

	if err := s.records.Put(ctx, userID, rec); err != nil {
		return &ServiceError{Operation: "complete_batch", Message: "failed to persist user record", Err: err}
	}

	log.Debug("batch completed",
		slog.String("user_id", userID.String()),
		slog.Time("completed_at", completedAt),
		slog.Int("batch_history", len(rec.Batch.Previous)))

	return nil
}

// GetCooldown implements Service.GetCooldown.
//
// Two independent signals can open the gate: the cooldown timer having
// elapsed, and some incorrectly answered item having become due again.
// They are deliberately not merged: RemainingSeconds always reflects
// the timer, even when the retry signal has already made CanStart true.
func (s *serviceImpl) GetCooldown(ctx context.Context, userID uuid.UUID) (*CooldownStatus, error) {
	now := s.now()
	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "get_cooldown", Message: "failed to load user record", Err: err}
	}

	remaining := s.cooldownRemaining(rec, now)
	canStart := remaining == 0 || hasOverdueRetry(rec, now)

	return &CooldownStatus{
		CanStart:         canStart,
		RemainingSeconds: remaining,
	}, nil
}
