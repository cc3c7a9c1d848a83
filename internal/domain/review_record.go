package domain

import "time"

// ReviewRecord tracks a user's review history for a single item.
//
// Difficulty is the effective difficulty used for scheduling. It may be
// the learner's self-rating rather than the item's native difficulty.
// LastAnswerCorrect is tri-state: nil means the item has never been
// answered (a rating alone does not set it). A nil NextReviewAt means
// the item has no scheduled resurface date.
//
// An item with no record, or whose record has TimesReviewed == 0 and no
// scheduled date, is "new": never effectively reviewed and immediately
// eligible for a batch.
type ReviewRecord struct {
	Difficulty        Difficulty `json:"difficulty,omitempty"`
	LastAnswerCorrect *bool      `json:"last_answer_correct,omitempty"`
	NextReviewAt      *time.Time `json:"next_review_at,omitempty"`
	TimesReviewed     int        `json:"times_reviewed"`
}

// IsDue reports whether the record calls for the item to resurface at
// the given instant. A missing scheduled date counts as due.
func (r *ReviewRecord) IsDue(now time.Time) bool {
	if r == nil || r.NextReviewAt == nil {
		return true
	}
	return !now.Before(*r.NextReviewAt)
}

// IsScheduledDue reports whether the record has a scheduled date that
// has arrived. Unlike IsDue, a record without a date is not scheduled
// at all and returns false; such items are handled by the new-item path.
func (r *ReviewRecord) IsScheduledDue(now time.Time) bool {
	if r == nil || r.NextReviewAt == nil {
		return false
	}
	return !now.Before(*r.NextReviewAt)
}
