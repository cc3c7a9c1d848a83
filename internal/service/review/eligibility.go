package review

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// dueItemIDs scans the user's review records and returns the set of
// item IDs whose scheduled review date has arrived. Items with no
// record are not returned here: they are "new" and discovered by the
// separate new-item path. The due scan answers "what must resurface".
func dueItemIDs(rec *domain.UserRecord, now time.Time) map[string]bool {
	due := make(map[string]bool)
	for id, review := range rec.Reviews {
		if review.IsScheduledDue(now) {
			due[id] = true
		}
	}
	return due
}

// isNewItem reports whether the item has never been effectively
// reviewed: no record, or a record with zero reviews and no scheduled
// date. A rated-but-unanswered item carries a scheduled date and is
// deliberately not "new"; once that date passes it classifies as due.
func isNewItem(rec *domain.UserRecord, itemID string) bool {
	review, ok := rec.Reviews[itemID]
	if !ok {
		return true
	}
	return review.TimesReviewed == 0 && review.NextReviewAt == nil
}

// hasOverdueRetry reports whether any item that was last answered
// incorrectly has become due again. This is the legacy "a fresh batch
// may be created" signal that runs alongside the cooldown timer.
func hasOverdueRetry(rec *domain.UserRecord, now time.Time) bool {
	for _, review := range rec.Reviews {
		if review.LastAnswerCorrect != nil && !*review.LastAnswerCorrect &&
			review.IsScheduledDue(now) {
			return true
		}
	}
	return false
}
