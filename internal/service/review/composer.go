package review

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// composedBatch is the result of one composition pass: the ordered item
// IDs (due first, then new) and the distinct subtopics they touch.
type composedBatch struct {
	ItemIDs   []string
	Subtopics []string
}

// composeBatch builds the next fixed-size batch for the user:
//
//  1. Due reviewable items are admitted first, in stable catalog order.
//     Due items ignore the recent-batch exclusion set: an item that
//     must resurface resurfaces regardless of batch history.
//  2. The remainder is filled with "new" reviewable items, shuffled
//     uniformly, excluding anything in the current batch or the bounded
//     batch history.
//
// No two admitted items share an ID or a content fingerprint. A short
// or empty batch is a valid result; callers must tolerate fewer items
// than requested.
func (s *serviceImpl) composeBatch(rec *domain.UserRecord, now time.Time) composedBatch {
	due := dueItemIDs(rec, now)

	exclusion := make(map[string]bool)
	for _, batch := range rec.Batch.Previous {
		for _, id := range batch {
			exclusion[id] = true
		}
	}
	for _, id := range rec.Batch.Current {
		exclusion[id] = true
	}

	seenID := make(map[string]bool)
	seenContent := make(map[string]bool)
	admitted := make([]string, 0, s.params.BatchSize)

	admit := func(item *domain.Item) {
		admitted = append(admitted, item.ID)
		seenID[item.ID] = true
		if item.ContentKey != "" {
			seenContent[item.ContentKey] = true
		}
	}

	// Priority 1: due items, stable catalog order.
	items := s.catalog.Items()
	for i := range items {
		if len(admitted) >= s.params.BatchSize {
			break
		}
		item := &items[i]
		if !due[item.ID] || !item.HasReviewableContent {
			continue
		}
		if seenID[item.ID] || (item.ContentKey != "" && seenContent[item.ContentKey]) {
			continue
		}
		admit(item)
	}

	// Priority 2: new items, shuffled, excluding recent batches.
	if remaining := s.params.BatchSize - len(admitted); remaining > 0 {
		pool := make([]string, 0, len(items))
		for i := range items {
			item := &items[i]
			if !item.HasReviewableContent || exclusion[item.ID] || !isNewItem(rec, item.ID) {
				continue
			}
			pool = append(pool, item.ID)
		}
		s.shuffle(pool)

		for _, id := range pool {
			if len(admitted) >= s.params.BatchSize {
				break
			}
			item, ok := s.catalog.ItemByID(id)
			if !ok {
				continue
			}
			if seenID[item.ID] || (item.ContentKey != "" && seenContent[item.ContentKey]) {
				continue
			}
			admit(item)
		}
	}

	// Distinct subtopics touched, in admission order, capped like the batch.
	subtopics := make([]string, 0, len(admitted))
	seenSubtopic := make(map[string]bool)
	for _, id := range admitted {
		item, ok := s.catalog.ItemByID(id)
		if !ok || seenSubtopic[item.Subtopic] {
			continue
		}
		seenSubtopic[item.Subtopic] = true
		subtopics = append(subtopics, item.Subtopic)
		if len(subtopics) >= s.params.BatchSize {
			break
		}
	}

	return composedBatch{ItemIDs: admitted, Subtopics: subtopics}
}
