package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
)

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	forceNew bool,
) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "start_session", Message: "failed to load user record", Err: err}
	}

	// Idempotent: an existing session is returned unchanged unless the
	// caller explicitly asks for a fresh one.
	if rec.Session.Active() && !forceNew {
		log.Debug("returning existing session",
			slog.String("user_id", userID.String()),
			slog.Int("subtopics", len(rec.Session.Subtopics)))
		return append([]string(nil), rec.Session.Subtopics...), nil
	}

	// A forced restart is what the cooldown exists to gate.
	if forceNew {
		if remaining := s.cooldownRemaining(rec, now); remaining > 0 {
			log.Debug("session restart blocked by cooldown",
				slog.String("user_id", userID.String()),
				slog.Int("remaining_seconds", remaining))
			return nil, &CooldownActiveError{RemainingSeconds: remaining}
		}
	}

	composed := s.composeBatch(rec, now)

	subtopics := composed.Subtopics
	if len(subtopics) == 0 {
		// Catalog exhausted for this user: fall back to an unrestricted
		// random subtopic choice so the session still has a shape.
		subtopics = s.randomSubtopics()
	}

	rec.Session.Subtopics = subtopics
	rec.Session.ShownThisSession = make(map[string]bool)
	rec.Batch.CooldownAnchor = nil

	// Drop anything the learner already saw today, by id or content.
	// An empty filtered batch is discarded entirely; serving then falls
	// through to the non-batch path instead of spinning on a dead batch.
	filtered := s.filterShownToday(rec, composed.ItemIDs)
	if len(filtered) > 0 {
		rec.Batch.Current = filtered
	} else {
		rec.Batch.Current = nil
	}
	rec.Batch.ServingIndex = 0

	if err := s.records.Put(ctx, userID, rec); err != nil {
		return nil, &ServiceError{Operation: "start_session", Message: "failed to persist user record", Err: err}
	}

	log.Debug("session started",
		slog.String("user_id", userID.String()),
		slog.Bool("force_new", forceNew),
		slog.Int("subtopics", len(subtopics)),
		slog.Int("batch_items", len(rec.Batch.Current)))

	return append([]string(nil), subtopics...), nil
}

// randomSubtopics draws up to batch-size subtopics uniformly from the
// catalog's subtopic universe.
func (s *serviceImpl) randomSubtopics() []string {
	all := append([]string(nil), s.catalog.Subtopics()...)
	s.shuffle(all)
	if len(all) > s.params.BatchSize {
		all = all[:s.params.BatchSize]
	}
	return all
}

// filterShownToday removes batch entries already shown today, matching
// by item ID and by content fingerprint.
func (s *serviceImpl) filterShownToday(rec *domain.UserRecord, ids []string) []string {
	shownContent := make(map[string]bool)
	for id := range rec.Session.ShownToday {
		if item, ok := s.catalog.ItemByID(id); ok && item.ContentKey != "" {
			shownContent[item.ContentKey] = true
		}
	}

	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if rec.Session.ShownToday[id] {
			continue
		}
		if item, ok := s.catalog.ItemByID(id); ok &&
			item.ContentKey != "" && shownContent[item.ContentKey] {
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

// ServeNext implements Service.ServeNext.
func (s *serviceImpl) ServeNext(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "serve_next", Message: "failed to load user record", Err: err}
	}

	// Active batch first.
	if rec.Batch.HasActiveBatch() {
		if item := s.serveFromBatch(rec); item != nil {
			if err := s.persistServe(ctx, userID, rec); err != nil {
				return nil, err
			}
			log.Debug("served from batch",
				slog.String("user_id", userID.String()),
				slog.String("item_id", item.ID),
				slog.Int("serving_index", rec.Batch.ServingIndex))
			return item, nil
		}
		// Scan exhausted the batch with nothing admissible: not an
		// error, fall through to the non-batch path for this call.
	}

	// A: due bypass. Due items resurface regardless of shown filters and
	// are never blocked by cooldown.
	if item := s.firstDueItem(rec, now); item != nil {
		s.markShown(rec, item.ID)
		if err := s.persistServe(ctx, userID, rec); err != nil {
			return nil, err
		}
		log.Debug("served due item",
			slog.String("user_id", userID.String()),
			slog.String("item_id", item.ID))
		return item, nil
	}

	// B: cooldown gate.
	if remaining := s.cooldownRemaining(rec, now); remaining > 0 {
		return nil, &CooldownActiveError{RemainingSeconds: remaining}
	}

	// C: session subtopics.
	if item := s.serveFromSessionSubtopics(rec, now); item != nil {
		s.markShown(rec, item.ID)
		if err := s.persistServe(ctx, userID, rec); err != nil {
			return nil, err
		}
		log.Debug("served session item",
			slog.String("user_id", userID.String()),
			slog.String("item_id", item.ID),
			slog.String("subtopic", item.Subtopic))
		return item, nil
	}

	// D: global fallback.
	item, err := s.serveGlobalFallback(rec, now)
	if err != nil {
		return nil, err
	}
	s.markShown(rec, item.ID)
	if err := s.persistServe(ctx, userID, rec); err != nil {
		return nil, err
	}
	log.Debug("served fallback item",
		slog.String("user_id", userID.String()),
		slog.String("item_id", item.ID))
	return item, nil
}

// persistServe writes the mutated record after a successful serve.
func (s *serviceImpl) persistServe(ctx context.Context, userID uuid.UUID, rec *domain.UserRecord) error {
	if err := s.records.Put(ctx, userID, rec); err != nil {
		return &ServiceError{Operation: "serve_next", Message: "failed to persist user record", Err: err}
	}
	return nil
}

// markShown records the item in both the session-scoped and day-scoped
// shown sets.
func (s *serviceImpl) markShown(rec *domain.UserRecord, itemID string) {
	rec.Session.ShownThisSession[itemID] = true
	rec.Session.ShownToday[itemID] = true
}

// serveFromBatch scans the active batch forward from the serving cursor
// for the first admissible item: not already shown this session or
// today, and not a content duplicate of an entry earlier in the batch.
// The cursor advances past skipped entries. Returns nil when the scan
// exhausts the batch.
func (s *serviceImpl) serveFromBatch(rec *domain.UserRecord) *domain.Item {
	seenContent := make(map[string]bool)
	for _, id := range rec.Batch.Current[:rec.Batch.ServingIndex] {
		if item, ok := s.catalog.ItemByID(id); ok && item.ContentKey != "" {
			seenContent[item.ContentKey] = true
		}
	}

	for pos := rec.Batch.ServingIndex; pos < len(rec.Batch.Current); pos++ {
		id := rec.Batch.Current[pos]
		item, ok := s.catalog.ItemByID(id)
		if !ok {
			continue
		}
		if rec.Session.ShownThisSession[id] || rec.Session.ShownToday[id] ||
			(item.ContentKey != "" && seenContent[item.ContentKey]) {
			if item.ContentKey != "" {
				seenContent[item.ContentKey] = true
			}
			continue
		}
		rec.Batch.ServingIndex = pos + 1
		s.markShown(rec, id)
		return item
	}

	rec.Batch.ServingIndex = len(rec.Batch.Current)
	return nil
}

// firstDueItem returns the first reviewable catalog item whose
// scheduled review date has arrived, in stable catalog order.
func (s *serviceImpl) firstDueItem(rec *domain.UserRecord, now time.Time) *domain.Item {
	items := s.catalog.Items()
	for i := range items {
		item := &items[i]
		if !item.HasReviewableContent {
			continue
		}
		review, ok := rec.Reviews[item.ID]
		if ok && review.IsScheduledDue(now) {
			return item
		}
	}
	return nil
}

// serveFromSessionSubtopics walks the session's subtopics in order. A
// subtopic is skipped only when it has been completed, is not due
// again, and has no unshown reviewable content left.
func (s *serviceImpl) serveFromSessionSubtopics(rec *domain.UserRecord, now time.Time) *domain.Item {
	for _, subtopic := range rec.Session.Subtopics {
		completed := rec.Session.CompletedSubtopics[subtopic]
		if completed && !rec.SubtopicDue(subtopic, now) && !s.hasUnshownContent(rec, subtopic) {
			continue
		}
		if item := s.firstUnshownInSubtopic(rec, subtopic); item != nil {
			return item
		}
	}
	return nil
}

// hasUnshownContent reports whether the subtopic still has reviewable
// items the learner has not seen this session or today.
func (s *serviceImpl) hasUnshownContent(rec *domain.UserRecord, subtopic string) bool {
	return s.firstUnshownInSubtopic(rec, subtopic) != nil
}

// firstUnshownInSubtopic returns the first reviewable, unshown item of
// the subtopic in catalog order, or nil.
func (s *serviceImpl) firstUnshownInSubtopic(rec *domain.UserRecord, subtopic string) *domain.Item {
	items := s.catalog.Items()
	for i := range items {
		item := &items[i]
		if item.Subtopic != subtopic || !item.HasReviewableContent {
			continue
		}
		if rec.Session.ShownThisSession[item.ID] || rec.Session.ShownToday[item.ID] {
			continue
		}
		return item
	}
	return nil
}

// serveGlobalFallback picks across the whole catalog: due beats
// never-shown beats anything. When every item has been shown, the
// session-scoped shown set is reset once and the scan retried; a
// catalog without reviewable items is a hard failure.
func (s *serviceImpl) serveGlobalFallback(rec *domain.UserRecord, now time.Time) (*domain.Item, error) {
	if item := s.firstDueItem(rec, now); item != nil {
		return item, nil
	}

	if item := s.firstUnshownGlobal(rec); item != nil {
		return item, nil
	}

	items := s.catalog.Items()
	var anyReviewable *domain.Item
	for i := range items {
		if items[i].HasReviewableContent {
			anyReviewable = &items[i]
			break
		}
	}
	if anyReviewable == nil {
		return nil, ErrNoReviewableItems
	}

	// Everything has been shown: reset the session-scoped set once and
	// retry before falling back to an arbitrary item.
	rec.Session.ShownThisSession = make(map[string]bool)
	if item := s.firstUnshownGlobal(rec); item != nil {
		return item, nil
	}
	return anyReviewable, nil
}

// firstUnshownGlobal returns the first reviewable catalog item not in
// either shown set, or nil.
func (s *serviceImpl) firstUnshownGlobal(rec *domain.UserRecord) *domain.Item {
	items := s.catalog.Items()
	for i := range items {
		item := &items[i]
		if !item.HasReviewableContent {
			continue
		}
		if rec.Session.ShownThisSession[item.ID] || rec.Session.ShownToday[item.ID] {
			continue
		}
		return item
	}
	return nil
}
