package review

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// Params tunes the engine. Zero values take the defaults below.
type Params struct {
	// BatchSize is the fixed batch length.
	BatchSize int
	// CooldownWindow is the mandatory wait after completing a batch.
	CooldownWindow time.Duration
	// BatchHistory bounds how many prior batches feed the exclusion set.
	BatchHistory int
	// CompletionMaxFuture and CompletionMaxAge bound acceptable
	// client-reported completion timestamps around the server clock.
	CompletionMaxFuture time.Duration
	CompletionMaxAge    time.Duration
}

// DefaultParams returns the standard engine parameters: batches of 6, a
// 5 minute cooldown, 5 remembered batches, and a [-60s, +1s] completion
// timestamp window.
func DefaultParams() Params {
	return Params{
		BatchSize:           6,
		CooldownWindow:      5 * time.Minute,
		BatchHistory:        5,
		CompletionMaxFuture: time.Second,
		CompletionMaxAge:    60 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	def := DefaultParams()
	if p.BatchSize <= 0 {
		p.BatchSize = def.BatchSize
	}
	if p.CooldownWindow <= 0 {
		p.CooldownWindow = def.CooldownWindow
	}
	if p.BatchHistory <= 0 {
		p.BatchHistory = def.BatchHistory
	}
	if p.CompletionMaxFuture <= 0 {
		p.CompletionMaxFuture = def.CompletionMaxFuture
	}
	if p.CompletionMaxAge <= 0 {
		p.CompletionMaxAge = def.CompletionMaxAge
	}
	return p
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	catalog   catalog.Catalog
	records   store.UserRecordStore
	scheduler srs.Service
	params    Params
	logger    *slog.Logger

	now func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	// locks serializes the read-modify-write cycle per user. Different
	// users proceed independently; the same user's mutations never
	// interleave, which closes the whole-record lost-update gap.
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// Option customizes service construction.
type Option func(*serviceImpl)

// WithClock injects a clock, used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

// WithRand injects a seeded random source so the new-item shuffle and
// the random-subtopic fallback are reproducible under test.
func WithRand(rng *rand.Rand) Option {
	return func(s *serviceImpl) {
		s.rng = rng
	}
}

// NewService creates a new review Service implementation.
func NewService(
	cat catalog.Catalog,
	records store.UserRecordStore,
	scheduler srs.Service,
	params Params,
	log *slog.Logger,
	opts ...Option,
) Service {
	if cat == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil")
	}
	if records == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("records store cannot be nil")
	}
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &serviceImpl{
		catalog:   cat,
		records:   records,
		scheduler: scheduler,
		params:    params.withDefaults(),
		logger:    log.With(slog.String("component", "review_service")),
		now:       func() time.Time { return time.Now().UTC() },
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// userLock returns the mutex guarding the given user's record.
func (s *serviceImpl) userLock(userID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// shuffle permutes ids in place using the injected random source.
func (s *serviceImpl) shuffle(ids []string) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// loadRecord fetches the user's record and normalizes its maps and the
// day-scoped shown set.
func (s *serviceImpl) loadRecord(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.UserRecord, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec.EnsureMaps()
	rolloverShownToday(rec, now)
	return rec, nil
}

// rolloverShownToday resets the day-scoped shown set when the stored
// UTC date no longer matches the current one. There is no background
// job; the reset happens lazily on the next operation.
func rolloverShownToday(rec *domain.UserRecord, now time.Time) {
	today := now.UTC().Format("2006-01-02")
	if rec.Session.ShownTodayDate != today {
		rec.Session.ShownToday = make(map[string]bool)
		rec.Session.ShownTodayDate = today
	}
}

// RecordAnswer implements Service.RecordAnswer.
func (s *serviceImpl) RecordAnswer(
	ctx context.Context,
	userID uuid.UUID,
	itemID string,
	wasCorrect bool,
	effectiveDifficulty domain.Difficulty,
) (*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if itemID == "" {
		return nil, ErrItemIDRequired
	}
	item, ok := s.catalog.ItemByID(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}

	// An unset difficulty falls back to the item's native one; the
	// scheduler itself defaults unknown values to medium.
	difficulty := effectiveDifficulty
	if difficulty == "" {
		difficulty = item.Difficulty
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "record_answer", Message: "failed to load user record", Err: err}
	}

	review := rec.Reviews[itemID]
	next := s.scheduler.NextReviewAt(wasCorrect, difficulty, now)
	review.Difficulty = difficulty
	review.LastAnswerCorrect = &wasCorrect
	review.NextReviewAt = &next
	review.TimesReviewed++
	rec.Reviews[itemID] = review

	if err := s.records.Put(ctx, userID, rec); err != nil {
		return nil, &ServiceError{Operation: "record_answer", Message: "failed to persist user record", Err: err}
	}

	log.Debug("recorded answer",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID),
		slog.Bool("correct", wasCorrect),
		slog.String("difficulty", string(difficulty)),
		slog.Time("next_review_at", next))

	return &review, nil
}

// RecordRating implements Service.RecordRating.
func (s *serviceImpl) RecordRating(
	ctx context.Context,
	userID uuid.UUID,
	itemID string,
	rating domain.Difficulty,
) (*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if itemID == "" {
		return nil, ErrItemIDRequired
	}
	if !rating.IsValid() {
		return nil, ErrInvalidDifficulty
	}
	if _, ok := s.catalog.ItemByID(itemID); !ok {
		return nil, ErrItemNotFound
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	rec, err := s.loadRecord(ctx, userID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "record_rating", Message: "failed to load user record", Err: err}
	}

	// A rating schedules a provisional review assuming the future answer
	// will be correct. TimesReviewed stays untouched, so a rated-only
	// item resurfaces through the due path, not the new-item pool.
	review := rec.Reviews[itemID]
	next := s.scheduler.ProvisionalReviewAt(rating, now)
	review.Difficulty = rating
	review.NextReviewAt = &next
	rec.Reviews[itemID] = review

	if err := s.records.Put(ctx, userID, rec); err != nil {
		return nil, &ServiceError{Operation: "record_rating", Message: "failed to persist user record", Err: err}
	}

	log.Debug("recorded rating",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID),
		slog.String("rating", string(rating)),
		slog.Time("next_review_at", next))

	return &review, nil
}
