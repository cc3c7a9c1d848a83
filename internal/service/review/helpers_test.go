package review

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/testutils"
)

// fakeClock is a mutable test clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv bundles a service with its injected collaborators.
type testEnv struct {
	svc     *serviceImpl
	store   *testutils.MemUserRecordStore
	clock   *fakeClock
	catalog catalog.Catalog
	userID  uuid.UUID
}

var testEpoch = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// newTestEnv builds a service over an in-memory store with a pinned
// clock and a seeded random source.
func newTestEnv(t *testing.T, cat catalog.Catalog, params Params) *testEnv {
	t.Helper()
	st := testutils.NewMemUserRecordStore()
	clk := newFakeClock(testEpoch)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(
		cat, st, srs.NewDefaultService(), params, log,
		WithClock(clk.Now),
		WithRand(rand.New(rand.NewSource(42))),
	).(*serviceImpl)

	return &testEnv{
		svc:     svc,
		store:   st,
		clock:   clk,
		catalog: cat,
		userID:  uuid.New(),
	}
}

// tenItemCatalog returns ten reviewable items across five subtopics, in
// stable order item-0 .. item-9.
func tenItemCatalog() catalog.Catalog {
	specs := make([]testutils.ItemSpec, 0, 10)
	subtopics := []string{"Sorting", "Graphs", "Trees", "Hashing", "Heaps"}
	for i := 0; i < 10; i++ {
		specs = append(specs, testutils.ItemSpec{
			ID:       itemID(i),
			Subtopic: subtopics[i%len(subtopics)],
		})
	}
	return testutils.NewCatalog(specs...)
}

func itemID(i int) string {
	return string(rune('a'+i)) + "-item"
}

// loadStored fetches the persisted record for the env's user.
func (e *testEnv) loadStored(t *testing.T) *domain.UserRecord {
	t.Helper()
	rec, err := e.store.Get(context.Background(), e.userID)
	if err != nil {
		t.Fatalf("failed to load stored record: %v", err)
	}
	rec.EnsureMaps()
	return rec
}

// storeRecord persists a record for the env's user, bypassing the service.
func (e *testEnv) storeRecord(t *testing.T, rec *domain.UserRecord) {
	t.Helper()
	current, err := e.store.Get(context.Background(), e.userID)
	if err != nil {
		t.Fatalf("failed to load record before store: %v", err)
	}
	rec.Version = current.Version
	if err := e.store.Put(context.Background(), e.userID, rec); err != nil {
		t.Fatalf("failed to store record: %v", err)
	}
}

// dueAt returns a review record scheduled for the given instant.
func dueAt(at time.Time, correct bool, difficulty domain.Difficulty, times int) domain.ReviewRecord {
	c := correct
	return domain.ReviewRecord{
		Difficulty:        difficulty,
		LastAnswerCorrect: &c,
		NextReviewAt:      &at,
		TimesReviewed:     times,
	}
}
