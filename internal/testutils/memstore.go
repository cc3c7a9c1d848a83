// Package testutils provides in-memory store implementations and
// fixture builders shared by service and API tests.
package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

// MemUserRecordStore is an in-memory store.UserRecordStore with the
// same whole-record copy and version semantics as the postgres
// implementation.
type MemUserRecordStore struct {
	mu       sync.Mutex
	records  map[uuid.UUID][]byte
	versions map[uuid.UUID]int64

	// FailNext makes the next operation fail with store.ErrUnavailable,
	// for exercising abort-without-partial-write paths.
	FailNext bool
}

// NewMemUserRecordStore creates an empty in-memory user record store.
func NewMemUserRecordStore() *MemUserRecordStore {
	return &MemUserRecordStore{
		records:  make(map[uuid.UUID][]byte),
		versions: make(map[uuid.UUID]int64),
	}
}

var _ store.UserRecordStore = (*MemUserRecordStore)(nil)

// Get implements store.UserRecordStore.Get.
func (s *MemUserRecordStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return nil, fmt.Errorf("memstore: %w", store.ErrUnavailable)
	}

	blob, ok := s.records[userID]
	if !ok {
		return domain.NewUserRecord(), nil
	}

	var rec domain.UserRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, err
	}
	rec.EnsureMaps()
	rec.Version = s.versions[userID]
	return &rec, nil
}

// Put implements store.UserRecordStore.Put.
func (s *MemUserRecordStore) Put(ctx context.Context, userID uuid.UUID, rec *domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return fmt.Errorf("memstore: %w", store.ErrUnavailable)
	}

	if s.versions[userID] != rec.Version {
		return store.ErrConflict
	}

	blob, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.records[userID] = blob
	s.versions[userID] = rec.Version + 1
	rec.Version++
	return nil
}

// MemUserStore is an in-memory store.UserStore.
type MemUserStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

// NewMemUserStore creates an empty in-memory user store.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

var _ store.UserStore = (*MemUserStore)(nil)

// Create implements store.UserStore.Create.
func (s *MemUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *MemUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *MemUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}
