package domain

import "time"

// SessionState holds the session-scoped serving state for one user.
// A session exists when Subtopics is non-empty.
type SessionState struct {
	// Subtopics is the ordered subtopic set fixed at session start.
	Subtopics []string `json:"subtopics,omitempty"`

	// ShownThisSession is the set of item IDs served since the session
	// started.
	ShownThisSession map[string]bool `json:"shown_this_session,omitempty"`

	// ShownToday is the set of item IDs served on ShownTodayDate. It is
	// reset lazily when an operation observes a different UTC date.
	ShownToday     map[string]bool `json:"shown_today,omitempty"`
	ShownTodayDate string          `json:"shown_today_date,omitempty"`

	// CompletedSubtopics marks subtopics whose batches have been
	// completed. A completed subtopic is skipped at serve time unless it
	// is due again or still has unshown content.
	CompletedSubtopics map[string]bool `json:"completed_subtopics,omitempty"`
}

// Active reports whether a session has been started.
func (s *SessionState) Active() bool {
	return len(s.Subtopics) > 0
}

// BatchState holds the active batch and the cooldown anchor for one user.
type BatchState struct {
	// Current is the ordered batch being served, at most batch-size IDs.
	Current []string `json:"current,omitempty"`

	// ServingIndex is the cursor into Current; entries before it have
	// been served or skipped.
	ServingIndex int `json:"serving_index"`

	// Previous is a bounded history of completed batches, used only as
	// an exclusion set when composing the next batch.
	Previous [][]string `json:"previous,omitempty"`

	// CooldownAnchor is the validated completion time of the last batch.
	// Nil when no cooldown has been started or it was cleared.
	CooldownAnchor *time.Time `json:"cooldown_anchor,omitempty"`
}

// HasActiveBatch reports whether there is an unexhausted batch.
func (b *BatchState) HasActiveBatch() bool {
	return len(b.Current) > 0 && b.ServingIndex < len(b.Current)
}

// UserRecord is the whole per-user state blob owned by the scheduling
// engine: item review records, subtopic review dates, session state,
// and batch state. It is read and replaced as a single unit; the
// Version field carries the optimistic-concurrency token assigned by
// the store and is not serialized into the blob itself.
type UserRecord struct {
	Reviews   map[string]ReviewRecord `json:"reviews,omitempty"`
	Subtopics map[string]time.Time    `json:"subtopics,omitempty"`
	Session   SessionState            `json:"session"`
	Batch     BatchState              `json:"batch"`

	Version int64 `json:"-"`
}

// NewUserRecord creates an empty user record with initialized maps.
func NewUserRecord() *UserRecord {
	return &UserRecord{
		Reviews:   make(map[string]ReviewRecord),
		Subtopics: make(map[string]time.Time),
		Session: SessionState{
			ShownThisSession:   make(map[string]bool),
			ShownToday:         make(map[string]bool),
			CompletedSubtopics: make(map[string]bool),
		},
	}
}

// EnsureMaps initializes any nil maps in place. Records deserialized
// from storage may omit empty maps; callers mutate through this first.
func (r *UserRecord) EnsureMaps() {
	if r.Reviews == nil {
		r.Reviews = make(map[string]ReviewRecord)
	}
	if r.Subtopics == nil {
		r.Subtopics = make(map[string]time.Time)
	}
	if r.Session.ShownThisSession == nil {
		r.Session.ShownThisSession = make(map[string]bool)
	}
	if r.Session.ShownToday == nil {
		r.Session.ShownToday = make(map[string]bool)
	}
	if r.Session.CompletedSubtopics == nil {
		r.Session.CompletedSubtopics = make(map[string]bool)
	}
}

// SubtopicDue reports whether the subtopic-level review date for the
// given subtopic has arrived. A subtopic without a record is due.
func (r *UserRecord) SubtopicDue(subtopic string, now time.Time) bool {
	next, ok := r.Subtopics[subtopic]
	if !ok {
		return true
	}
	return !now.Before(next)
}
