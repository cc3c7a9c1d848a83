package domain

import "errors"

// Difficulty classifies how hard an item is. It is also the value a
// learner may self-rate an item with, which then drives scheduling
// instead of the item's native difficulty.
type Difficulty string

// Recognized difficulty values.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ErrInvalidDifficulty is returned when a difficulty string is not one
// of the recognized values.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// ParseDifficulty converts a string to a Difficulty.
// Returns ErrInvalidDifficulty for unrecognized values.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	default:
		return "", ErrInvalidDifficulty
	}
}

// IsValid reports whether the difficulty is one of the recognized values.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemSubtopicEmpty is returned when an item has no subtopic.
	ErrItemSubtopicEmpty = errors.New("item subtopic cannot be empty")
)

// Item represents one reviewable content unit from the catalog: a
// flashcard prompt plus an associated multiple-choice question. Items
// are immutable and owned by the catalog; the engine only reads them.
type Item struct {
	ID          string     `json:"id"`
	TopicID     string     `json:"topic_id"`
	Subtopic    string     `json:"subtopic"`
	Difficulty  Difficulty `json:"difficulty"`
	Flashcard   string     `json:"flashcard"`
	Answer      string     `json:"answer"`
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	AnswerIndex int        `json:"answer_index"`
	Explanation string     `json:"explanation,omitempty"`

	// HasReviewableContent marks items that carry a non-empty flashcard
	// prompt. Only reviewable items are served in batches.
	HasReviewableContent bool `json:"has_reviewable_content"`

	// ContentKey is the normalized fingerprint of the flashcard prompt,
	// used to detect duplicates across distinct item IDs that carry the
	// same prompt. Computed by the catalog at load time.
	ContentKey string `json:"content_key"`
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i *Item) Validate() error {
	if i.ID == "" {
		return ErrItemIDEmpty
	}

	if i.Subtopic == "" {
		return ErrItemSubtopicEmpty
	}

	return nil
}

// Topic is the read-only topic metadata shipped alongside the items in
// the catalog export.
type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Hint        string `json:"hint,omitempty"`
}
