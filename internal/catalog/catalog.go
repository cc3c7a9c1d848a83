// Package catalog provides read-only access to the item catalog: the
// flashcard/question units exported by the upstream content pipeline.
// The catalog is loaded once at startup and assumed small enough to
// scan fully per request.
package catalog

import (
	"strings"
	"unicode"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Catalog defines read-only access to the loaded item set.
// Items are returned in the stable order of the source export.
type Catalog interface {
	// Items returns every item in stable order. Callers must not mutate
	// the returned slice.
	Items() []domain.Item

	// ItemByID returns the item with the given ID, if present.
	ItemByID(id string) (*domain.Item, bool)

	// Subtopics returns the distinct subtopics in first-seen order.
	Subtopics() []string

	// Topics returns the topic metadata shipped with the export.
	Topics() []domain.Topic
}

// memCatalog is the in-memory Catalog implementation shared by the file
// loader and test fixtures.
type memCatalog struct {
	items     []domain.Item
	byID      map[string]int
	subtopics []string
	topics    []domain.Topic
}

// New builds a Catalog from already-constructed items and topics.
// Item content keys are computed here if absent.
func New(items []domain.Item, topics []domain.Topic) Catalog {
	c := &memCatalog{
		items:  make([]domain.Item, len(items)),
		byID:   make(map[string]int, len(items)),
		topics: topics,
	}
	seenSubtopic := make(map[string]bool)
	for i, item := range items {
		if item.ContentKey == "" && item.Flashcard != "" {
			item.ContentKey = ContentKey(item.Flashcard)
		}
		item.HasReviewableContent = item.Flashcard != ""
		c.items[i] = item
		c.byID[item.ID] = i
		if !seenSubtopic[item.Subtopic] {
			seenSubtopic[item.Subtopic] = true
			c.subtopics = append(c.subtopics, item.Subtopic)
		}
	}
	return c
}

func (c *memCatalog) Items() []domain.Item { return c.items }

func (c *memCatalog) ItemByID(id string) (*domain.Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.items[i], true
}

func (c *memCatalog) Subtopics() []string    { return c.subtopics }
func (c *memCatalog) Topics() []domain.Topic { return c.topics }

// ContentKey normalizes a flashcard prompt into a fingerprint used for
// duplicate detection across item IDs: lowercased, punctuation removed,
// whitespace collapsed to single spaces.
func ContentKey(prompt string) string {
	var b strings.Builder
	b.Grow(len(prompt))
	space := false
	for _, r := range strings.ToLower(prompt) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		default:
			// Punctuation separates words the same way whitespace does.
			space = true
		}
	}
	return b.String()
}
