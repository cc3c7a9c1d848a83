package testutils

import (
	"fmt"

	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/domain"
)

// ItemSpec is a compact item description for building test catalogs.
type ItemSpec struct {
	ID         string
	Subtopic   string
	Difficulty domain.Difficulty
	Flashcard  string
}

// NewCatalog builds a catalog from compact specs. Unset fields get
// usable defaults: medium difficulty and a unique flashcard prompt, so
// every item is reviewable unless Flashcard is explicitly "-" (which
// yields an item without reviewable content).
func NewCatalog(specs ...ItemSpec) catalog.Catalog {
	items := make([]domain.Item, 0, len(specs))
	for i, spec := range specs {
		item := domain.Item{
			ID:         spec.ID,
			Subtopic:   spec.Subtopic,
			Difficulty: spec.Difficulty,
			Flashcard:  spec.Flashcard,
		}
		if item.Difficulty == "" {
			item.Difficulty = domain.DifficultyMedium
		}
		if item.Flashcard == "" {
			item.Flashcard = fmt.Sprintf("prompt for %s #%d", spec.ID, i)
		}
		if item.Flashcard == "-" {
			item.Flashcard = ""
		}
		items = append(items, item)
	}
	return catalog.New(items, nil)
}
