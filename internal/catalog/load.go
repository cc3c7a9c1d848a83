package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/phrazzld/drill-api/internal/domain"
)

// export mirrors the layout of the questions.json file produced by the
// content pipeline.
type export struct {
	Topics    []exportTopic    `json:"topics"`
	Questions []exportQuestion `json:"questions"`
}

type exportTopic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Hint        string `json:"hint"`
}

type exportQuestion struct {
	ID              string   `json:"id"`
	TopicID         string   `json:"topicId"`
	SubTopic        string   `json:"subTopic"`
	Difficulty      string   `json:"difficulty"`
	Flashcard       string   `json:"flashcard"`
	FlashcardAnswer string   `json:"flashcardAnswer"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	AnswerIndex     int      `json:"answerIndex"`
	Explanation     string   `json:"explanation"`
}

// Load reads a questions.json export from disk and builds a Catalog.
// Every question must carry an ID and a subtopic; difficulties outside
// the known set are preserved as-is and schedule as medium.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	var exp export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
	}

	items := make([]domain.Item, 0, len(exp.Questions))
	for i, q := range exp.Questions {
		item := domain.Item{
			ID:          q.ID,
			TopicID:     q.TopicID,
			Subtopic:    q.SubTopic,
			Difficulty:  domain.Difficulty(q.Difficulty),
			Flashcard:   q.Flashcard,
			Answer:      q.FlashcardAnswer,
			Question:    q.Question,
			Options:     q.Options,
			AnswerIndex: q.AnswerIndex,
			Explanation: q.Explanation,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog item at index %d: %w", i, err)
		}
		items = append(items, item)
	}

	topics := make([]domain.Topic, 0, len(exp.Topics))
	for _, t := range exp.Topics {
		topics = append(topics, domain.Topic{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Hint:        t.Hint,
		})
	}

	return New(items, topics), nil
}
