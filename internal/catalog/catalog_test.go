package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		prompt   string
		expected string
	}{
		{name: "lowercases", prompt: "What Is TCP?", expected: "what is tcp"},
		{name: "collapses whitespace", prompt: "what   is\ttcp", expected: "what is tcp"},
		{name: "strips punctuation", prompt: "What is TCP/IP, really?", expected: "what is tcp ip really"},
		{name: "leading and trailing noise", prompt: "  ...what is tcp!  ", expected: "what is tcp"},
		{name: "empty", prompt: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ContentKey(tc.prompt))
		})
	}
}

func TestContentKeyEquivalence(t *testing.T) {
	t.Parallel()

	// Prompts that differ only in case, spacing, or punctuation share a key.
	assert.Equal(t, ContentKey("What is a B-tree?"), ContentKey("what is a b-tree"))
	assert.NotEqual(t, ContentKey("What is a B-tree?"), ContentKey("What is a binary tree?"))
}

func TestNewComputesDerivedFields(t *testing.T) {
	t.Parallel()

	c := New([]domain.Item{
		{ID: "net-e-1", Subtopic: "Transport", Flashcard: "What is TCP?"},
		{ID: "net-e-2", Subtopic: "Transport", Flashcard: ""},
		{ID: "net-m-1", Subtopic: "Routing", Flashcard: "what is tcp"},
	}, nil)

	items := c.Items()
	require.Len(t, items, 3)

	assert.True(t, items[0].HasReviewableContent)
	assert.False(t, items[1].HasReviewableContent)
	assert.Equal(t, items[0].ContentKey, items[2].ContentKey,
		"same prompt under normalization must share a content key")

	assert.Equal(t, []string{"Transport", "Routing"}, c.Subtopics())

	item, ok := c.ItemByID("net-m-1")
	require.True(t, ok)
	assert.Equal(t, "Routing", item.Subtopic)

	_, ok = c.ItemByID("missing")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	data := `{
		"topics": [
			{"id": "networking", "name": "Networking", "description": "Master Networking concepts.", "hint": "Start with transport."}
		],
		"questions": [
			{
				"id": "net-e-1",
				"topicId": "networking",
				"subTopic": "Transport",
				"difficulty": "easy",
				"flashcard": "What is TCP?",
				"flashcardAnswer": "A reliable, connection-oriented transport protocol.",
				"question": "Which protocol guarantees ordered delivery?",
				"options": ["UDP", "TCP", "ICMP", "ARP"],
				"answerIndex": 1,
				"explanation": "TCP provides ordered, reliable delivery."
			},
			{
				"id": "net-h-1",
				"topicId": "networking",
				"subTopic": "Routing",
				"difficulty": "hard",
				"flashcard": "",
				"question": "What does BGP exchange?",
				"options": ["Routes", "Frames", "Segments", "Signals"],
				"answerIndex": 0
			}
		]
	}`

	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, domain.DifficultyEasy, items[0].Difficulty)
	assert.True(t, items[0].HasReviewableContent)
	assert.Equal(t, "what is tcp", items[0].ContentKey)
	assert.False(t, items[1].HasReviewableContent)

	topics := c.Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, "Networking", topics[0].Name)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid-item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"questions":[{"id":"","subTopic":"x"}]}`), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, domain.ErrItemIDEmpty)
}
