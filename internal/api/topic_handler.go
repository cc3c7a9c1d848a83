package api

import (
	"net/http"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/catalog"
)

// TopicHandler serves the read-only topic listing from the catalog.
type TopicHandler struct {
	catalog catalog.Catalog
}

// NewTopicHandler creates a new TopicHandler over the given catalog.
func NewTopicHandler(cat catalog.Catalog) *TopicHandler {
	return &TopicHandler{catalog: cat}
}

// ListTopics handles GET /api/topics. Subtopics are attached to their
// topic by walking the item set once per request; the catalog is small
// and immutable.
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	subtopicsByTopic := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, item := range h.catalog.Items() {
		if seen[item.TopicID] == nil {
			seen[item.TopicID] = make(map[string]bool)
		}
		if !seen[item.TopicID][item.Subtopic] {
			seen[item.TopicID][item.Subtopic] = true
			subtopicsByTopic[item.TopicID] = append(subtopicsByTopic[item.TopicID], item.Subtopic)
		}
	}

	topics := h.catalog.Topics()
	resp := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		resp = append(resp, TopicResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Subtopics:   subtopicsByTopic[t.ID],
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
