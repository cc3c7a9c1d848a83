package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint: a fresh token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// StartSessionRequest defines the payload for the session start endpoint.
type StartSessionRequest struct {
	// ForceNew discards an existing session and composes a fresh batch.
	// Subject to the inter-batch cooldown.
	ForceNew bool `json:"force_new"`
}

// StartSessionResponse carries the session's subtopic set.
type StartSessionResponse struct {
	Subtopics []string `json:"subtopics"`
}

// ItemResponse is the served-item payload. The answer index and
// explanation ship with the item; grading happens client-side and the
// outcome is reported back through the answer endpoint.
type ItemResponse struct {
	ID          string            `json:"id"`
	TopicID     string            `json:"topic_id,omitempty"`
	Subtopic    string            `json:"subtopic"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Flashcard   string            `json:"flashcard"`
	Answer      string            `json:"answer,omitempty"`
	Question    string            `json:"question,omitempty"`
	Options     []string          `json:"options,omitempty"`
	AnswerIndex int               `json:"answer_index"`
	Explanation string            `json:"explanation,omitempty"`
}

// NewItemResponse maps a catalog item to its API payload.
func NewItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		TopicID:     item.TopicID,
		Subtopic:    item.Subtopic,
		Difficulty:  item.Difficulty,
		Flashcard:   item.Flashcard,
		Answer:      item.Answer,
		Question:    item.Question,
		Options:     item.Options,
		AnswerIndex: item.AnswerIndex,
		Explanation: item.Explanation,
	}
}

// CompleteBatchRequest defines the payload for the batch completion
// endpoint. CompletedAt is the client-side completion instant; the
// service validates it against the server clock.
type CompleteBatchRequest struct {
	CompletedAt time.Time `json:"completed_at" validate:"required"`
}

// AnswerRequest defines the payload for the item answer endpoint.
// Difficulty optionally overrides the item's native difficulty for
// scheduling (e.g. a prior self-rating).
type AnswerRequest struct {
	Correct    bool   `json:"correct"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// RatingRequest defines the payload for the item self-rating endpoint.
type RatingRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// ReviewRecordResponse is the updated per-item review state returned by
// the answer and rating endpoints.
type ReviewRecordResponse struct {
	ItemID            string            `json:"item_id"`
	Difficulty        domain.Difficulty `json:"difficulty"`
	LastAnswerCorrect *bool             `json:"last_answer_correct,omitempty"`
	NextReviewAt      *time.Time        `json:"next_review_at,omitempty"`
	TimesReviewed     int               `json:"times_reviewed"`
}

// NewReviewRecordResponse maps a review record to its API payload.
func NewReviewRecordResponse(itemID string, rec *domain.ReviewRecord) ReviewRecordResponse {
	return ReviewRecordResponse{
		ItemID:            itemID,
		Difficulty:        rec.Difficulty,
		LastAnswerCorrect: rec.LastAnswerCorrect,
		NextReviewAt:      rec.NextReviewAt,
		TimesReviewed:     rec.TimesReviewed,
	}
}

// TopicResponse is one topic in the topic listing.
type TopicResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Subtopics   []string `json:"subtopics,omitempty"`
}
