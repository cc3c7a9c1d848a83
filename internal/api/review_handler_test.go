package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionEndpoint(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	rec := doJSON(t, router, http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StartSessionResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Subtopics)
}

func TestNextItemEndpoint(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/session", nil).Code)

	rec := doJSON(t, router, http.MethodGet, "/items/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var item ItemResponse
	decodeBody(t, rec, &item)
	assert.NotEmpty(t, item.ID)
	assert.NotEmpty(t, item.Subtopic)
	assert.NotEmpty(t, item.Flashcard)
}

func TestCompleteBatchAndCooldownEndpoints(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/session", nil).Code)

	rec := doJSON(t, router, http.MethodPost, "/batch/complete",
		CompleteBatchRequest{CompletedAt: time.Now().UTC()})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The cooldown is now running.
	rec = doJSON(t, router, http.MethodGet, "/batch/cooldown", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		CanStart         bool `json:"can_start"`
		RemainingSeconds int  `json:"remaining_seconds"`
	}
	decodeBody(t, rec, &status)
	assert.False(t, status.CanStart)
	assert.Greater(t, status.RemainingSeconds, 0)

	// A forced restart during the cooldown is rejected with the
	// remaining time in the error payload.
	rec = doJSON(t, router, http.MethodPost, "/session", StartSessionRequest{ForceNew: true})
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp struct {
		Error            string `json:"error"`
		RemainingSeconds *int   `json:"remaining_seconds"`
	}
	decodeBody(t, rec, &errResp)
	assert.Equal(t, "Cooldown active", errResp.Error)
	require.NotNil(t, errResp.RemainingSeconds)
	assert.Greater(t, *errResp.RemainingSeconds, 0)
}

func TestCompleteBatchEndpointValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	t.Run("missing timestamp", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/batch/complete", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("future timestamp", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/batch/complete",
			CompleteBatchRequest{CompletedAt: time.Now().UTC().Add(time.Hour)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/batch/complete",
			CompleteBatchRequest{CompletedAt: time.Now().UTC().Add(-time.Hour)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordAnswerEndpoint(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	rec := doJSON(t, router, http.MethodPost, "/items/item-1/answer",
		AnswerRequest{Correct: true, Difficulty: "easy"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReviewRecordResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "item-1", resp.ItemID)
	assert.Equal(t, 1, resp.TimesReviewed)
	require.NotNil(t, resp.LastAnswerCorrect)
	assert.True(t, *resp.LastAnswerCorrect)
	require.NotNil(t, resp.NextReviewAt)
	assert.True(t, resp.NextReviewAt.After(time.Now().UTC().Add(10*time.Minute)))
}

func TestRecordAnswerEndpointErrors(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	t.Run("unknown item", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/items/no-such-item/answer",
			AnswerRequest{Correct: true})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad difficulty", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/items/item-1/answer",
			AnswerRequest{Correct: true, Difficulty: "brutal"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordRatingEndpoint(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	router := authenticatedRouter(NewReviewHandler(svc), uuid.New())

	rec := doJSON(t, router, http.MethodPost, "/items/item-2/rating",
		RatingRequest{Difficulty: "hard"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReviewRecordResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "item-2", resp.ItemID)
	assert.Zero(t, resp.TimesReviewed, "a rating is not an answer")
	assert.Nil(t, resp.LastAnswerCorrect)
	require.NotNil(t, resp.NextReviewAt)

	t.Run("missing difficulty", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/items/item-2/rating",
			map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEndpointsRequireUserID(t *testing.T) {
	t.Parallel()
	svc, _ := newReviewService(smallCatalog())
	h := NewReviewHandler(svc)

	// No auth stub: the context carries no user ID.
	rec := doJSON(t, http.HandlerFunc(h.GetCooldown), http.MethodGet, "/batch/cooldown", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
