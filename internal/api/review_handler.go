package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/service/review"
)

// ReviewHandler handles the drill endpoints: session lifecycle, item
// serving, answer and rating recording, batch completion, and the
// cooldown status probe.
type ReviewHandler struct {
	reviewService review.Service
	validator     *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(reviewService review.Service) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// StartSession handles POST /api/session.
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	// An empty body means "join or start", same as force_new=false.
	var req StartSessionRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
	}

	subtopics, err := h.reviewService.StartSession(r.Context(), userID, req.ForceNew)
	if err != nil {
		HandleAPIError(w, r, err, "failed to start session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StartSessionResponse{Subtopics: subtopics})
}

// NextItem handles GET /api/items/next.
func (h *ReviewHandler) NextItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	item, err := h.reviewService.ServeNext(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed to serve next item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewItemResponse(item))
}

// RecordAnswer handles POST /api/items/{id}/answer.
func (h *ReviewHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := getPathItemID(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	rec, err := h.reviewService.RecordAnswer(
		r.Context(), userID, itemID, req.Correct, domain.Difficulty(req.Difficulty))
	if err != nil {
		HandleAPIError(w, r, err, "failed to record answer")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewReviewRecordResponse(itemID, rec))
}

// RecordRating handles POST /api/items/{id}/rating.
func (h *ReviewHandler) RecordRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	itemID, ok := getPathItemID(w, r)
	if !ok {
		return
	}

	var req RatingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	rec, err := h.reviewService.RecordRating(
		r.Context(), userID, itemID, domain.Difficulty(req.Difficulty))
	if err != nil {
		HandleAPIError(w, r, err, "failed to record rating")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewReviewRecordResponse(itemID, rec))
}

// CompleteBatch handles POST /api/batch/complete.
func (h *ReviewHandler) CompleteBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CompleteBatchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.CompletedAt.IsZero() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "completed_at is required")
		return
	}

	if err := h.reviewService.CompleteBatch(r.Context(), userID, req.CompletedAt); err != nil {
		HandleAPIError(w, r, err, "failed to complete batch")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCooldown handles GET /api/batch/cooldown.
func (h *ReviewHandler) GetCooldown(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.reviewService.GetCooldown(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed to get cooldown status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
