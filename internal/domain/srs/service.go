// Package srs implements the review scheduling scheme: a pure mapping
// from (correctness, difficulty) to the next review instant. The same
// arithmetic applies to item-level and subtopic-level records.
package srs

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Service defines the interface for scheduling operations.
type Service interface {
	// NextReviewAt computes when an item must resurface after an answer.
	// Incorrect answers always resurface after the short retry delay,
	// regardless of difficulty. Unknown difficulties schedule as medium.
	NextReviewAt(wasCorrect bool, difficulty domain.Difficulty, now time.Time) time.Time

	// ProvisionalReviewAt computes the review date a self-rating sets
	// before any answer has been recorded. It assumes the future answer
	// will be correct.
	ProvisionalReviewAt(difficulty domain.Difficulty, now time.Time) time.Time
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// NextReviewAt implements the Service interface.
func (s *defaultService) NextReviewAt(
	wasCorrect bool,
	difficulty domain.Difficulty,
	now time.Time,
) time.Time {
	if !wasCorrect {
		return now.Add(s.params.WrongRetry)
	}
	return now.Add(s.params.interval(difficulty))
}

// ProvisionalReviewAt implements the Service interface.
func (s *defaultService) ProvisionalReviewAt(
	difficulty domain.Difficulty,
	now time.Time,
) time.Time {
	return now.Add(s.params.interval(difficulty))
}
