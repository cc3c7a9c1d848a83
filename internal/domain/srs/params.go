package srs

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Params defines the configurable parameters of the fixed-interval
// scheduling scheme.
type Params struct {
	// WrongRetry is the delay before an incorrectly answered item
	// resurfaces, independent of difficulty.
	WrongRetry time.Duration

	// Intervals maps a difficulty to the delay after a correct answer.
	Intervals map[domain.Difficulty]time.Duration

	// DefaultDifficulty is used when a record carries an unknown or
	// missing difficulty.
	DefaultDifficulty domain.Difficulty
}

// ParamsConfig allows overriding the default parameters when creating a
// new Params instance. Zero values keep the default.
type ParamsConfig struct {
	WrongRetryMinutes     int
	EasyIntervalMinutes   int
	MediumIntervalMinutes int
	HardIntervalMinutes   int
}

// NewDefaultParams creates a new Params instance with default values:
// wrong answers resurface after 5 minutes, correct answers after
// 15/25/35 minutes for easy/medium/hard.
func NewDefaultParams() *Params {
	return &Params{
		WrongRetry: 5 * time.Minute,
		Intervals: map[domain.Difficulty]time.Duration{
			domain.DifficultyEasy:   15 * time.Minute,
			domain.DifficultyMedium: 25 * time.Minute,
			domain.DifficultyHard:   35 * time.Minute,
		},
		DefaultDifficulty: domain.DifficultyMedium,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.WrongRetryMinutes > 0 {
		params.WrongRetry = time.Duration(config.WrongRetryMinutes) * time.Minute
	}
	if config.EasyIntervalMinutes > 0 {
		params.Intervals[domain.DifficultyEasy] = time.Duration(config.EasyIntervalMinutes) * time.Minute
	}
	if config.MediumIntervalMinutes > 0 {
		params.Intervals[domain.DifficultyMedium] = time.Duration(config.MediumIntervalMinutes) * time.Minute
	}
	if config.HardIntervalMinutes > 0 {
		params.Intervals[domain.DifficultyHard] = time.Duration(config.HardIntervalMinutes) * time.Minute
	}

	return params
}

// interval returns the correct-answer delay for the given difficulty,
// falling back to the default difficulty for unknown values.
func (p *Params) interval(difficulty domain.Difficulty) time.Duration {
	if d, ok := p.Intervals[difficulty]; ok {
		return d
	}
	return p.Intervals[p.DefaultDifficulty]
}
