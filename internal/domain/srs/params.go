package srs

import (
	"github.com/studypace/srs-api/internal/config"
)

// Params defines all configurable parameters for the SRS algorithm.
// Hardcoded scheduling constants live here and nowhere else; every
// calculation receives a Params explicitly rather than reading ambient state.
type Params struct {
	// Core limits
	InitialEaseFactor float64
	MinEaseFactor     float64

	// SuccessThreshold is the lowest quality rating that counts as a
	// successful recall. Ratings below it reset the learning sequence.
	SuccessThreshold int

	// Fixed intervals for the first two consecutive successes. From the
	// third success on, the interval grows by the ease factor.
	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: ease 2.5 with a 1.3 floor, success at quality 3, and the 1/6-day
// opening intervals.
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: 2.5,
		MinEaseFactor:     1.3,
		SuccessThreshold:  3,
		FirstInterval:     1,
		SecondInterval:    6,
	}
}

// NewParamsFromConfig creates a Params instance from application
// configuration, falling back to defaults for unset values.
func NewParamsFromConfig(cfg config.SchedulerConfig) *Params {
	params := NewDefaultParams()

	if cfg.InitialEaseFactor > 1 {
		params.InitialEaseFactor = cfg.InitialEaseFactor
	}
	if cfg.MinEaseFactor > 1 {
		params.MinEaseFactor = cfg.MinEaseFactor
	}

	return params
}
