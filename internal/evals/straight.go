package evals

import (
	"godice/domain/core"
	"godice/ports"
)

// straightState is the running and best consecutive-run lengths.
type straightState struct {
	run  int
	best int
}

// LargestStraight finds the longest run of consecutive integer outcomes
// that each drew at least one element. It declares the gaps in the integer
// range as extra outcomes so a missing face breaks the run instead of
// silently skipping it; run length is direction-independent, so either
// order works.
type LargestStraight[O Integer] struct{}

// NewLargestStraight creates a largest-straight evaluator.
func NewLargestStraight[O Integer]() *LargestStraight[O] {
	return &LargestStraight[O]{}
}

// NextState extends the current run on a hit and breaks it on a gap.
func (*LargestStraight[O]) NextState(state straightState, _ core.Order, _ O, counts []int) (straightState, bool, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		state.run = 0
		return state, false, nil
	}
	state.run++
	state.best = max(state.best, state.run)
	return state, false, nil
}

// FinalOutcome reports the best run length.
func (*LargestStraight[O]) FinalOutcome(state straightState, _ core.Order, _ []O, _ []int) (ports.Final[int], error) {
	return ports.FinalScalar(state.best), nil
}

// ExtraOutcomes fills the integer gaps between the lowest and highest
// generator outcomes so the universe is consecutive.
func (*LargestStraight[O]) ExtraOutcomes(outcomes []O) []O {
	if len(outcomes) < 2 {
		return nil
	}
	var extra []O
	for o := outcomes[0] + 1; o < outcomes[len(outcomes)-1]; o++ {
		extra = append(extra, o)
	}
	return extra
}

// ResultKey identifies largest-straight results in the whole-result cache.
func (*LargestStraight[O]) ResultKey() string { return "evals.largest_straight" }
