package evals

import (
	"cmp"

	"godice/domain/core"
	"godice/ports"
)

// highestState remembers the first outcome seen with a nonzero count.
type highestState[O cmp.Ordered] struct {
	set bool
	val O
}

// HighestOutcome reports the highest outcome drawn by any generator. It
// only works descending - the first nonzero count is the answer - and
// rejects an ascending sweep, exercising the engine's single-retry order
// negotiation. A draw with no elements at all rerolls to the empty
// distribution.
type HighestOutcome[O cmp.Ordered] struct{}

// NewHighestOutcome creates a highest-outcome evaluator.
func NewHighestOutcome[O cmp.Ordered]() *HighestOutcome[O] {
	return &HighestOutcome[O]{}
}

// PreferredOrder declares the descending requirement.
func (*HighestOutcome[O]) PreferredOrder() core.Order { return core.OrderDescending }

// InitialState vetoes ascending sweeps.
func (*HighestOutcome[O]) InitialState(order core.Order, _ []O, _ []int) (highestState[O], error) {
	if order != core.OrderDescending {
		return highestState[O]{}, core.ErrUnsupportedOrder
	}
	return highestState[O]{}, nil
}

// NextState latches the first outcome with a nonzero count.
func (*HighestOutcome[O]) NextState(state highestState[O], _ core.Order, outcome O, counts []int) (highestState[O], bool, error) {
	if state.set {
		return state, false, nil
	}
	for _, c := range counts {
		if c > 0 {
			return highestState[O]{set: true, val: outcome}, false, nil
		}
	}
	return state, false, nil
}

// FinalOutcome unwraps the latched outcome; an empty draw rerolls.
func (*HighestOutcome[O]) FinalOutcome(state highestState[O], _ core.Order, _ []O, _ []int) (ports.Final[O], error) {
	if !state.set {
		return ports.FinalReroll[O](), nil
	}
	return ports.FinalScalar(state.val), nil
}

// ResultKey identifies highest-outcome results in the whole-result cache.
func (*HighestOutcome[O]) ResultKey() string { return "evals.highest" }
