// Package ports defines the interfaces the evaluation engine is extended
// through: the evaluator state-machine contract and the cache port.
package ports

import (
	"cmp"

	"godice/domain/core"
	"godice/domain/dist"
)

// Evaluator is the pluggable state machine the engine drives once per
// outcome. Implementations must be pure: NextState is a deterministic
// function of its arguments, and states must be comparable value types so
// equivalent intermediate states merge in the sweep.
//
// NextState receives the current state, the negotiated order, the outcome
// being processed, and one count per generator. Returning reroll=true
// discards the branch's weight entirely; it is not redistributed among the
// surviving branches. Returning core.ErrUnsupportedOrder aborts the sweep
// and makes the engine retry once in the opposite order.
//
// Keeping the state space small is the primary performance lever: the
// sweep's cost is bounded by the product of generator-state and
// evaluator-state cardinality at each step.
type Evaluator[O cmp.Ordered, S comparable, R cmp.Ordered] interface {
	NextState(state S, order core.Order, outcome O, counts []int) (next S, reroll bool, err error)
}

// StateInitializer supplies a starting state. Without it the engine uses
// the zero value of S. May return core.ErrUnsupportedOrder to veto the
// probed order before the sweep starts.
type StateInitializer[O cmp.Ordered, S comparable] interface {
	InitialState(order core.Order, universe []O, sizes []int) (S, error)
}

// FinalOutcomer maps a terminal state to a final outcome once the sweep
// has visited every outcome. Without it the engine requires S to be
// assignable to R and uses the state itself. The result may be a scalar,
// a nested distribution (merged by least-common-denominator scaling), or
// a reroll dropping the terminal state's weight.
type FinalOutcomer[O cmp.Ordered, S comparable, R cmp.Ordered] interface {
	FinalOutcome(state S, order core.Order, universe []O, sizes []int) (Final[R], error)
}

// OrderPreferrer declares the evaluator's processing-direction preference
// for order negotiation. Without it the evaluator accepts either order.
type OrderPreferrer interface {
	PreferredOrder() core.Order
}

// ExtraOutcomer adds outcomes that must be visited with zero count even
// when no generator produces them, e.g. to keep an integer range gap-free
// for straight detection. Receives the generators' combined outcomes.
type ExtraOutcomer[O cmp.Ordered] interface {
	ExtraOutcomes(outcomes []O) []O
}

// ResultKeyer declares a persistent identity for whole-result caching.
// The key must change whenever the evaluator's parameters change. Without
// it, evaluation results are not cached across calls.
type ResultKeyer interface {
	ResultKey() string
}

// Final is the result of FinalOutcome: exactly one of a scalar outcome, a
// nested distribution, or a reroll.
type Final[R cmp.Ordered] struct {
	Outcome R
	Nested  *dist.Die[R]
	Reroll  bool
}

// FinalScalar wraps a plain final outcome.
func FinalScalar[R cmp.Ordered](o R) Final[R] { return Final[R]{Outcome: o} }

// FinalNested wraps a nested distribution final outcome.
func FinalNested[R cmp.Ordered](d *dist.Die[R]) Final[R] { return Final[R]{Nested: d} }

// FinalReroll drops the terminal state's weight.
func FinalReroll[R cmp.Ordered]() Final[R] { return Final[R]{Reroll: true} }
