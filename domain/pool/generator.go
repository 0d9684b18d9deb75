// Package pool implements the generators the evaluation engine sweeps
// over: dice pools with sorted keep/drop rules, deals from a finite deck,
// and multiset-algebra combinations of other generators. A generator
// exposes its multiset one outcome at a time as a distribution over
// (count, residual state, local weight) triples; the per-outcome count
// resolution is what keeps evaluation polynomial instead of enumerating
// every elementary outcome combination.
package pool

import (
	"cmp"
	"math/big"

	"godice/domain/core"
)

// State is the opaque residual description of what a generator still has
// to draw. States are owned by their generator, never shared, and must be
// structurally keyable so sweep entries can merge.
type State interface {
	// Key returns a canonical structural key for map merging and caching.
	Key() string
	// Exhausted reports whether nothing remains to be drawn. Every
	// surviving state must be exhausted once the sweep has visited the
	// final outcome.
	Exhausted() bool
}

// Pop is one branch of a generator's local count distribution at an
// outcome: Count elements drawn at the outcome, the residual state, and
// the branch's local weight. Local weights are exact and multiply along
// the sweep so that the full sweep conserves the generator's denominator.
type Pop struct {
	State  State
	Count  int
	Weight *big.Int
}

// Generator exposes a weighted multiset (or an algebraic combination of
// multisets) to the evaluation engine.
type Generator[O cmp.Ordered] interface {
	// Outcomes returns every outcome the generator can produce, sorted
	// ascending, with no duplicates.
	Outcomes() []O

	// InitialState returns the full, nothing-drawn-yet state.
	InitialState() State

	// Pop enumerates the local count distribution at outcome given the
	// residual state, for a sweep running in the given order. Outcomes
	// the generator cannot produce yield a single zero-count branch with
	// weight one.
	Pop(st State, outcome O, order core.Order) ([]Pop, error)

	// Size is the number of elements the generator draws in total, or -1
	// when not statically known (algebraic combinations).
	Size() int

	// Denominator is the generator's total weight: the sum of local
	// weight products over all complete draws.
	Denominator() *big.Int

	// PreferredOrder declares a processing-direction preference for the
	// engine's order negotiation. core.OrderAny accepts either.
	PreferredOrder() core.Order

	// Hash is the structural description used for cache keys.
	Hash() core.GeneratorHash
}

// forcedAtOutcome reports whether outcome is the last of outcomes (sorted
// ascending) that the sweep will visit in the given order, i.e. whether a
// generator must resolve everything it has left there.
func forcedAtOutcome[O cmp.Ordered](outcomes []O, outcome O, order core.Order) bool {
	if len(outcomes) == 0 {
		return false
	}
	if order == core.OrderDescending {
		return outcomes[0] == outcome
	}
	return outcomes[len(outcomes)-1] == outcome
}
