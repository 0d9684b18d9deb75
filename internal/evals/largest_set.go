package evals

import (
	"cmp"

	"godice/domain/core"
)

// LargestMatchingSet tracks the largest number of elements showing the
// same outcome, the "biggest matching set" question. Counts from multiple
// generators at one outcome pool together. Order-insensitive.
type LargestMatchingSet[O cmp.Ordered] struct{}

// NewLargestMatchingSet creates a largest-matching-set evaluator.
func NewLargestMatchingSet[O cmp.Ordered]() *LargestMatchingSet[O] {
	return &LargestMatchingSet[O]{}
}

// NextState keeps the running maximum per-outcome count.
func (*LargestMatchingSet[O]) NextState(state int, _ core.Order, _ O, counts []int) (int, bool, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	return max(state, total), false, nil
}

// ResultKey identifies largest-set results in the whole-result cache.
func (*LargestMatchingSet[O]) ResultKey() string { return "evals.largest_set" }
