// Package evals provides the built-in evaluators: small, pure state
// machines covering the common pool questions. They double as reference
// implementations of the ports.Evaluator contract.
package evals

import (
	"godice/domain/core"
)

// Integer constrains outcomes that support arithmetic.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Sum accumulates outcome * count across the sweep. It is
// order-insensitive and needs no final transform: the terminal state is
// the result. A zero-element pool sums to 0 with weight 1.
type Sum[O Integer] struct{}

// NewSum creates a summation evaluator.
func NewSum[O Integer]() *Sum[O] { return &Sum[O]{} }

// NextState adds the outcome once per counted element.
func (*Sum[O]) NextState(state O, _ core.Order, outcome O, counts []int) (O, bool, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	return state + outcome*O(total), false, nil
}

// ResultKey identifies sum results in the whole-result cache.
func (*Sum[O]) ResultKey() string { return "evals.sum" }
