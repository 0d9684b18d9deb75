// Package app is the caller-facing surface of the library: evaluation
// entry points, fixed-point helpers, summaries, and sampling.
package app

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/domain/pool"
	"godice/internal"
	"godice/internal/fixedpoint"
	"godice/internal/sweep"
	"godice/ports"
)

// Options tunes evaluation calls. The zero value evaluates uncached,
// sequentially, logging through the default logger.
type Options struct {
	// Cache memoizes generator pops and whole results across evaluations.
	Cache ports.ResultCache
	// Logger overrides the default leveled logger.
	Logger *internal.Logger
	// Parallelism > 1 spreads sweep entries across goroutines.
	Parallelism int
	// MaxFixedPointStates caps the fixed-point state arena.
	MaxFixedPointStates int
	// EvalID overrides the generated per-evaluation identifier in logs.
	EvalID core.EvalID
}

func (o Options) sweepOptions() sweep.Options {
	return sweep.Options{
		Cache:       o.Cache,
		Logger:      o.Logger,
		Parallelism: o.Parallelism,
		EvalID:      o.EvalID,
	}
}

// Evaluate runs the evaluator against the generators and returns the exact
// distribution over final outcomes. Generators draw independently; the
// evaluator sees one count per generator at every outcome.
//
// The result type R is not part of the Evaluator method set, so callers
// name O and R explicitly and let the state type be inferred:
// app.Evaluate[int, int](evals.NewSum[int](), opts, p).
func Evaluate[O cmp.Ordered, R cmp.Ordered, S comparable](
	ev ports.Evaluator[O, S, R],
	opts Options,
	gens ...pool.Generator[O],
) (*dist.Die[R], error) {
	eng, err := sweep.New[O, R, S](ev, gens, opts.sweepOptions())
	if err != nil {
		return nil, err
	}
	return eng.Run()
}

// EvaluateCounts is the direct single-draw path: the multiset is already
// fully materialized as outcome->count, so no sweep over generator states
// is needed, but the evaluator contract - order negotiation included - is
// honored exactly as in Evaluate.
func EvaluateCounts[O cmp.Ordered, R cmp.Ordered, S comparable](
	ev ports.Evaluator[O, S, R],
	opts Options,
	counts map[O]int,
) (*dist.Die[R], error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil evaluator", core.ErrInvalidEvaluator)
	}

	universe := make([]O, 0, len(counts))
	for o := range counts {
		universe = append(universe, o)
	}
	slices.Sort(universe)
	if eo, ok := any(ev).(ports.ExtraOutcomer[O]); ok {
		extra := eo.ExtraOutcomes(universe)
		for _, o := range extra {
			if _, ok := counts[o]; !ok {
				universe = append(universe, o)
			}
		}
		slices.Sort(universe)
	}

	first := core.OrderDescending
	if op, ok := any(ev).(ports.OrderPreferrer); ok && op.PreferredOrder() != core.OrderAny {
		first = op.PreferredOrder()
	}

	result, err := walkCounts[O, R, S](ev, universe, counts, first)
	if err == nil || !errors.Is(err, core.ErrUnsupportedOrder) {
		return result, err
	}
	result, err = walkCounts[O, R, S](ev, universe, counts, first.Reversed())
	if err != nil && errors.Is(err, core.ErrUnsupportedOrder) {
		return nil, core.NewOrderConflictError(first, first.Reversed())
	}
	return result, err
}

func walkCounts[O cmp.Ordered, R cmp.Ordered, S comparable](
	ev ports.Evaluator[O, S, R],
	universe []O,
	counts map[O]int,
	order core.Order,
) (*dist.Die[R], error) {
	var state S
	if si, ok := any(ev).(ports.StateInitializer[O, S]); ok {
		var err error
		sizes := []int{totalCount(counts)}
		if state, err = si.InitialState(order, universe, sizes); err != nil {
			return nil, err
		}
	}

	outcomes := slices.Clone(universe)
	if order == core.OrderDescending {
		slices.Reverse(outcomes)
	}
	for _, o := range outcomes {
		next, reroll, err := ev.NextState(state, order, o, []int{counts[o]})
		if err != nil {
			return nil, err
		}
		if reroll {
			return dist.Empty[R](), nil
		}
		state = next
	}

	var final ports.Final[R]
	if fo, ok := any(ev).(ports.FinalOutcomer[O, S, R]); ok {
		var err error
		if final, err = fo.FinalOutcome(state, order, universe, []int{totalCount(counts)}); err != nil {
			return nil, err
		}
	} else if r, ok := any(state).(R); ok {
		final = ports.FinalScalar(r)
	} else {
		return nil, fmt.Errorf("%w: %T as %T", core.ErrNonFinalizable, state, *new(R))
	}

	switch {
	case final.Reroll:
		return dist.Empty[R](), nil
	case final.Nested != nil:
		return final.Nested, nil
	default:
		return dist.Constant(final.Outcome), nil
	}
}

func totalCount[O cmp.Ordered](counts map[O]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// SolveFixedPoint resolves a self-referential definition to its exact
// absorption distribution.
func SolveFixedPoint[S cmp.Ordered](
	start *dist.Die[S],
	step fixedpoint.Step[S],
	opts Options,
) (*dist.Die[S], error) {
	return fixedpoint.Solve(start, step, fixedpoint.Options{
		MaxStates: opts.MaxFixedPointStates,
		Logger:    opts.Logger,
	})
}

// UnrollFixedPoint expands a self-referential definition to a fixed depth,
// failing loudly when transient weight survives the bound.
func UnrollFixedPoint[S cmp.Ordered](
	start *dist.Die[S],
	step fixedpoint.Step[S],
	depth int,
	opts Options,
) (*dist.Die[S], error) {
	return fixedpoint.Unroll(start, step, depth, fixedpoint.Options{
		MaxStates: opts.MaxFixedPointStates,
		Logger:    opts.Logger,
	})
}
