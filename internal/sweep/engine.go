// Package sweep implements the evaluation engine: outcome-universe
// construction, order negotiation, and the dynamic-programming pass that
// combines generator count distributions with the evaluator's state
// machine one outcome at a time, merging equivalent intermediate states.
package sweep

import (
	"cmp"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/domain/pool"
	"godice/internal"
	"godice/ports"
)

// Options tunes a single engine instance. The zero value is usable.
type Options struct {
	// Cache memoizes generator pops and whole results when non-nil.
	Cache ports.ResultCache
	// Logger receives per-sweep diagnostics; defaults to the package
	// default logger.
	Logger *internal.Logger
	// Parallelism > 1 partitions sweep entries across that many
	// goroutines per outcome step. Purely an optimization; results are
	// identical at any degree.
	Parallelism int
	// EvalID tags log lines; generated when empty.
	EvalID core.EvalID
}

// Engine evaluates one evaluator against a fixed set of generators. An
// engine instance is single-use and exclusively owns its sweep state; only
// the cache is shared.
type Engine[O cmp.Ordered, R cmp.Ordered, S comparable] struct {
	ev     ports.Evaluator[O, S, R]
	gens   []pool.Generator[O]
	hashes []core.GeneratorHash
	sizes  []int
	opts   Options
	log    *internal.Logger

	universe []O // ascending
}

// entry is one live sweep state: the tuple of generator residual states,
// the evaluator state, and the accumulated weight of every path that
// reached this pair. Summing weights on key collision is what makes the
// algorithm polynomial.
type entry[S comparable] struct {
	genStates []pool.State
	evalState S
	weight    *big.Int
}

// New builds an engine for one evaluation call. The result type R is not
// part of the Evaluator method set, so callers name O and R explicitly and
// let the state type be inferred.
func New[O cmp.Ordered, R cmp.Ordered, S comparable](
	ev ports.Evaluator[O, S, R],
	gens []pool.Generator[O],
	opts Options,
) (*Engine[O, R, S], error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil evaluator", core.ErrInvalidEvaluator)
	}
	for i, g := range gens {
		if g == nil {
			return nil, fmt.Errorf("%w: nil generator %d", core.ErrInvalidEvaluator, i)
		}
	}
	if opts.Logger == nil {
		opts.Logger = internal.DefaultLogger
	}
	if opts.EvalID.String() == "" {
		opts.EvalID = core.NewEvalID()
	}
	e := &Engine[O, R, S]{ev: ev, gens: gens, opts: opts, log: opts.Logger.With("sweep")}
	for _, g := range gens {
		e.hashes = append(e.hashes, g.Hash())
		e.sizes = append(e.sizes, g.Size())
	}
	e.universe = e.buildUniverse()
	return e, nil
}

// Run negotiates the order and executes the sweep, retrying exactly once
// in the opposite direction when a participant rejects the first choice.
func (e *Engine[O, R, S]) Run() (*dist.Die[R], error) {
	first := e.negotiateFirstOrder()
	e.log.Debug("eval %s: %d generators, universe %d, trying %s order",
		e.opts.EvalID, len(e.gens), len(e.universe), first)

	result, err := e.attempt(first)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, core.ErrUnsupportedOrder) {
		return nil, err
	}

	second := first.Reversed()
	e.log.Debug("eval %s: %s order rejected, retrying %s", e.opts.EvalID, first, second)
	result, err = e.attempt(second)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, core.ErrUnsupportedOrder) {
		return nil, core.NewOrderConflictError(first, second)
	}
	return nil, err
}

// buildUniverse returns the sorted union of generator outcomes plus the
// evaluator's declared extras.
func (e *Engine[O, R, S]) buildUniverse() []O {
	seen := make(map[O]struct{})
	for _, g := range e.gens {
		for _, o := range g.Outcomes() {
			seen[o] = struct{}{}
		}
	}
	base := make([]O, 0, len(seen))
	for o := range seen {
		base = append(base, o)
	}
	slices.Sort(base)
	if eo, ok := any(e.ev).(ports.ExtraOutcomer[O]); ok {
		for _, o := range eo.ExtraOutcomes(base) {
			seen[o] = struct{}{}
		}
	}
	universe := make([]O, 0, len(seen))
	for o := range seen {
		universe = append(universe, o)
	}
	slices.Sort(universe)
	return universe
}

// negotiateFirstOrder picks the direction to try first: the evaluator's
// declared preference wins, then the generators' merged preference, then
// descending (the cheap direction for keep-highest pools).
func (e *Engine[O, R, S]) negotiateFirstOrder() core.Order {
	if op, ok := any(e.ev).(ports.OrderPreferrer); ok {
		if pref := op.PreferredOrder(); pref != core.OrderAny {
			return pref
		}
	}
	merged := core.OrderAny
	for _, g := range e.gens {
		next, ok := merged.Merge(g.PreferredOrder())
		if !ok {
			break
		}
		merged = next
	}
	if merged != core.OrderAny {
		return merged
	}
	return core.OrderDescending
}

// attempt runs one full sweep in the given order, consulting the
// whole-result cache when the evaluator declares a persistent key.
func (e *Engine[O, R, S]) attempt(order core.Order) (*dist.Die[R], error) {
	rk, keyed := any(e.ev).(ports.ResultKeyer)
	if !keyed || e.opts.Cache == nil {
		return e.runSweep(order)
	}
	key := core.ComputeResultKey(rk.ResultKey(), e.hashes, order)
	if c, ok := e.opts.Cache.(interface {
		DoResult(core.ResultKey, func() (any, error)) (any, error)
	}); ok {
		v, err := c.DoResult(key, func() (any, error) { return e.runSweep(order) })
		if err != nil {
			return nil, err
		}
		if d, ok := v.(*dist.Die[R]); ok {
			return d, nil
		}
		return e.runSweep(order)
	}
	if v, ok := e.opts.Cache.GetResult(key); ok {
		if d, ok := v.(*dist.Die[R]); ok {
			e.log.Debug("eval %s: whole-result cache hit", e.opts.EvalID)
			return d, nil
		}
	}
	d, err := e.runSweep(order)
	if err != nil {
		return nil, err
	}
	e.opts.Cache.PutResult(key, d)
	return d, nil
}

func (e *Engine[O, R, S]) runSweep(order core.Order) (*dist.Die[R], error) {
	initial, err := e.initialState(order)
	if err != nil {
		return nil, err
	}

	genStates := make([]pool.State, len(e.gens))
	for i, g := range e.gens {
		genStates[i] = g.InitialState()
	}
	start := &entry[S]{genStates: genStates, evalState: initial, weight: core.One()}
	entries := map[string]*entry[S]{e.entryKey(start): start}

	outcomes := e.universe
	if order == core.OrderDescending {
		outcomes = make([]O, len(e.universe))
		for i, o := range e.universe {
			outcomes[len(e.universe)-1-i] = o
		}
	}

	for _, outcome := range outcomes {
		entries, err = e.step(entries, outcome, order)
		if err != nil {
			return nil, err
		}
		e.log.Trace("eval %s: outcome %v, %d live entries", e.opts.EvalID, outcome, len(entries))
		if len(entries) == 0 {
			// Every branch rerolled away; the result is the explicit
			// empty distribution, not an error.
			break
		}
	}

	return e.finalize(entries, order)
}

// step advances every live entry across one outcome.
func (e *Engine[O, R, S]) step(entries map[string]*entry[S], outcome O, order core.Order) (map[string]*entry[S], error) {
	if e.opts.Parallelism > 1 && len(entries) > 1 {
		return e.stepParallel(entries, outcome, order)
	}
	next := make(map[string]*entry[S])
	for _, en := range entries {
		if err := e.advance(en, outcome, order, next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// stepParallel partitions entries across goroutines and merges the partial
// maps afterward. The per-key weight merge is associative and commutative,
// so partitioning cannot change the result.
func (e *Engine[O, R, S]) stepParallel(entries map[string]*entry[S], outcome O, order core.Order) (map[string]*entry[S], error) {
	n := min(e.opts.Parallelism, len(entries))
	chunks := make([][]*entry[S], n)
	i := 0
	for _, en := range entries {
		chunks[i%n] = append(chunks[i%n], en)
		i++
	}

	partials := make([]map[string]*entry[S], n)
	var g errgroup.Group
	for w := range n {
		g.Go(func() error {
			local := make(map[string]*entry[S])
			for _, en := range chunks[w] {
				if err := e.advance(en, outcome, order, local); err != nil {
					return err
				}
			}
			partials[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := partials[0]
	for _, local := range partials[1:] {
		for key, en := range local {
			if existing, ok := next[key]; ok {
				existing.weight.Add(existing.weight, en.weight)
			} else {
				next[key] = en
			}
		}
	}
	return next, nil
}

// advance crosses the generators' independent local distributions at one
// outcome for a single entry and feeds each count tuple to the evaluator.
func (e *Engine[O, R, S]) advance(en *entry[S], outcome O, order core.Order, into map[string]*entry[S]) error {
	pops := make([][]pool.Pop, len(e.gens))
	for i := range e.gens {
		ps, err := e.pops(i, en.genStates[i], outcome, order)
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			// Generator cannot resolve here; the branch dies.
			return nil
		}
		pops[i] = ps
	}

	idx := make([]int, len(e.gens))
	for {
		counts := make([]int, len(e.gens))
		weight := new(big.Int).Set(en.weight)
		states := make([]pool.State, len(e.gens))
		for i, j := range idx {
			p := pops[i][j]
			counts[i] = p.Count
			states[i] = p.State
			weight.Mul(weight, p.Weight)
		}

		nextState, reroll, err := e.ev.NextState(en.evalState, order, outcome, counts)
		if err != nil {
			return err
		}
		if !reroll {
			ne := &entry[S]{genStates: states, evalState: nextState, weight: weight}
			key := e.entryKey(ne)
			if existing, ok := into[key]; ok {
				existing.weight.Add(existing.weight, ne.weight)
			} else {
				into[key] = ne
			}
		}

		i := 0
		for ; i < len(idx); i++ {
			idx[i]++
			if idx[i] < len(pops[i]) {
				break
			}
			idx[i] = 0
		}
		if i == len(idx) {
			return nil
		}
	}
}

// pops returns a generator's local count distribution, memoized when a
// cache is attached.
func (e *Engine[O, R, S]) pops(i int, st pool.State, outcome O, order core.Order) ([]pool.Pop, error) {
	if e.opts.Cache == nil {
		return e.gens[i].Pop(st, outcome, order)
	}
	key := core.ComputePopKey(e.hashes[i], st.Key(), outcome, order)
	if ps, ok := e.opts.Cache.GetPops(key); ok {
		return ps, nil
	}
	ps, err := e.gens[i].Pop(st, outcome, order)
	if err != nil {
		return nil, err
	}
	e.opts.Cache.PutPops(key, ps)
	return ps, nil
}

// finalize checks exhaustion, folds every terminal state through the final
// transform, and constructs the result distribution. Nested distributions
// are merged on a least-common-denominator scale so weights stay exact.
func (e *Engine[O, R, S]) finalize(entries map[string]*entry[S], order core.Order) (*dist.Die[R], error) {
	for _, en := range entries {
		for i, st := range en.genStates {
			if !st.Exhausted() {
				return nil, core.NewExhaustionError(i, st.Key())
			}
		}
	}

	type terminal struct {
		weight *big.Int
		final  ports.Final[R]
	}
	finals := make([]terminal, 0, len(entries))
	lcm := core.One()
	for _, en := range entries {
		f, err := e.finalOutcome(en.evalState, order)
		if err != nil {
			return nil, err
		}
		if f.Reroll {
			continue
		}
		if f.Nested != nil {
			if f.Nested.IsEmpty() {
				continue
			}
			lcm = core.Lcm(lcm, f.Nested.Denominator())
		}
		finals = append(finals, terminal{weight: en.weight, final: f})
	}

	b := dist.NewBuilder[R]()
	for _, t := range finals {
		if t.final.Nested == nil {
			w := new(big.Int).Mul(t.weight, lcm)
			if err := b.Add(t.final.Outcome, w); err != nil {
				return nil, err
			}
			continue
		}
		scale := new(big.Int).Div(lcm, t.final.Nested.Denominator())
		var failed error
		t.final.Nested.Each(func(o R, w *big.Int) {
			ww := new(big.Int).Mul(w, scale)
			ww.Mul(ww, t.weight)
			if err := b.Add(o, ww); err != nil && failed == nil {
				failed = err
			}
		})
		if failed != nil {
			return nil, failed
		}
	}
	result := b.Die()
	e.log.Debug("eval %s: done, %d outcomes, denominator %s",
		e.opts.EvalID, result.Len(), result.Denominator().String())
	return result, nil
}

func (e *Engine[O, R, S]) initialState(order core.Order) (S, error) {
	if si, ok := any(e.ev).(ports.StateInitializer[O, S]); ok {
		return si.InitialState(order, e.universe, e.sizes)
	}
	var zero S
	return zero, nil
}

func (e *Engine[O, R, S]) finalOutcome(state S, order core.Order) (ports.Final[R], error) {
	if fo, ok := any(e.ev).(ports.FinalOutcomer[O, S, R]); ok {
		return fo.FinalOutcome(state, order, e.universe, e.sizes)
	}
	if r, ok := any(state).(R); ok {
		return ports.FinalScalar(r), nil
	}
	return ports.Final[R]{}, fmt.Errorf("%w: %T as %T", core.ErrNonFinalizable, state, *new(R))
}

func (e *Engine[O, R, S]) entryKey(en *entry[S]) string {
	var sb strings.Builder
	for _, st := range en.genStates {
		sb.WriteString(st.Key())
		sb.WriteByte('\x1f')
	}
	sb.WriteString(core.StateKey(en.evalState))
	return sb.String()
}
