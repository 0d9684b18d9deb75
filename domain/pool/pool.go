package pool

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"godice/domain/core"
	"godice/domain/dist"
)

// Pool draws every die in a fixed collection of weighted dice, optionally
// filtered through a sorted-position keep tuple: one integer multiplier per
// sorted slot (ascending). Each element drawn at an outcome consumes the
// next slot from the end matching the sweep direction, and the count
// reported to the evaluator is the sum of consumed multipliers. Identical
// dice are grouped so the local count distribution at an outcome is a
// binomial over the group rather than an enumeration of individual dice.
type Pool[O cmp.Ordered] struct {
	groups   []diceGroup[O]
	keep     []int // nil keeps everything with multiplier 1; else len == size
	size     int
	outcomes []O
	denom    *big.Int
	hash     core.GeneratorHash
}

type diceGroup[O cmp.Ordered] struct {
	die   *dist.Die[O]
	count int
}

// poolState tracks how many dice remain undrawn per group and which keep
// slots are still open.
type poolState struct {
	remaining []int
	keep      []int // nil when the pool has no keep tuple
	hasKeep   bool
}

func (s *poolState) Key() string {
	var sb strings.Builder
	sb.WriteString("pool[")
	for i, r := range s.remaining {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", r)
	}
	if s.hasKeep {
		fmt.Fprintf(&sb, "|%v", s.keep)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (s *poolState) Exhausted() bool {
	for _, r := range s.remaining {
		if r != 0 {
			return false
		}
	}
	return true
}

// NewPool builds a pool from elementary weighted dice. A pool with no dice
// is valid and produces nothing. Nil or empty dice are a fatal
// configuration error.
func NewPool[O cmp.Ordered](dice ...*dist.Die[O]) (*Pool[O], error) {
	byHash := make(map[core.Hash]*diceGroup[O])
	order := make([]core.Hash, 0, len(dice))
	for i, d := range dice {
		if d == nil || d.IsEmpty() {
			return nil, core.NewPoolError(fmt.Sprintf("die %d is empty", i))
		}
		h := d.Hash()
		if g, ok := byHash[h]; ok {
			g.count++
			continue
		}
		byHash[h] = &diceGroup[O]{die: d, count: 1}
		order = append(order, h)
	}
	// Canonical group order so structurally equal pools hash identically.
	slices.SortFunc(order, func(a, b core.Hash) int {
		return strings.Compare(a.String(), b.String())
	})

	p := &Pool[O]{size: len(dice)}
	universe := make(map[O]struct{})
	p.denom = core.One()
	for _, h := range order {
		g := byHash[h]
		p.groups = append(p.groups, *g)
		for _, o := range g.die.Outcomes() {
			universe[o] = struct{}{}
		}
		p.denom.Mul(p.denom, core.Pow(g.die.Denominator(), g.count))
	}
	for o := range universe {
		p.outcomes = append(p.outcomes, o)
	}
	slices.Sort(p.outcomes)
	p.hash = p.computeHash()
	return p, nil
}

// Keep returns a copy of the pool with a sorted-position keep tuple. The
// tuple is ordered by ascending sorted position and must have exactly one
// multiplier per die.
func (p *Pool[O]) Keep(multipliers ...int) (*Pool[O], error) {
	if len(multipliers) != p.size {
		return nil, core.NewPoolError(fmt.Sprintf(
			"keep tuple has %d entries for %d dice", len(multipliers), p.size))
	}
	q := *p
	q.keep = slices.Clone(multipliers)
	q.hash = q.computeHash()
	return &q, nil
}

// KeepHighest keeps the n highest dice and drops the rest.
func (p *Pool[O]) KeepHighest(n int) (*Pool[O], error) {
	return p.keepRange(p.size-n, p.size, n)
}

// KeepLowest keeps the n lowest dice and drops the rest.
func (p *Pool[O]) KeepLowest(n int) (*Pool[O], error) {
	return p.keepRange(0, n, n)
}

// DropLowest drops the n lowest dice and keeps the rest.
func (p *Pool[O]) DropLowest(n int) (*Pool[O], error) {
	return p.keepRange(n, p.size, n)
}

// DropHighest drops the n highest dice and keeps the rest.
func (p *Pool[O]) DropHighest(n int) (*Pool[O], error) {
	return p.keepRange(0, p.size-n, n)
}

func (p *Pool[O]) keepRange(lo, hi, n int) (*Pool[O], error) {
	if n < 0 || n > p.size {
		return nil, core.NewPoolError(fmt.Sprintf(
			"keep/drop count %d out of range for %d dice", n, p.size))
	}
	keep := make([]int, p.size)
	for i := lo; i < hi; i++ {
		keep[i] = 1
	}
	return p.Keep(keep...)
}

// Outcomes returns the sorted union of every die's outcomes.
func (p *Pool[O]) Outcomes() []O { return p.outcomes }

// Size is the number of dice in the pool before keep/drop filtering.
func (p *Pool[O]) Size() int { return p.size }

// Denominator is the product of every die's total weight.
func (p *Pool[O]) Denominator() *big.Int { return new(big.Int).Set(p.denom) }

// PreferredOrder: pools resolve in either direction; the keep tuple is
// consumed from whichever end matches the sweep.
func (p *Pool[O]) PreferredOrder() core.Order { return core.OrderAny }

// Hash returns the structural description of the pool.
func (p *Pool[O]) Hash() core.GeneratorHash { return p.hash }

func (p *Pool[O]) computeHash() core.GeneratorHash {
	parts := make([]string, 0, len(p.groups)+1)
	for _, g := range p.groups {
		parts = append(parts, fmt.Sprintf("%sx%d", g.die.Hash(), g.count))
	}
	if p.keep != nil {
		parts = append(parts, fmt.Sprintf("keep:%v", p.keep))
	}
	return core.ComputeGeneratorHash("pool", parts...)
}

// InitialState returns the nothing-drawn-yet state.
func (p *Pool[O]) InitialState() State {
	remaining := make([]int, len(p.groups))
	for i, g := range p.groups {
		remaining[i] = g.count
	}
	return &poolState{remaining: remaining, keep: slices.Clone(p.keep), hasKeep: p.keep != nil}
}

// groupBranch is one way a single group can resolve at an outcome.
type groupBranch struct {
	drawn  int
	weight *big.Int
}

// Pop enumerates the pool's local count distribution at outcome. For each
// group of r identical dice with weight w at the outcome, k of them show
// it with local weight C(r,k)·w^k; the remaining r-k implicitly show
// outcomes later in the sweep. When the outcome is the last of a die's
// outcomes in the sweep direction, the whole group is forced out at once.
func (p *Pool[O]) Pop(st State, outcome O, order core.Order) ([]Pop, error) {
	ps, ok := st.(*poolState)
	if !ok || len(ps.remaining) != len(p.groups) {
		return nil, core.NewPoolError("state does not belong to this pool")
	}

	branches := make([][]groupBranch, len(p.groups))
	for i, g := range p.groups {
		r := ps.remaining[i]
		w := g.die.Weight(outcome)
		switch {
		case r == 0 || w.Sign() == 0:
			branches[i] = []groupBranch{{drawn: 0, weight: core.One()}}
		case forcedAtOutcome(g.die.Outcomes(), outcome, order):
			branches[i] = []groupBranch{{drawn: r, weight: core.Pow(w, r)}}
		default:
			bs := make([]groupBranch, 0, r+1)
			for k := 0; k <= r; k++ {
				lw := core.Binomial(r, k)
				lw.Mul(lw, core.Pow(w, k))
				bs = append(bs, groupBranch{drawn: k, weight: lw})
			}
			branches[i] = bs
		}
	}

	var pops []Pop
	idx := make([]int, len(branches))
	for {
		total := 0
		weight := core.One()
		for i, j := range idx {
			total += branches[i][j].drawn
			weight.Mul(weight, branches[i][j].weight)
		}

		next := &poolState{remaining: slices.Clone(ps.remaining), hasKeep: ps.hasKeep}
		for i, j := range idx {
			next.remaining[i] -= branches[i][j].drawn
		}
		count := total
		if ps.hasKeep {
			var consumed []int
			if order == core.OrderDescending {
				cut := len(ps.keep) - total
				consumed = ps.keep[cut:]
				next.keep = slices.Clone(ps.keep[:cut])
			} else {
				consumed = ps.keep[:total]
				next.keep = slices.Clone(ps.keep[total:])
			}
			count = 0
			for _, m := range consumed {
				count += m
			}
		}
		pops = append(pops, Pop{State: next, Count: count, Weight: weight})

		// Odometer over the per-group branch choices.
		i := 0
		for ; i < len(idx); i++ {
			idx[i]++
			if idx[i] < len(branches[i]) {
				break
			}
			idx[i] = 0
		}
		if i == len(idx) {
			break
		}
	}
	return pops, nil
}
