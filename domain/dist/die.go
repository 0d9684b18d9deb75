// Package dist provides the weighted distribution type the evaluation
// engine folds its results into: an outcome -> exact integer weight mapping
// with merge-on-construct semantics and ordered iteration.
package dist

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"godice/domain/core"
)

// Die is an immutable weighted distribution over totally ordered outcomes.
// Outcomes are kept sorted ascending; weights are exact big integers and
// the denominator is their sum. A Die with no outcomes is the empty
// distribution (total weight zero).
type Die[O cmp.Ordered] struct {
	outcomes []O
	weights  []*big.Int
	denom    *big.Int
}

// FromMap builds a Die from an outcome->weight mapping. Zero weights are
// removed; negative weights are rejected.
func FromMap[O cmp.Ordered](m map[O]*big.Int) (*Die[O], error) {
	b := NewBuilder[O]()
	for o, w := range m {
		if err := b.Add(o, w); err != nil {
			return nil, err
		}
	}
	return b.Die(), nil
}

// FromCounts builds a Die from small integer weights.
func FromCounts[O cmp.Ordered](m map[O]int) (*Die[O], error) {
	b := NewBuilder[O]()
	for o, w := range m {
		if err := b.Add(o, big.NewInt(int64(w))); err != nil {
			return nil, err
		}
	}
	return b.Die(), nil
}

// Constant builds a Die concentrated at a single outcome with weight 1.
func Constant[O cmp.Ordered](o O) *Die[O] {
	d, _ := FromCounts(map[O]int{o: 1})
	return d
}

// Uniform builds a Die with weight 1 on each distinct listed outcome.
// Duplicate entries accumulate, so Uniform(1,1,2) weighs 1 twice as much as 2.
func Uniform[O cmp.Ordered](outcomes ...O) (*Die[O], error) {
	b := NewBuilder[O]()
	for _, o := range outcomes {
		if err := b.Add(o, core.One()); err != nil {
			return nil, err
		}
	}
	d := b.Die()
	if d.IsEmpty() {
		return nil, fmt.Errorf("%w: no outcomes", core.ErrInvalidPool)
	}
	return d, nil
}

// Empty returns the empty distribution.
func Empty[O cmp.Ordered]() *Die[O] {
	return &Die[O]{denom: new(big.Int)}
}

// Builder accumulates outcome weights, summing duplicate keys.
type Builder[O cmp.Ordered] struct {
	acc map[O]*big.Int
}

// NewBuilder creates an empty builder.
func NewBuilder[O cmp.Ordered]() *Builder[O] {
	return &Builder[O]{acc: make(map[O]*big.Int)}
}

// Add merges weight w into outcome o. The weight is copied.
func (b *Builder[O]) Add(o O, w *big.Int) error {
	if err := core.CheckWeight(w); err != nil {
		return fmt.Errorf("outcome %v: %w", o, err)
	}
	if cur, ok := b.acc[o]; ok {
		cur.Add(cur, w)
		return nil
	}
	b.acc[o] = new(big.Int).Set(w)
	return nil
}

// Die finalizes the builder into an immutable distribution. Zero-weight
// entries are dropped.
func (b *Builder[O]) Die() *Die[O] {
	outcomes := make([]O, 0, len(b.acc))
	for o, w := range b.acc {
		if w.Sign() != 0 {
			outcomes = append(outcomes, o)
		}
	}
	slices.Sort(outcomes)
	weights := make([]*big.Int, len(outcomes))
	denom := new(big.Int)
	for i, o := range outcomes {
		weights[i] = b.acc[o]
		denom.Add(denom, weights[i])
	}
	return &Die[O]{outcomes: outcomes, weights: weights, denom: denom}
}

// Len returns the number of distinct outcomes with nonzero weight.
func (d *Die[O]) Len() int { return len(d.outcomes) }

// IsEmpty reports whether the distribution carries no weight at all.
func (d *Die[O]) IsEmpty() bool { return len(d.outcomes) == 0 }

// Outcomes returns the outcomes in ascending order. The slice is shared;
// callers must not mutate it.
func (d *Die[O]) Outcomes() []O { return d.outcomes }

// Weight returns the weight at outcome o, zero if absent. The returned
// value is a copy.
func (d *Die[O]) Weight(o O) *big.Int {
	i, ok := slices.BinarySearch(d.outcomes, o)
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(d.weights[i])
}

// Contains reports whether o has nonzero weight.
func (d *Die[O]) Contains(o O) bool {
	_, ok := slices.BinarySearch(d.outcomes, o)
	return ok
}

// Denominator returns the total weight as a copy.
func (d *Die[O]) Denominator() *big.Int { return new(big.Int).Set(d.denom) }

// Probability returns weight(o)/denominator as an exact rational.
// The empty distribution has probability zero everywhere.
func (d *Die[O]) Probability(o O) *big.Rat {
	if d.denom.Sign() == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(d.Weight(o), d.denom)
}

// Each calls fn for every outcome in ascending order with its weight.
// The weight must not be mutated.
func (d *Die[O]) Each(fn func(o O, w *big.Int)) {
	for i, o := range d.outcomes {
		fn(o, d.weights[i])
	}
}

// Min returns the lowest outcome. ok is false for the empty distribution.
func (d *Die[O]) Min() (o O, ok bool) {
	if d.IsEmpty() {
		return o, false
	}
	return d.outcomes[0], true
}

// Max returns the highest outcome. ok is false for the empty distribution.
func (d *Die[O]) Max() (o O, ok bool) {
	if d.IsEmpty() {
		return o, false
	}
	return d.outcomes[len(d.outcomes)-1], true
}

// Scale returns a new Die with every weight multiplied by k.
func (d *Die[O]) Scale(k *big.Int) (*Die[O], error) {
	if err := core.CheckWeight(k); err != nil {
		return nil, err
	}
	b := NewBuilder[O]()
	var failed error
	d.Each(func(o O, w *big.Int) {
		if err := b.Add(o, new(big.Int).Mul(w, k)); err != nil && failed == nil {
			failed = err
		}
	})
	if failed != nil {
		return nil, failed
	}
	return b.Die(), nil
}

// Equal reports whether both distributions have identical outcomes and
// weights (not just identical probabilities).
func (d *Die[O]) Equal(other *Die[O]) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, o := range d.outcomes {
		if o != other.outcomes[i] || d.weights[i].Cmp(other.weights[i]) != 0 {
			return false
		}
	}
	return true
}

// Hash returns the structural hash of the distribution, used for generator
// descriptions and cache keys.
func (d *Die[O]) Hash() core.Hash {
	var data strings.Builder
	d.Each(func(o O, w *big.Int) {
		fmt.Fprintf(&data, "%v:%s\x1f", o, w.String())
	})
	return core.NewHash([]byte(data.String()))
}

// Quantile returns the smallest outcome whose cumulative probability
// reaches p (0 < p <= 1). ok is false for the empty distribution.
func (d *Die[O]) Quantile(p *big.Rat) (o O, ok bool) {
	if d.IsEmpty() || p.Sign() <= 0 {
		return o, false
	}
	target := new(big.Rat).Mul(p, new(big.Rat).SetInt(d.denom))
	cum := new(big.Int)
	for i, out := range d.outcomes {
		cum.Add(cum, d.weights[i])
		if new(big.Rat).SetInt(cum).Cmp(target) >= 0 {
			return out, true
		}
	}
	return d.outcomes[len(d.outcomes)-1], true
}

// String renders a compact outcome:weight table, mostly for logs and tests.
func (d *Die[O]) String() string {
	if d.IsEmpty() {
		return "Die{}"
	}
	var sb strings.Builder
	sb.WriteString("Die{")
	d.Each(func(o O, w *big.Int) {
		fmt.Fprintf(&sb, "%v:%s ", o, w.String())
	})
	out := strings.TrimSuffix(sb.String(), " ")
	return out + "}"
}
