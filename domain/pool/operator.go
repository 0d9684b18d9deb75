package pool

import (
	"cmp"
	"fmt"
	"math/big"

	"godice/domain/core"
)

// Op identifies a multiset-algebra operation over two generators' counts.
type Op string

const (
	// OpAdd sums the two counts (multiset additive union).
	OpAdd Op = "add"
	// OpUnion takes the larger count.
	OpUnion Op = "union"
	// OpIntersect takes the smaller count.
	OpIntersect Op = "intersect"
	// OpDifference subtracts the right count from the left.
	OpDifference Op = "difference"
	// OpSymmetricDifference takes the absolute difference.
	OpSymmetricDifference Op = "symmetric_difference"
)

// NegativePolicy decides what happens when an operation yields a negative
// count. The historical semantics are unsettled, so the policy is explicit
// configuration rather than a fixed rule.
type NegativePolicy int

const (
	// ClampNegative clamps negative results to zero (the default).
	ClampNegative NegativePolicy = iota
	// KeepNegative passes negative counts through to the evaluator.
	KeepNegative
	// RejectNegative treats a negative result as a fatal configuration
	// error (ErrNegativeCount).
	RejectNegative
)

func (p NegativePolicy) String() string {
	switch p {
	case KeepNegative:
		return "keep"
	case RejectNegative:
		return "reject"
	default:
		return "clamp"
	}
}

// CountFunc combines per-outcome counts from two generators.
type CountFunc func(left, right int) int

func opFunc(op Op) (CountFunc, error) {
	switch op {
	case OpAdd:
		return func(l, r int) int { return l + r }, nil
	case OpUnion:
		return func(l, r int) int { return max(l, r) }, nil
	case OpIntersect:
		return func(l, r int) int { return min(l, r) }, nil
	case OpDifference:
		return func(l, r int) int { return l - r }, nil
	case OpSymmetricDifference:
		return func(l, r int) int {
			if l > r {
				return l - r
			}
			return r - l
		}, nil
	default:
		return nil, core.NewOperatorError(fmt.Sprintf("unknown op %q", op))
	}
}

// Operator combines the per-outcome counts of two generators through a
// count function. The children draw independently, so local weights
// multiply. Counts below zero follow the configured NegativePolicy.
type Operator[O cmp.Ordered] struct {
	name     string
	fn       CountFunc
	policy   NegativePolicy
	left     Generator[O]
	right    Generator[O]
	outcomes []O
	order    core.Order
	denom    *big.Int
	hash     core.GeneratorHash
}

// opState pairs the children's residual states.
type opState struct {
	left  State
	right State
}

func (s *opState) Key() string {
	return "op(" + s.left.Key() + "," + s.right.Key() + ")"
}

func (s *opState) Exhausted() bool {
	return s.left.Exhausted() && s.right.Exhausted()
}

// NewOperator combines two generators with a named built-in operation.
func NewOperator[O cmp.Ordered](op Op, left, right Generator[O], policy NegativePolicy) (*Operator[O], error) {
	fn, err := opFunc(op)
	if err != nil {
		return nil, err
	}
	return newOperator(string(op), fn, left, right, policy)
}

// NewCustomOperator combines two generators with a caller-supplied count
// function, under an explicit negative-count policy.
func NewCustomOperator[O cmp.Ordered](name string, fn CountFunc, left, right Generator[O], policy NegativePolicy) (*Operator[O], error) {
	if fn == nil {
		return nil, core.NewOperatorError("nil count function")
	}
	return newOperator("custom:"+name, fn, left, right, policy)
}

func newOperator[O cmp.Ordered](name string, fn CountFunc, left, right Generator[O], policy NegativePolicy) (*Operator[O], error) {
	if left == nil || right == nil {
		return nil, core.NewOperatorError("nil child generator")
	}
	order, ok := left.PreferredOrder().Merge(right.PreferredOrder())
	if !ok {
		return nil, core.NewOperatorError("children demand opposite orders")
	}
	o := &Operator[O]{
		name:   name,
		fn:     fn,
		policy: policy,
		left:   left,
		right:  right,
		order:  order,
		denom:  new(big.Int).Mul(left.Denominator(), right.Denominator()),
	}
	o.outcomes = mergeOutcomes(left.Outcomes(), right.Outcomes())
	o.hash = core.ComputeGeneratorHash("operator", name,
		policy.String(), left.Hash().String(), right.Hash().String())
	return o, nil
}

func mergeOutcomes[O cmp.Ordered](a, b []O) []O {
	out := make([]O, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Outcomes returns the sorted union of the children's outcomes.
func (o *Operator[O]) Outcomes() []O { return o.outcomes }

// Size is not statically known for algebraic combinations.
func (o *Operator[O]) Size() int { return -1 }

// Denominator is the product of the children's denominators.
func (o *Operator[O]) Denominator() *big.Int { return new(big.Int).Set(o.denom) }

// PreferredOrder is the merged preference of the children.
func (o *Operator[O]) PreferredOrder() core.Order { return o.order }

// Hash returns the structural description of the combination.
func (o *Operator[O]) Hash() core.GeneratorHash { return o.hash }

// InitialState pairs the children's initial states.
func (o *Operator[O]) InitialState() State {
	return &opState{left: o.left.InitialState(), right: o.right.InitialState()}
}

// Pop crosses the children's local distributions and combines counts.
func (o *Operator[O]) Pop(st State, outcome O, order core.Order) ([]Pop, error) {
	os, ok := st.(*opState)
	if !ok {
		return nil, core.NewOperatorError("state does not belong to this operator")
	}
	lefts, err := o.left.Pop(os.left, outcome, order)
	if err != nil {
		return nil, err
	}
	rights, err := o.right.Pop(os.right, outcome, order)
	if err != nil {
		return nil, err
	}
	pops := make([]Pop, 0, len(lefts)*len(rights))
	for _, l := range lefts {
		for _, r := range rights {
			count := o.fn(l.Count, r.Count)
			if count < 0 {
				switch o.policy {
				case KeepNegative:
					// pass through
				case RejectNegative:
					return nil, fmt.Errorf("%w: op %s yielded %d at outcome %v",
						core.ErrNegativeCount, o.name, count, outcome)
				default:
					count = 0
				}
			}
			pops = append(pops, Pop{
				State:  &opState{left: l.State, right: r.State},
				Count:  count,
				Weight: new(big.Int).Mul(l.Weight, r.Weight),
			})
		}
	}
	return pops, nil
}
