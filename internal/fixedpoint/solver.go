// Package fixedpoint resolves self-referential ("roll again") definitions.
// One application of the step function is treated as a transition operator
// on a finite, evaluator-author-guaranteed state space; the absorption
// distribution is the exact fixed point of x = Qx + R over rationals,
// never an unbounded recursion. This handles processes that terminate only
// almost surely, which no finite unrolling depth can represent exactly.
package fixedpoint

import (
	"cmp"
	"fmt"
	"math/big"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/internal"
)

// Step maps a state to the distribution over states after one application
// of the self-referential definition. A state whose step returns all of
// its weight to itself is absorbing.
type Step[S cmp.Ordered] func(state S) (*dist.Die[S], error)

// Options bounds the solver. The zero value applies the defaults.
type Options struct {
	// MaxStates caps the discovered state arena (default 4096). The
	// finiteness of the state space is the caller's contract; blowing
	// this cap fails loudly with ErrStateSpaceExceeded.
	MaxStates int
	// Logger receives solver diagnostics.
	Logger *internal.Logger
}

const defaultMaxStates = 4096

// Solve computes the exact distribution over absorbing states reached from
// the start distribution. Transient states that cannot reach absorption
// make the process non-terminating and yield ErrNoAbsorption.
func Solve[S cmp.Ordered](start *dist.Die[S], step Step[S], opts Options) (*dist.Die[S], error) {
	a, err := discover(start, step, opts)
	if err != nil {
		return nil, err
	}
	if len(a.transient) == 0 {
		// Everything absorbs immediately.
		return ratDie(a.startMass)
	}

	// Solve y·(I-Q) = π0 for the expected transient occupancy y, then the
	// absorbed mass at state a is π0[a] + Σ_t y[t]·R[t][a].
	n := len(a.transient)
	m := make([][]*big.Rat, n)
	rhs := make([]*big.Rat, n)
	for i := range n {
		m[i] = make([]*big.Rat, n)
		for j := range n {
			// (I-Q) transposed: row i is the incoming flow of transient i.
			q := a.trans[a.transient[j]][a.transient[i]]
			if q == nil {
				q = new(big.Rat)
			}
			m[i][j] = new(big.Rat).Neg(q)
			if i == j {
				m[i][j].Add(m[i][j], ratOne())
			}
		}
		if w, ok := a.startMass[a.transient[i]]; ok {
			rhs[i] = new(big.Rat).Set(w)
		} else {
			rhs[i] = new(big.Rat)
		}
	}
	y, err := solveLinear(m, rhs)
	if err != nil {
		return nil, err
	}

	absorbed := make(map[S]*big.Rat)
	for _, s := range a.absorbing {
		absorbed[s] = new(big.Rat)
		if w, ok := a.startMass[s]; ok {
			absorbed[s].Set(w)
		}
	}
	for i, t := range a.transient {
		for dst, q := range a.trans[t] {
			if _, isAbs := absorbed[dst]; !isAbs {
				continue
			}
			contrib := new(big.Rat).Mul(y[i], q)
			absorbed[dst].Add(absorbed[dst], contrib)
		}
	}
	return ratDie(absorbed)
}

// Unroll applies the step function at most depth times and requires every
// branch to absorb within that bound; leftover transient mass is
// ErrIterationLimit. Prefer Solve for almost-surely-terminating processes.
func Unroll[S cmp.Ordered](start *dist.Die[S], step Step[S], depth int, opts Options) (*dist.Die[S], error) {
	if opts.MaxStates <= 0 {
		opts.MaxStates = defaultMaxStates
	}
	mass := make(map[S]*big.Rat)
	start.Each(func(s S, w *big.Int) {
		mass[s] = new(big.Rat).SetFrac(w, start.Denominator())
	})

	absorbing := make(map[S]bool)
	for range depth + 1 {
		next := make(map[S]*big.Rat)
		transientLeft := false
		for s, w := range mass {
			t, abs, err := stepOnce(s, step, absorbing)
			if err != nil {
				return nil, err
			}
			if abs {
				addRat(next, s, w)
				continue
			}
			transientLeft = true
			t.Each(func(dst S, dw *big.Int) {
				p := new(big.Rat).SetFrac(dw, t.Denominator())
				addRat(next, dst, p.Mul(p, w))
			})
			if len(next) > opts.MaxStates {
				return nil, fmt.Errorf("%w: %d states", core.ErrStateSpaceExceeded, len(next))
			}
		}
		mass = next
		if !transientLeft {
			return ratDie(mass)
		}
	}
	return nil, fmt.Errorf("%w: transient mass after %d steps", core.ErrIterationLimit, depth)
}

// arena is the discovered finite state space.
type arena[S cmp.Ordered] struct {
	transient []S
	absorbing []S
	trans     map[S]map[S]*big.Rat // transient -> dst -> probability
	startMass map[S]*big.Rat
}

func discover[S cmp.Ordered](start *dist.Die[S], step Step[S], opts Options) (*arena[S], error) {
	if start == nil || start.IsEmpty() {
		return nil, fmt.Errorf("%w: empty start distribution", core.ErrInvalidEvaluator)
	}
	maxStates := opts.MaxStates
	if maxStates <= 0 {
		maxStates = defaultMaxStates
	}
	log := opts.Logger
	if log == nil {
		log = internal.DefaultLogger
	}

	a := &arena[S]{
		trans:     make(map[S]map[S]*big.Rat),
		startMass: make(map[S]*big.Rat),
	}
	seen := make(map[S]bool)
	queue := make([]S, 0, start.Len())
	start.Each(func(s S, w *big.Int) {
		a.startMass[s] = new(big.Rat).SetFrac(w, start.Denominator())
		if !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	})

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		t, err := step(s)
		if err != nil {
			return nil, err
		}
		if t == nil || t.IsEmpty() {
			return nil, fmt.Errorf("%w: step of %v returned no states", core.ErrInvalidEvaluator, s)
		}
		if isAbsorbing(s, t) {
			a.absorbing = append(a.absorbing, s)
			continue
		}
		a.transient = append(a.transient, s)
		a.trans[s] = make(map[S]*big.Rat)
		t.Each(func(dst S, w *big.Int) {
			a.trans[s][dst] = new(big.Rat).SetFrac(w, t.Denominator())
			if !seen[dst] {
				seen[dst] = true
				queue = append(queue, dst)
			}
		})
		if len(seen) > maxStates {
			return nil, fmt.Errorf("%w: more than %d states", core.ErrStateSpaceExceeded, maxStates)
		}
	}
	log.Debug("fixed point: %d transient, %d absorbing states",
		len(a.transient), len(a.absorbing))
	return a, nil
}

func stepOnce[S cmp.Ordered](s S, step Step[S], absorbing map[S]bool) (*dist.Die[S], bool, error) {
	if absorbing[s] {
		return nil, true, nil
	}
	t, err := step(s)
	if err != nil {
		return nil, false, err
	}
	if t == nil || t.IsEmpty() {
		return nil, false, fmt.Errorf("%w: step of %v returned no states", core.ErrInvalidEvaluator, s)
	}
	if isAbsorbing(s, t) {
		absorbing[s] = true
		return nil, true, nil
	}
	return t, false, nil
}

// isAbsorbing reports whether the transition returns 100% of the weight to
// the state itself.
func isAbsorbing[S cmp.Ordered](s S, t *dist.Die[S]) bool {
	return t.Len() == 1 && t.Outcomes()[0] == s
}

// solveLinear performs exact Gaussian elimination with partial pivoting
// over rationals. A singular system means some transient state never
// reaches absorption.
func solveLinear(m [][]*big.Rat, rhs []*big.Rat) ([]*big.Rat, error) {
	n := len(m)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, core.ErrNoAbsorption
		}
		m[col], m[pivot] = m[pivot], m[col]
		rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		for row := col + 1; row < n; row++ {
			if m[row][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Quo(m[row][col], m[col][col])
			for k := col; k < n; k++ {
				m[row][k].Sub(m[row][k], new(big.Rat).Mul(factor, m[col][k]))
			}
			rhs[row].Sub(rhs[row], new(big.Rat).Mul(factor, rhs[col]))
		}
	}
	x := make([]*big.Rat, n)
	for row := n - 1; row >= 0; row-- {
		acc := new(big.Rat).Set(rhs[row])
		for k := row + 1; k < n; k++ {
			acc.Sub(acc, new(big.Rat).Mul(m[row][k], x[k]))
		}
		x[row] = acc.Quo(acc, m[row][row])
	}
	return x, nil
}

func addRat[S cmp.Ordered](m map[S]*big.Rat, s S, w *big.Rat) {
	if cur, ok := m[s]; ok {
		cur.Add(cur, w)
		return
	}
	m[s] = new(big.Rat).Set(w)
}

// ratDie folds rational probabilities into an integer-weight distribution
// on their least common denominator.
func ratDie[S cmp.Ordered](mass map[S]*big.Rat) (*dist.Die[S], error) {
	lcm := big.NewInt(1)
	for _, w := range mass {
		if w.Sign() != 0 {
			lcm = core.Lcm(lcm, w.Denom())
		}
	}
	b := dist.NewBuilder[S]()
	for s, w := range mass {
		if w.Sign() == 0 {
			continue
		}
		weight := new(big.Int).Div(lcm, w.Denom())
		weight.Mul(weight, w.Num())
		if err := b.Add(s, weight); err != nil {
			return nil, err
		}
	}
	return b.Die(), nil
}

func ratOne() *big.Rat { return new(big.Rat).SetInt64(1) }
