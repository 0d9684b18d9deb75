package app

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat/distuv"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/internal/evals"
)

// Summary carries derived float views of an exact distribution. The exact
// big-integer weights remain the source of truth; these are presentation
// values only.
type Summary[O evals.Integer] struct {
	Denominator *big.Int
	Outcomes    int
	Min         O
	Max         O
	Mean        float64
	Variance    float64
	StdDev      float64
	Median      O
	Q25         O
	Q75         O
}

// Summarize computes moments exactly over rationals before converting to
// float64, so the floats are correctly rounded views rather than
// accumulations of rounding error.
func Summarize[O evals.Integer](d *dist.Die[O]) (Summary[O], error) {
	var s Summary[O]
	if d == nil || d.IsEmpty() {
		return s, fmt.Errorf("%w: cannot summarize an empty distribution", core.ErrInvalidEvaluator)
	}
	denom := d.Denominator()

	mean := new(big.Rat)
	meanSq := new(big.Rat)
	d.Each(func(o O, w *big.Int) {
		p := new(big.Rat).SetFrac(w, denom)
		x := new(big.Rat).SetInt64(int64(o))
		mean.Add(mean, new(big.Rat).Mul(x, p))
		meanSq.Add(meanSq, new(big.Rat).Mul(new(big.Rat).Mul(x, x), p))
	})
	variance := new(big.Rat).Sub(meanSq, new(big.Rat).Mul(mean, mean))

	s.Denominator = denom
	s.Outcomes = d.Len()
	s.Min, _ = d.Min()
	s.Max, _ = d.Max()
	s.Mean, _ = mean.Float64()
	s.Variance, _ = variance.Float64()
	if s.Variance > 0 {
		s.StdDev = math.Sqrt(s.Variance)
	}
	s.Median, _ = d.Quantile(big.NewRat(1, 2))
	s.Q25, _ = d.Quantile(big.NewRat(1, 4))
	s.Q75, _ = d.Quantile(big.NewRat(3, 4))
	return s, nil
}

// NormalApprox returns the normal distribution matching the exact mean and
// standard deviation, a diagnostic for how bell-shaped a result is. It is
// never used in computation.
func NormalApprox[O evals.Integer](d *dist.Die[O]) (distuv.Normal, error) {
	s, err := Summarize(d)
	if err != nil {
		return distuv.Normal{}, err
	}
	if s.StdDev == 0 {
		return distuv.Normal{}, fmt.Errorf("%w: degenerate distribution has no normal approximation",
			core.ErrInvalidEvaluator)
	}
	return distuv.Normal{Mu: s.Mean, Sigma: s.StdDev}, nil
}
