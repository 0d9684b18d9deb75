package app

import (
	"cmp"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/montanaflynn/stats"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/internal/evals"
)

// Sampler draws random outcomes from an exact distribution with a seeded
// generator. Sampling is a cross-check facility, never the primary
// computation mode; the exact sweep is.
type Sampler[O cmp.Ordered] struct {
	die   *dist.Die[O]
	cum   []*big.Int
	denom *big.Int
	rng   *rand.Rand
}

// NewSampler creates a deterministic sampler over the distribution.
func NewSampler[O cmp.Ordered](d *dist.Die[O], seed int64) (*Sampler[O], error) {
	if d == nil || d.IsEmpty() {
		return nil, fmt.Errorf("%w: cannot sample an empty distribution", core.ErrInvalidEvaluator)
	}
	s := &Sampler[O]{die: d, denom: d.Denominator(), rng: rand.New(rand.NewSource(seed))}
	running := new(big.Int)
	d.Each(func(_ O, w *big.Int) {
		running = new(big.Int).Add(running, w)
		s.cum = append(s.cum, running)
	})
	return s, nil
}

// Roll draws one outcome with probability proportional to its weight.
// Cumulative weights are compared as big integers, so denominators beyond
// int64 range sample correctly.
func (s *Sampler[O]) Roll() O {
	r := new(big.Int).Rand(s.rng, s.denom)
	outcomes := s.die.Outcomes()
	lo, hi := 0, len(s.cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.cum[mid].Cmp(r) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return outcomes[lo]
}

// SampleStats summarizes a batch of Monte Carlo rolls.
type SampleStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	P5     float64
	P95    float64
}

// SampleSummary rolls n times and summarizes the empirical results, a
// sanity companion to the exact Summarize.
func SampleSummary[O evals.Integer](s *Sampler[O], n int) (SampleStats, error) {
	if n <= 0 {
		return SampleStats{}, fmt.Errorf("%w: sample size %d", core.ErrInvalidEvaluator, n)
	}
	data := make(stats.Float64Data, n)
	for i := range n {
		data[i] = float64(s.Roll())
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return SampleStats{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return SampleStats{}, err
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return SampleStats{}, err
	}
	p5, err := stats.Percentile(data, 5)
	if err != nil {
		return SampleStats{}, err
	}
	p95, err := stats.Percentile(data, 95)
	if err != nil {
		return SampleStats{}, err
	}
	return SampleStats{N: n, Mean: mean, Median: median, StdDev: sd, P5: p5, P95: p95}, nil
}
