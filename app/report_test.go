package app

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"godice/domain/core"
	"godice/domain/dist"
	"godice/internal/evals"
	"godice/internal/testkit"
)

func TestSummarizeSingleD6(t *testing.T) {
	s, err := Summarize(testkit.D6())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Mean != 3.5 {
		t.Errorf("Mean = %v, want 3.5", s.Mean)
	}
	wantVar := 35.0 / 12.0
	if math.Abs(s.Variance-wantVar) > 1e-12 {
		t.Errorf("Variance = %v, want %v", s.Variance, wantVar)
	}
	if s.Min != 1 || s.Max != 6 || s.Outcomes != 6 {
		t.Errorf("Min/Max/Outcomes = %d/%d/%d, want 1/6/6", s.Min, s.Max, s.Outcomes)
	}
	if s.Denominator.Cmp(big.NewInt(6)) != 0 {
		t.Errorf("Denominator = %s, want 6", s.Denominator)
	}
}

func TestSummarizeTwoD6Sum(t *testing.T) {
	sum, err := Evaluate[int, int](evals.NewSum[int](), Options{}, testkit.PoolOf(2, testkit.D6()))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	s, err := Summarize(sum)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Mean != 7 {
		t.Errorf("Mean = %v, want 7", s.Mean)
	}
	wantVar := 35.0 / 6.0
	if math.Abs(s.Variance-wantVar) > 1e-12 {
		t.Errorf("Variance = %v, want %v", s.Variance, wantVar)
	}
	if s.Median != 7 {
		t.Errorf("Median = %d, want 7", s.Median)
	}
	if s.Q25 != 5 || s.Q75 != 9 {
		t.Errorf("Q25/Q75 = %d/%d, want 5/9", s.Q25, s.Q75)
	}
	if s.StdDev != math.Sqrt(wantVar) {
		t.Errorf("StdDev = %v, want %v", s.StdDev, math.Sqrt(wantVar))
	}
}

func TestSummarizeEmptyFails(t *testing.T) {
	if _, err := Summarize(dist.Empty[int]()); !errors.Is(err, core.ErrInvalidEvaluator) {
		t.Fatalf("err = %v, want ErrInvalidEvaluator", err)
	}
	if _, err := Summarize[int](nil); !errors.Is(err, core.ErrInvalidEvaluator) {
		t.Fatalf("nil err = %v, want ErrInvalidEvaluator", err)
	}
}

func TestNormalApprox(t *testing.T) {
	n, err := NormalApprox(testkit.D6())
	if err != nil {
		t.Fatalf("NormalApprox: %v", err)
	}
	if n.Mu != 3.5 {
		t.Errorf("Mu = %v, want 3.5", n.Mu)
	}
	if math.Abs(n.Sigma-math.Sqrt(35.0/12.0)) > 1e-12 {
		t.Errorf("Sigma = %v, want sqrt(35/12)", n.Sigma)
	}
}

func TestNormalApproxDegenerate(t *testing.T) {
	if _, err := NormalApprox(dist.Constant(4)); !errors.Is(err, core.ErrInvalidEvaluator) {
		t.Fatalf("err = %v, want ErrInvalidEvaluator", err)
	}
}
