package fixedpoint

import (
	"errors"
	"math/big"
	"testing"

	"godice/domain/core"
	"godice/domain/dist"
)

// rerollOnes is the classic self-referential die: a 1 is rolled again,
// everything else stands.
func rerollOnes(s int) (*dist.Die[int], error) {
	if s == 1 {
		return dist.Uniform(1, 2, 3, 4, 5, 6)
	}
	return dist.Constant(s), nil
}

func TestSolveRerollOnes(t *testing.T) {
	start, err := dist.Uniform(1, 2, 3, 4, 5, 6)
	if err != nil {
		t.Fatal(err)
	}
	result, err := Solve(start, rerollOnes, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// Rerolling 1s forever is uniform over 2..6.
	if got := result.Denominator(); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("denominator = %s, want 5", got)
	}
	if result.Contains(1) {
		t.Error("1 must carry no mass")
	}
	for k := 2; k <= 6; k++ {
		if got := result.Weight(k); got.Cmp(big.NewInt(1)) != 0 {
			t.Errorf("weight(%d) = %s, want 1", k, got)
		}
	}
}

func TestSolveAllAbsorbing(t *testing.T) {
	start, err := dist.FromCounts(map[int]int{2: 1, 3: 3})
	if err != nil {
		t.Fatal(err)
	}
	result, err := Solve(start, rerollOnes, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Equal(start) {
		t.Fatalf("result = %s, want the start distribution unchanged", result)
	}
}

func TestSolveGamblersRuin(t *testing.T) {
	// Fair +1/-1 walk on 0..3 with absorbing ends, starting at 1: the
	// ruin probability is 2/3.
	step := func(s int) (*dist.Die[int], error) {
		if s == 0 || s == 3 {
			return dist.Constant(s), nil
		}
		return dist.Uniform(s-1, s+1)
	}
	result, err := Solve(dist.Constant(1), step, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := result.Probability(0); got.Cmp(big.NewRat(2, 3)) != 0 {
		t.Errorf("P(ruin) = %s, want 2/3", got)
	}
	if got := result.Probability(3); got.Cmp(big.NewRat(1, 3)) != 0 {
		t.Errorf("P(win) = %s, want 1/3", got)
	}
}

func TestSolveNoAbsorption(t *testing.T) {
	step := func(s int) (*dist.Die[int], error) {
		return dist.Constant(3 - s), nil // 1 <-> 2 forever
	}
	if _, err := Solve(dist.Constant(1), step, Options{}); !errors.Is(err, core.ErrNoAbsorption) {
		t.Fatalf("err = %v, want ErrNoAbsorption", err)
	}
}

func TestSolveStateSpaceCap(t *testing.T) {
	step := func(s int) (*dist.Die[int], error) {
		return dist.Uniform(2*s, 2*s+1)
	}
	_, err := Solve(dist.Constant(1), step, Options{MaxStates: 8})
	if !errors.Is(err, core.ErrStateSpaceExceeded) {
		t.Fatalf("err = %v, want ErrStateSpaceExceeded", err)
	}
}

func TestSolveRejectsEmptyStart(t *testing.T) {
	if _, err := Solve(dist.Empty[int](), rerollOnes, Options{}); !errors.Is(err, core.ErrInvalidEvaluator) {
		t.Fatalf("err = %v, want ErrInvalidEvaluator", err)
	}
}

func TestUnrollTerminatingCountdown(t *testing.T) {
	step := func(s int) (*dist.Die[int], error) {
		if s <= 0 {
			return dist.Constant(0), nil
		}
		return dist.Constant(s - 1), nil
	}
	result, err := Unroll(dist.Constant(3), step, 3, Options{})
	if err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if got := result.Weight(0); got.Cmp(big.NewInt(1)) != 0 || result.Len() != 1 {
		t.Fatalf("result = %s, want all mass on 0", result)
	}
}

func TestUnrollDepthExceeded(t *testing.T) {
	start, err := dist.Uniform(1, 2, 3, 4, 5, 6)
	if err != nil {
		t.Fatal(err)
	}
	// Geometric reroll never fully absorbs in finite depth.
	if _, err := Unroll(start, rerollOnes, 4, Options{}); !errors.Is(err, core.ErrIterationLimit) {
		t.Fatalf("err = %v, want ErrIterationLimit", err)
	}
}

func TestUnrollMatchesSolveWhenBounded(t *testing.T) {
	// A two-round process absorbs exactly, so both resolutions agree.
	step := func(s int) (*dist.Die[int], error) {
		switch s {
		case 10:
			return dist.Uniform(20, 30)
		case 20:
			return dist.Uniform(40, 50)
		default:
			return dist.Constant(s), nil
		}
	}
	solved, err := Solve(dist.Constant(10), step, Options{})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	unrolled, err := Unroll(dist.Constant(10), step, 2, Options{})
	if err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if !solved.Equal(unrolled) {
		t.Fatalf("Solve %s != Unroll %s", solved, unrolled)
	}
}
