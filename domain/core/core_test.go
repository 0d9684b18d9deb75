package core

import (
	"errors"
	"math/big"
	"testing"
)

func TestOrderMerge(t *testing.T) {
	tests := []struct {
		a, b   Order
		want   Order
		agreed bool
	}{
		{OrderAny, OrderAny, OrderAny, true},
		{OrderAny, OrderAscending, OrderAscending, true},
		{OrderDescending, OrderAny, OrderDescending, true},
		{OrderAscending, OrderAscending, OrderAscending, true},
		{OrderAscending, OrderDescending, OrderAny, false},
	}
	for _, tt := range tests {
		got, ok := tt.a.Merge(tt.b)
		if got != tt.want || ok != tt.agreed {
			t.Errorf("%s.Merge(%s) = %s,%v, want %s,%v", tt.a, tt.b, got, ok, tt.want, tt.agreed)
		}
	}
}

func TestOrderReversed(t *testing.T) {
	if OrderAscending.Reversed() != OrderDescending {
		t.Error("ascending must reverse to descending")
	}
	if OrderDescending.Reversed() != OrderAscending {
		t.Error("descending must reverse to ascending")
	}
	if OrderAny.Reversed() != OrderAny {
		t.Error("any must reverse to itself")
	}
}

func TestBinomial(t *testing.T) {
	tests := []struct {
		n, k int
		want int64
	}{
		{0, 0, 1},
		{4, 0, 1},
		{4, 2, 6},
		{10, 3, 120},
		{52, 5, 2598960},
	}
	for _, tt := range tests {
		if got := Binomial(tt.n, tt.k); got.Cmp(big.NewInt(tt.want)) != 0 {
			t.Errorf("Binomial(%d,%d) = %s, want %d", tt.n, tt.k, got, tt.want)
		}
	}
}

func TestPow(t *testing.T) {
	if got := Pow(big.NewInt(6), 3); got.Cmp(big.NewInt(216)) != 0 {
		t.Errorf("Pow(6,3) = %s, want 216", got)
	}
	if got := Pow(big.NewInt(7), 0); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("Pow(7,0) = %s, want 1", got)
	}
}

func TestLcm(t *testing.T) {
	if got := Lcm(big.NewInt(4), big.NewInt(6)); got.Cmp(big.NewInt(12)) != 0 {
		t.Errorf("Lcm(4,6) = %s, want 12", got)
	}
	if got := Lcm(big.NewInt(1), big.NewInt(9)); got.Cmp(big.NewInt(9)) != 0 {
		t.Errorf("Lcm(1,9) = %s, want 9", got)
	}
}

func TestCheckWeight(t *testing.T) {
	if err := CheckWeight(big.NewInt(0)); err != nil {
		t.Errorf("zero weight rejected: %v", err)
	}
	if err := CheckWeight(big.NewInt(-3)); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("err = %v, want ErrNegativeWeight", err)
	}
}

func TestStateKeyIncludesType(t *testing.T) {
	type a struct{ X int }
	type b struct{ X int }
	if StateKey(a{1}) == StateKey(b{1}) {
		t.Error("identically shaped states of different types must not collide")
	}
	if StateKey(a{1}) != StateKey(a{1}) {
		t.Error("equal states must key equally")
	}
}

func TestComputeGeneratorHashStable(t *testing.T) {
	h1 := ComputeGeneratorHash("pool", "a", "b")
	h2 := ComputeGeneratorHash("pool", "a", "b")
	h3 := ComputeGeneratorHash("pool", "ab")
	if h1 != h2 {
		t.Error("equal descriptions must hash equal")
	}
	if h1 == h3 {
		t.Error("part boundaries must be part of the hash")
	}
}

func TestComputePopKeyDistinguishesOrder(t *testing.T) {
	g := ComputeGeneratorHash("pool", "x")
	up := ComputePopKey(g, "st", 3, OrderAscending)
	down := ComputePopKey(g, "st", 3, OrderDescending)
	if up == down {
		t.Error("sweep order must be part of the pop key")
	}
}

func TestComputeResultKeyDistinguishesGenerators(t *testing.T) {
	a := ComputeGeneratorHash("pool", "a")
	b := ComputeGeneratorHash("pool", "b")
	k1 := ComputeResultKey("evals.sum", []GeneratorHash{a}, OrderDescending)
	k2 := ComputeResultKey("evals.sum", []GeneratorHash{b}, OrderDescending)
	if k1 == k2 {
		t.Error("generator identity must be part of the result key")
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsConfigurationError(NewPoolError("x")) {
		t.Error("pool errors are configuration errors")
	}
	if !IsInternalError(NewExhaustionError(0, "s")) {
		t.Error("exhaustion errors are internal errors")
	}
	if !IsFixedPointError(ErrNoAbsorption) {
		t.Error("ErrNoAbsorption is a fixed-point error")
	}
	if IsConfigurationError(ErrStateNotExhausted) {
		t.Error("internal errors are not configuration errors")
	}
}
