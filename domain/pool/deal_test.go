package pool

import (
	"errors"
	"math/big"
	"testing"

	"godice/domain/core"
	"godice/domain/dist"
)

func miniDeck(t *testing.T, ranks, copies int) *dist.Die[int] {
	t.Helper()
	weights := make(map[int]int, ranks)
	for r := 1; r <= ranks; r++ {
		weights[r] = copies
	}
	d, err := dist.FromCounts(weights)
	if err != nil {
		t.Fatalf("deck: %v", err)
	}
	return d
}

func TestNewDealValidation(t *testing.T) {
	deck := miniDeck(t, 4, 2) // 8 cards
	tests := []struct {
		name string
		deck *dist.Die[int]
		hand int
	}{
		{"empty deck", dist.Empty[int](), 1},
		{"nil deck", nil, 1},
		{"negative hand", deck, -1},
		{"hand exceeds deck", deck, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDeal(tt.deck, tt.hand); !errors.Is(err, core.ErrInvalidDeal) {
				t.Fatalf("err = %v, want ErrInvalidDeal", err)
			}
		})
	}
}

func TestDealDenominatorIsChoose(t *testing.T) {
	deal, err := NewDeal(miniDeck(t, 4, 2), 3)
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	// C(8,3) = 56
	if got := deal.Denominator(); got.Cmp(big.NewInt(56)) != 0 {
		t.Errorf("Denominator = %s, want 56", got)
	}
	if deal.Size() != 3 {
		t.Errorf("Size = %d, want 3", deal.Size())
	}
}

func TestDealPopHypergeometric(t *testing.T) {
	deal, err := NewDeal(miniDeck(t, 4, 2), 3)
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	pops, err := deal.Pop(deal.InitialState(), 1, core.OrderAscending)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	// k copies of rank 1 in hand, weight C(2,k).
	wantWeight := map[int]int64{0: 1, 1: 2, 2: 1}
	if len(pops) != 3 {
		t.Fatalf("pops = %d, want 3", len(pops))
	}
	for _, pop := range pops {
		if pop.Weight.Cmp(big.NewInt(wantWeight[pop.Count])) != 0 {
			t.Errorf("count %d weight = %s, want %d",
				pop.Count, pop.Weight, wantWeight[pop.Count])
		}
	}
}

func TestDealForcedCompletesHand(t *testing.T) {
	deal, err := NewDeal(miniDeck(t, 4, 2), 2)
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	// Ascending at rank 4 (the deck's last outcome) with the whole hand
	// still needed: exactly C(2,2)=1 way.
	pops, err := deal.Pop(deal.InitialState(), 4, core.OrderAscending)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(pops) != 1 || pops[0].Count != 2 || !pops[0].State.Exhausted() {
		t.Fatalf("forced pop = %+v, want single exhausted count-2 branch", pops)
	}
	if pops[0].Weight.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("forced weight = %s, want 1", pops[0].Weight)
	}
}

func TestDealImpossibleForcedBranchDies(t *testing.T) {
	deal, err := NewDeal(miniDeck(t, 4, 2), 3)
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	// Needing 3 cards at the last outcome with only 2 copies left: the
	// branch contributes nothing, and the sweep's other branches carry
	// the full weight (Vandermonde).
	pops, err := deal.Pop(deal.InitialState(), 4, core.OrderAscending)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(pops) != 0 {
		t.Fatalf("impossible branch returned %d pops, want 0", len(pops))
	}
}

func TestDealPopVandermondeConservation(t *testing.T) {
	// Drawing a full sweep by hand over a 2-rank deck: total weight over
	// all complete paths must equal C(deckSize, hand).
	deal, err := NewDeal(miniDeck(t, 2, 3), 2) // 6 cards, C(6,2)=15
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	total := new(big.Int)
	first, err := deal.Pop(deal.InitialState(), 1, core.OrderAscending)
	if err != nil {
		t.Fatalf("Pop rank 1: %v", err)
	}
	for _, f := range first {
		rest, err := deal.Pop(f.State, 2, core.OrderAscending)
		if err != nil {
			t.Fatalf("Pop rank 2: %v", err)
		}
		for _, r := range rest {
			if !r.State.Exhausted() {
				t.Fatalf("path ended unexhausted: %s", r.State.Key())
			}
			total.Add(total, new(big.Int).Mul(f.Weight, r.Weight))
		}
	}
	if total.Cmp(big.NewInt(15)) != 0 {
		t.Errorf("total weight = %s, want 15", total)
	}
}

func TestDealZeroHand(t *testing.T) {
	deal, err := NewDeal(miniDeck(t, 3, 1), 0)
	if err != nil {
		t.Fatalf("NewDeal: %v", err)
	}
	if got := deal.Denominator(); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("Denominator = %s, want 1", got)
	}
	if !deal.InitialState().Exhausted() {
		t.Error("zero hand must start exhausted")
	}
	pops, err := deal.Pop(deal.InitialState(), 3, core.OrderAscending)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(pops) != 1 || pops[0].Count != 0 {
		t.Fatalf("zero-hand pop = %+v, want single zero-count branch", pops)
	}
}
