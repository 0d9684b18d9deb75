package pool

import (
	"cmp"
	"fmt"
	"math/big"

	"godice/domain/core"
	"godice/domain/dist"
)

// Deal draws a hand of a fixed size from a finite deck without
// replacement. The deck is a weighted distribution whose weights are card
// copy counts; at each outcome the number of copies landing in the hand is
// hypergeometric, with local weight C(copies, k). The denominator is
// C(deck size, hand size).
type Deal[O cmp.Ordered] struct {
	deck     *dist.Die[O]
	copies   map[O]int
	deckSize int
	hand     int
	denom    *big.Int
	hash     core.GeneratorHash
}

// dealState tracks how many cards the hand still needs.
type dealState struct {
	needed int
}

func (s *dealState) Key() string     { return fmt.Sprintf("deal[%d]", s.needed) }
func (s *dealState) Exhausted() bool { return s.needed == 0 }

// NewDeal builds a deal of hand cards from the deck. Copy counts must fit
// an int; hands larger than the deck are a fatal configuration error.
func NewDeal[O cmp.Ordered](deck *dist.Die[O], hand int) (*Deal[O], error) {
	if deck == nil || deck.IsEmpty() {
		return nil, core.NewDealError("empty deck")
	}
	if hand < 0 {
		return nil, core.NewDealError(fmt.Sprintf("negative hand size %d", hand))
	}
	d := &Deal[O]{deck: deck, hand: hand, copies: make(map[O]int)}
	var failed error
	deck.Each(func(o O, w *big.Int) {
		if !w.IsInt64() && failed == nil {
			failed = core.NewDealError(fmt.Sprintf("copy count for %v exceeds int range", o))
			return
		}
		d.copies[o] = int(w.Int64())
		d.deckSize += int(w.Int64())
	})
	if failed != nil {
		return nil, failed
	}
	if hand > d.deckSize {
		return nil, core.NewDealError(fmt.Sprintf(
			"hand size %d exceeds deck size %d", hand, d.deckSize))
	}
	d.denom = core.Binomial(d.deckSize, hand)
	d.hash = core.ComputeGeneratorHash("deal",
		deck.Hash().String(), fmt.Sprintf("hand:%d", hand))
	return d, nil
}

// Outcomes returns the distinct cards in the deck, sorted ascending.
func (d *Deal[O]) Outcomes() []O { return d.deck.Outcomes() }

// Size is the hand size.
func (d *Deal[O]) Size() int { return d.hand }

// Denominator is C(deck size, hand size).
func (d *Deal[O]) Denominator() *big.Int { return new(big.Int).Set(d.denom) }

// PreferredOrder: deals resolve in either direction.
func (d *Deal[O]) PreferredOrder() core.Order { return core.OrderAny }

// Hash returns the structural description of the deal.
func (d *Deal[O]) Hash() core.GeneratorHash { return d.hash }

// InitialState returns a state needing the full hand.
func (d *Deal[O]) InitialState() State { return &dealState{needed: d.hand} }

// Pop enumerates how many copies of outcome land in the hand. At the
// deck's last outcome in the sweep direction the hand must be completed
// exactly; branches that cannot complete it contribute nothing.
func (d *Deal[O]) Pop(st State, outcome O, order core.Order) ([]Pop, error) {
	ds, ok := st.(*dealState)
	if !ok {
		return nil, core.NewDealError("state does not belong to this deal")
	}
	m := d.copies[outcome]
	if m == 0 || ds.needed == 0 {
		return []Pop{{State: &dealState{needed: ds.needed}, Count: 0, Weight: core.One()}}, nil
	}
	if forcedAtOutcome(d.deck.Outcomes(), outcome, order) {
		if m < ds.needed {
			// Impossible branch: not enough copies left to fill the hand.
			return nil, nil
		}
		return []Pop{{
			State:  &dealState{needed: 0},
			Count:  ds.needed,
			Weight: core.Binomial(m, ds.needed),
		}}, nil
	}
	limit := min(m, ds.needed)
	pops := make([]Pop, 0, limit+1)
	for k := 0; k <= limit; k++ {
		pops = append(pops, Pop{
			State:  &dealState{needed: ds.needed - k},
			Count:  k,
			Weight: core.Binomial(m, k),
		})
	}
	return pops, nil
}
