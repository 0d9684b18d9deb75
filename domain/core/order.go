package core

// Order is the direction in which the evaluation engine visits outcomes.
type Order int

const (
	// OrderAny leaves the direction choice to the engine.
	OrderAny Order = 0
	// OrderAscending visits outcomes from lowest to highest.
	OrderAscending Order = 1
	// OrderDescending visits outcomes from highest to lowest.
	OrderDescending Order = -1
)

// String returns the string representation
func (o Order) String() string {
	switch o {
	case OrderAscending:
		return "ascending"
	case OrderDescending:
		return "descending"
	default:
		return "any"
	}
}

// Reversed returns the opposite direction. OrderAny reverses to itself.
func (o Order) Reversed() Order {
	return Order(-int(o))
}

// Merge combines two order preferences. OrderAny defers to the other side;
// conflicting strict preferences report no agreement.
func (o Order) Merge(other Order) (Order, bool) {
	switch {
	case o == OrderAny:
		return other, true
	case other == OrderAny || o == other:
		return o, true
	default:
		return OrderAny, false
	}
}
