package model

import "math"

// ResourceAmount is a quantity of the shared resource
type ResourceAmount int64

// Extracted sums the amounts requested by a round's moves. Amounts are
// non-negative; the sum saturates at the largest representable amount.
func Extracted(moves []*Move) ResourceAmount {
	var total ResourceAmount
	for _, m := range moves {
		if m.Amount > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += m.Amount
	}
	return total
}

// Deplete returns what is left of starting after extracted is taken out.
// The result never drops below floor.
func Deplete(starting, extracted, floor ResourceAmount) ResourceAmount {
	if starting <= floor || extracted >= starting-floor {
		return floor
	}
	return starting - extracted
}

// IsDepleted reports whether the pool has hit its floor
func IsDepleted(pool, floor ResourceAmount) bool {
	return pool <= floor
}
