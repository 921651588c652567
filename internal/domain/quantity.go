package domain

import "math"

// QtyScale is the number of decimal places quantities are stored with.
const QtyScale = 4

// PositiveQty reports whether q is finite and still positive once rounded to
// QtyScale decimal places.
func PositiveQty(q float64) bool {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return false
	}
	return math.Round(q*math.Pow10(QtyScale)) > 0
}
