package utils

// BoardLot is the minimum tradable unit for A-share equities.
const BoardLot int64 = 100

// RoundToLot rounds a share quantity down to a whole multiple of the lot
// size. A lot size of zero or less leaves the quantity unchanged.
func RoundToLot(qty int64, lot int64) int64 {
	if lot <= 0 {
		return qty
	}

	if qty < 0 {
		return 0
	}

	return qty - qty%lot
}

// MinQty returns the smaller of two share quantities.
func MinQty(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
