package pkg

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percentage returns used/limit as a percentage rounded to one decimal place.
// A non-positive limit yields zero.
func Percentage(used, limit int64) decimal.Decimal {
	if limit <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(used).Mul(hundred).Div(decimal.NewFromInt(limit)).Round(1)
}

// Megabytes converts a byte count to MB with two decimal places.
func Megabytes(bytes uint64) string {
	return decimal.NewFromInt(int64(bytes)).Div(decimal.NewFromInt(1024 * 1024)).StringFixed(2)
}
