package transform

import "math"

// Ratio returns num/den*100 rounded to 2 decimal places. A zero (or
// negative) denominator yields 0, never an error or NaN.
func Ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
