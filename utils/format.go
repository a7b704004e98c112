package utils

import "strconv"

// FormatAmount renders a monetary amount with two decimals for display in
// notifications and API payloads.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
