// Package tokenconst contains constants of the token contract shared with
// client applications.
package tokenconst

const (
	// FeeParts is the denominator of the transfer fee rate. A rate equal
	// to FeeParts takes the whole transfer amount as fee.
	FeeParts = 1_000_000

	// FeeDecimals is the decimal precision of the fee rate. Informational
	// only, it does not affect fee arithmetic.
	FeeDecimals = 6
)
