package payments

import (
	"os"
	"strconv"
)

// DefaultFeeBasisPoints is the platform commission, 15%.
const DefaultFeeBasisPoints int64 = 1500

// Breakdown splits a gross amount into the platform fee and the creator net.
// Values are minor units.
type Breakdown struct {
	Fee int64
	Net int64
}

// ComputeFee computes the platform commission on a minor-unit gross amount.
// Rounding is applied once, half-up, on the integer basis-point product, so
// results are deterministic and reproducible: gross 10000 at 1500 bps yields
// fee 1500 / net 8500; the boundary gross 3 (0.03) yields fee 0 / net 3
// because 3*1500 = 4500 out of 10000 rounds down.
func ComputeFee(grossMinorUnits int64, basisPoints int64) Breakdown {
	if grossMinorUnits <= 0 || basisPoints <= 0 {
		return Breakdown{Fee: 0, Net: grossMinorUnits}
	}
	fee := (grossMinorUnits*basisPoints + 5000) / 10000
	return Breakdown{Fee: fee, Net: grossMinorUnits - fee}
}

// FeeBasisPoints returns the configured commission rate, falling back to the
// 15% default when PLATFORM_FEE_BPS is unset or malformed.
func FeeBasisPoints() int64 {
	raw := os.Getenv("PLATFORM_FEE_BPS")
	if raw == "" {
		return DefaultFeeBasisPoints
	}
	bps, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bps < 0 || bps > 10000 {
		return DefaultFeeBasisPoints
	}
	return bps
}
