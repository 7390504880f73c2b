package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Price bounds for tick conversion. Full-range positions sit near ±887220,
// where 1.0001^tick is astronomically large or small; results beyond these
// bounds are clamped instead of overflowing.
var (
	maxTickPrice = decimal.RequireFromString("1e38")
	minTickPrice = decimal.RequireFromString("1e-38")
)

var lnTickBase = math.Log(1.0001)

// IsInRange reports whether tick is inside the half-open range
// [lower, upper). A tick sitting exactly at upper is out of range.
func IsInRange(tick, lower, upper int32) bool {
	return tick >= lower && tick < upper
}

// DistanceToRangeEdge returns the distance from tick to the nearest range
// edge, or 0 when tick is outside [lower, upper).
func DistanceToRangeEdge(tick, lower, upper int32) int32 {
	if tick < lower || tick >= upper {
		return 0
	}

	distToLower := tick - lower
	distToUpper := upper - tick
	if distToLower < distToUpper {
		return distToLower
	}
	return distToUpper
}

// TickToPrice approximates price = 1.0001^tick. The exp-of-log form stays
// finite for extreme ticks; out-of-bound results clamp to fixed limits.
func TickToPrice(tick int32) decimal.Decimal {
	raw := math.Exp(float64(tick) * lnTickBase)
	if math.IsInf(raw, 1) || raw >= 1e38 {
		return maxTickPrice
	}
	if raw <= 1e-38 {
		return minTickPrice
	}
	return decimal.NewFromFloat(raw)
}

// PriceToTick inverts TickToPrice via round(ln(price)/ln(1.0001)).
// Non-positive prices map to tick 0.
func PriceToTick(price decimal.Decimal) int32 {
	if price.Sign() <= 0 {
		return 0
	}

	raw, _ := price.Float64()
	if raw <= 0 {
		return 0
	}
	return int32(math.Round(math.Log(raw) / lnTickBase))
}

// RangeWidthPercent returns the price width of [lower, upper] as a
// percentage of the lower price.
func RangeWidthPercent(lower, upper int32) decimal.Decimal {
	priceLower := TickToPrice(lower)
	priceUpper := TickToPrice(upper)

	if priceLower.IsZero() {
		return decimal.Zero
	}

	return priceUpper.Sub(priceLower).Div(priceLower).Mul(decimal.NewFromInt(100))
}
