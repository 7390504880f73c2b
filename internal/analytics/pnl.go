package analytics

import (
	"math/big"

	"github.com/shopspring/decimal"

	"positionscope/internal/model"
)

// Estimator constants. The fee estimate assumes a flat 0.3% tier and a 1%
// pool share instead of exact liquidity-weighted accrual, and the IL curve
// is a capped linear approximation. Order-of-magnitude only; not suitable
// for settlement.
var (
	feeRate          = decimal.RequireFromString("0.003")
	assumedPoolShare = decimal.RequireFromString("0.01")
	priceTolerance   = decimal.RequireFromString("0.0001")
	fullRangeILSlope = decimal.RequireFromString("0.2")
	ilCap            = decimal.RequireFromString("0.5")
	ilScale          = decimal.RequireFromString("0.5")
)

// Tick spans wider than this are treated as full-range positions.
const fullRangeTickCutoff = 1_000_000

// FeesEarned estimates fees accrued to a position over a swap history by
// taking total swap volume times the fee rate and assumed pool share.
// An empty history earns nothing.
func FeesEarned(_ model.Position, swaps []model.Swap) decimal.Decimal {
	if len(swaps) == 0 {
		return decimal.Zero
	}

	totalVolume := decimal.Zero
	for _, swap := range swaps {
		amt0 := decimal.NewFromBigInt(new(big.Int).Abs(swap.Amount0), 0)
		amt1 := decimal.NewFromBigInt(new(big.Int).Abs(swap.Amount1), 0)
		totalVolume = totalVolume.Add(amt0).Add(amt1)
	}

	return totalVolume.Mul(feeRate).Mul(assumedPoolShare)
}

// ImpermanentLoss estimates IL between two price observations. Full-range
// positions use a capped linear curve; bounded ranges scale the price move
// down by the range width. A move under the price tolerance counts as no
// move at all.
func ImpermanentLoss(position model.Position, initialPrice, currentPrice decimal.Decimal) decimal.Decimal {
	if initialPrice.IsZero() || currentPrice.IsZero() {
		return decimal.Zero
	}

	if currentPrice.Sub(initialPrice).Abs().LessThan(priceTolerance) {
		return decimal.Zero
	}

	priceChangePct := currentPrice.Sub(initialPrice).Div(initialPrice).Abs()

	tickRange := int64(position.TickUpper) - int64(position.TickLower)
	if tickRange < 0 {
		tickRange = -tickRange
	}

	if tickRange > fullRangeTickCutoff {
		il := priceChangePct.Mul(fullRangeILSlope)
		if il.GreaterThan(ilCap) {
			return ilCap
		}
		return il
	}

	priceLower := TickToPrice(position.TickLower)
	priceUpper := TickToPrice(position.TickUpper)
	if priceLower.IsZero() {
		return decimal.Zero
	}

	// Wider ranges approach v2 behavior and dilute the loss.
	rangeWidth := priceUpper.Sub(priceLower).Div(priceLower)

	return priceChangePct.Div(decimal.NewFromInt(1).Add(rangeWidth)).Mul(ilScale)
}

// NetPnL is fees minus impermanent loss minus gas, unclamped.
func NetPnL(fees, il, gas decimal.Decimal) decimal.Decimal {
	return fees.Sub(il).Sub(gas)
}

// ComputePositionPnL derives the full profitability snapshot for a position.
func ComputePositionPnL(position model.Position, swaps []model.Swap, initialPrice, currentPrice, gasSpent decimal.Decimal) model.PositionPnL {
	fees := FeesEarned(position, swaps)
	il := ImpermanentLoss(position, initialPrice, currentPrice)

	return model.PositionPnL{
		FeesEarned:      fees,
		ImpermanentLoss: il,
		GasSpent:        gasSpent,
		NetPnL:          NetPnL(fees, il, gasSpent),
	}
}
