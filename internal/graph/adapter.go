package graph

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"positionscope/internal/model"
)

// PoolCandidate carries pool metadata as the feed reports it, numerics
// still in string form.
type PoolCandidate struct {
	ID          string `json:"id"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	FeeTier     string `json:"fee_tier"`
	TickSpacing string `json:"tick_spacing"`
}

// PositionCandidate is the shape-independent form of a position record.
// Both schema generations normalize into it before anything downstream
// sees the data; numeric fields stay strings until Parse.
type PositionCandidate struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	Pool      PoolCandidate `json:"pool"`
	TickLower string        `json:"tick_lower"`
	TickUpper string        `json:"tick_upper"`
	Liquidity string        `json:"liquidity"`
	Timestamp string        `json:"timestamp"`
}

// SwapCandidate is the normalized form of a swap record. TxHash already
// carries the fallback to the swap's own id when the feed omits the
// transaction id.
type SwapCandidate struct {
	ID        string `json:"id"`
	TxHash    string `json:"tx_hash"`
	PoolID    string `json:"pool_id"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	Timestamp string `json:"timestamp"`
}

func normalizeLegacyPositions(data legacyPositionsData) []PositionCandidate {
	candidates := make([]PositionCandidate, 0, len(data.Positions))
	for _, pos := range data.Positions {
		candidates = append(candidates, PositionCandidate{
			ID:    pos.ID,
			Owner: pos.Owner,
			Pool: PoolCandidate{
				ID:          pos.Pool.ID,
				Token0:      pos.Pool.Token0.ID,
				Token1:      pos.Pool.Token1.ID,
				FeeTier:     pos.Pool.Fee,
				TickSpacing: pos.Pool.TickSpacing,
			},
			TickLower: pos.TickLower,
			TickUpper: pos.TickUpper,
			Liquidity: pos.Liquidity,
			Timestamp: pos.Transaction.Timestamp,
		})
	}
	return candidates
}

func normalizeModifyLiquidities(data modifyLiquiditiesData) []PositionCandidate {
	candidates := make([]PositionCandidate, 0, len(data.ModifyLiquidities))
	for _, event := range data.ModifyLiquidities {
		candidates = append(candidates, PositionCandidate{
			ID:    event.ID,
			Owner: event.Origin,
			Pool: PoolCandidate{
				ID:          event.Pool.ID,
				Token0:      event.Pool.Token0.ID,
				Token1:      event.Pool.Token1.ID,
				FeeTier:     event.Pool.FeeTier,
				TickSpacing: event.Pool.TickSpacing,
			},
			TickLower: event.TickLower,
			TickUpper: event.TickUpper,
			Liquidity: event.Amount,
			Timestamp: event.Timestamp,
		})
	}
	return candidates
}

func normalizeSwaps(data swapsData) []SwapCandidate {
	candidates := make([]SwapCandidate, 0, len(data.Swaps))
	for _, swap := range data.Swaps {
		txHash := swap.Transaction.ID
		if txHash == "" {
			txHash = swap.ID
		}
		candidates = append(candidates, SwapCandidate{
			ID:        swap.ID,
			TxHash:    txHash,
			PoolID:    swap.Pool.ID,
			Amount0:   swap.Amount0,
			Amount1:   swap.Amount1,
			Timestamp: swap.Transaction.Timestamp,
		})
	}
	return candidates
}

// Parse converts the candidate into a storable pool record. Malformed
// numeric strings fail loudly instead of coercing to zero.
func (c PoolCandidate) Parse() (model.Pool, error) {
	feeTier, err := strconv.ParseInt(c.FeeTier, 10, 32)
	if err != nil {
		return model.Pool{}, fmt.Errorf("parse fee tier %q: %w", c.FeeTier, err)
	}

	tickSpacing, err := strconv.ParseInt(c.TickSpacing, 10, 32)
	if err != nil {
		return model.Pool{}, fmt.Errorf("parse tick spacing %q: %w", c.TickSpacing, err)
	}

	return model.Pool{
		PoolID:      c.ID,
		Token0:      c.Token0,
		Token1:      c.Token1,
		FeeTier:     int32(feeTier),
		TickSpacing: int32(tickSpacing),
		// The feed does not report pool creation time.
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Parse converts the candidate into a storable position record.
func (c PositionCandidate) Parse() (model.Position, error) {
	tickLower, err := strconv.ParseInt(c.TickLower, 10, 32)
	if err != nil {
		return model.Position{}, fmt.Errorf("parse tick_lower %q: %w", c.TickLower, err)
	}

	tickUpper, err := strconv.ParseInt(c.TickUpper, 10, 32)
	if err != nil {
		return model.Position{}, fmt.Errorf("parse tick_upper %q: %w", c.TickUpper, err)
	}

	if tickLower >= tickUpper {
		return model.Position{}, fmt.Errorf("tick_lower %d is not below tick_upper %d", tickLower, tickUpper)
	}

	liquidity, ok := new(big.Int).SetString(c.Liquidity, 10)
	if !ok {
		return model.Position{}, fmt.Errorf("parse liquidity %q", c.Liquidity)
	}
	if liquidity.Sign() < 0 {
		return model.Position{}, fmt.Errorf("negative liquidity %q", c.Liquidity)
	}

	timestamp, err := strconv.ParseInt(c.Timestamp, 10, 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("parse timestamp %q: %w", c.Timestamp, err)
	}

	return model.Position{
		NFTID:     c.ID,
		Owner:     c.Owner,
		PoolID:    c.Pool.ID,
		TickLower: int32(tickLower),
		TickUpper: int32(tickUpper),
		Liquidity: liquidity,
		CreatedAt: time.Unix(timestamp, 0).UTC(),
	}, nil
}

// Parse converts the candidate into a storable swap record, with amounts as
// signed wide integers.
func (c SwapCandidate) Parse() (model.Swap, error) {
	amount0, ok := new(big.Int).SetString(c.Amount0, 10)
	if !ok {
		return model.Swap{}, fmt.Errorf("parse amount0 %q", c.Amount0)
	}

	amount1, ok := new(big.Int).SetString(c.Amount1, 10)
	if !ok {
		return model.Swap{}, fmt.Errorf("parse amount1 %q", c.Amount1)
	}

	timestamp, err := strconv.ParseInt(c.Timestamp, 10, 64)
	if err != nil {
		return model.Swap{}, fmt.Errorf("parse timestamp %q: %w", c.Timestamp, err)
	}

	return model.Swap{
		TxHash:    c.TxHash,
		PoolID:    c.PoolID,
		Amount0:   amount0,
		Amount1:   amount1,
		Timestamp: time.Unix(timestamp, 0).UTC(),
	}, nil
}
