package model

import (
	"math/big"
	"time"
)

// Position is a liquidity position over the tick range [TickLower, TickUpper).
// ID is assigned by storage; NFTID is the external identity the feed reports
// and the key that keeps repeated sync cycles idempotent.
type Position struct {
	ID        int64     `json:"id"`
	NFTID     string    `json:"nft_id"`
	Owner     string    `json:"owner"`
	PoolID    string    `json:"pool_id"`
	TickLower int32     `json:"tick_lower"`
	TickUpper int32     `json:"tick_upper"`
	Liquidity *big.Int  `json:"liquidity"`
	CreatedAt time.Time `json:"created_at"`
}
