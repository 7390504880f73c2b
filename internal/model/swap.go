package model

import (
	"math/big"
	"time"
)

// Swap is a recorded pool swap. Amount0 and Amount1 are the signed token
// deltas, normally opposite in sign.
type Swap struct {
	ID        int64     `json:"id"`
	TxHash    string    `json:"tx_hash"`
	PoolID    string    `json:"pool_id"`
	Amount0   *big.Int  `json:"amount0"`
	Amount1   *big.Int  `json:"amount1"`
	Timestamp time.Time `json:"timestamp"`
}
