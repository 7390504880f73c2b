package graph

import "encoding/json"

// envelope is the query protocol response wrapper: either a data payload or
// a list of application-level errors.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []queryError    `json:"errors"`
}

type queryError struct {
	Message string `json:"message"`
}

type tokenRef struct {
	ID string `json:"id"`
}

type poolRef struct {
	ID string `json:"id"`
}

type transactionRef struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

// Legacy schema: a positions collection with owner/liquidity/fee fields and
// the timestamp nested under the mint transaction.

type legacyPositionsData struct {
	Positions []legacyPosition `json:"positions"`
}

type legacyPosition struct {
	ID          string         `json:"id"`
	Owner       string         `json:"owner"`
	Pool        legacyPool     `json:"pool"`
	TickLower   string         `json:"tickLower"`
	TickUpper   string         `json:"tickUpper"`
	Liquidity   string         `json:"liquidity"`
	Transaction transactionRef `json:"transaction"`
}

type legacyPool struct {
	ID          string   `json:"id"`
	Token0      tokenRef `json:"token0"`
	Token1      tokenRef `json:"token1"`
	Fee         string   `json:"fee"`
	TickSpacing string   `json:"tickSpacing"`
}

// Event schema: modifyLiquidities events with origin/amount/feeTier fields
// and a flat timestamp. Only positive-amount events are fetched, so amount
// is a liquidity magnitude.

type modifyLiquiditiesData struct {
	ModifyLiquidities []modifyLiquidityEvent `json:"modifyLiquidities"`
}

type modifyLiquidityEvent struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Pool      eventPool `json:"pool"`
	TickLower string    `json:"tickLower"`
	TickUpper string    `json:"tickUpper"`
	Amount    string    `json:"amount"`
	Origin    string    `json:"origin"`
}

type eventPool struct {
	ID          string   `json:"id"`
	Token0      tokenRef `json:"token0"`
	Token1      tokenRef `json:"token1"`
	FeeTier     string   `json:"feeTier"`
	TickSpacing string   `json:"tickSpacing"`
}

type swapsData struct {
	Swaps []swapResponse `json:"swaps"`
}

type swapResponse struct {
	ID          string         `json:"id"`
	Transaction transactionRef `json:"transaction"`
	Pool        poolRef        `json:"pool"`
	Amount0     string         `json:"amount0"`
	Amount1     string         `json:"amount1"`
}
