package graph

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"
)

const legacyFixture = `{
  "positions": [
    {
      "id": "42",
      "owner": "0xabc",
      "pool": {
        "id": "0xpool",
        "token0": {"id": "0xtoken0"},
        "token1": {"id": "0xtoken1"},
        "fee": "3000",
        "tickSpacing": "60"
      },
      "tickLower": "-1000",
      "tickUpper": "1000",
      "liquidity": "5000000",
      "transaction": {"id": "0xtx", "timestamp": "1700000000"}
    }
  ]
}`

const eventFixture = `{
  "modifyLiquidities": [
    {
      "id": "42",
      "timestamp": "1700000000",
      "pool": {
        "id": "0xpool",
        "token0": {"id": "0xtoken0"},
        "token1": {"id": "0xtoken1"},
        "feeTier": "3000",
        "tickSpacing": "60"
      },
      "tickLower": "-1000",
      "tickUpper": "1000",
      "amount": "5000000",
      "origin": "0xabc"
    }
  ]
}`

func TestNormalizeShapesAgree(t *testing.T) {
	var legacy legacyPositionsData
	if err := json.Unmarshal([]byte(legacyFixture), &legacy); err != nil {
		t.Fatalf("decode legacy fixture: %v", err)
	}
	var events modifyLiquiditiesData
	if err := json.Unmarshal([]byte(eventFixture), &events); err != nil {
		t.Fatalf("decode event fixture: %v", err)
	}

	fromLegacy := normalizeLegacyPositions(legacy)
	fromEvents := normalizeModifyLiquidities(events)

	if len(fromLegacy) != 1 || len(fromEvents) != 1 {
		t.Fatalf("expected one candidate each, got %d and %d", len(fromLegacy), len(fromEvents))
	}

	if fromLegacy[0] != fromEvents[0] {
		t.Fatalf("shapes normalize differently:\n%+v\n%+v", fromLegacy[0], fromEvents[0])
	}
}

func TestPositionCandidateParse(t *testing.T) {
	candidate := PositionCandidate{
		ID:    "42",
		Owner: "0xabc",
		Pool: PoolCandidate{
			ID:          "0xpool",
			Token0:      "0xtoken0",
			Token1:      "0xtoken1",
			FeeTier:     "3000",
			TickSpacing: "60",
		},
		TickLower: "-1000",
		TickUpper: "1000",
		Liquidity: "5000000",
		Timestamp: "1700000000",
	}

	position, err := candidate.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if position.NFTID != "42" || position.Owner != "0xabc" || position.PoolID != "0xpool" {
		t.Fatalf("identity fields mismatch: %+v", position)
	}
	if position.TickLower != -1000 || position.TickUpper != 1000 {
		t.Fatalf("tick bounds mismatch: %+v", position)
	}
	if position.Liquidity.Cmp(big.NewInt(5000000)) != 0 {
		t.Fatalf("liquidity mismatch: %s", position.Liquidity)
	}
	if !position.CreatedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("timestamp mismatch: %s", position.CreatedAt)
	}
}

func TestPositionCandidateParseRejectsMalformed(t *testing.T) {
	base := PositionCandidate{
		ID:        "42",
		Owner:     "0xabc",
		Pool:      PoolCandidate{ID: "0xpool", FeeTier: "3000", TickSpacing: "60"},
		TickLower: "-1000",
		TickUpper: "1000",
		Liquidity: "5000000",
		Timestamp: "1700000000",
	}

	bad := base
	bad.TickLower = "abc"
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("non-numeric tick must fail")
	}

	bad = base
	bad.Liquidity = "not-a-number"
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("non-numeric liquidity must fail")
	}

	bad = base
	bad.Liquidity = "-1"
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("negative liquidity must fail")
	}

	bad = base
	bad.Timestamp = ""
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("missing timestamp must fail")
	}

	bad = base
	bad.TickLower = "1000"
	bad.TickUpper = "-1000"
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("inverted tick bounds must fail")
	}
}

func TestPoolCandidateParseRejectsMalformed(t *testing.T) {
	candidate := PoolCandidate{ID: "0xpool", FeeTier: "high", TickSpacing: "60"}
	if _, err := candidate.Parse(); err == nil {
		t.Fatalf("non-numeric fee tier must fail")
	}

	candidate = PoolCandidate{ID: "0xpool", FeeTier: "3000", TickSpacing: ""}
	if _, err := candidate.Parse(); err == nil {
		t.Fatalf("missing tick spacing must fail")
	}
}

func TestNormalizeSwapsTxHashFallback(t *testing.T) {
	data := swapsData{
		Swaps: []swapResponse{
			{
				ID:          "swap-1",
				Transaction: transactionRef{ID: "0xtx", Timestamp: "1700000000"},
				Pool:        poolRef{ID: "0xpool"},
				Amount0:     "100",
				Amount1:     "-90",
			},
			{
				ID:          "swap-2",
				Transaction: transactionRef{Timestamp: "1700000100"},
				Pool:        poolRef{ID: "0xpool"},
				Amount0:     "-50",
				Amount1:     "55",
			},
		},
	}

	candidates := normalizeSwaps(data)
	if candidates[0].TxHash != "0xtx" {
		t.Fatalf("expected transaction id, got %s", candidates[0].TxHash)
	}
	if candidates[1].TxHash != "swap-2" {
		t.Fatalf("expected fallback to swap id, got %s", candidates[1].TxHash)
	}
}

func TestSwapCandidateParse(t *testing.T) {
	candidate := SwapCandidate{
		ID:        "swap-1",
		TxHash:    "0xtx",
		PoolID:    "0xpool",
		Amount0:   "123456789012345678901234567890",
		Amount1:   "-98765432109876543210",
		Timestamp: "1700000000",
	}

	swap, err := candidate.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if swap.Amount0.Sign() <= 0 || swap.Amount1.Sign() >= 0 {
		t.Fatalf("signs lost in parse: %s %s", swap.Amount0, swap.Amount1)
	}

	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if swap.Amount0.Cmp(want) != 0 {
		t.Fatalf("wide amount mismatch: %s", swap.Amount0)
	}

	bad := candidate
	bad.Amount0 = "12.5"
	if _, err := bad.Parse(); err == nil {
		t.Fatalf("non-integer amount must fail")
	}
}
