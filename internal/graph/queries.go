package graph

// SchemaVersion selects which generation of the subgraph schema the client
// speaks. The legacy schema exposes a positions collection; the event
// schema exposes modifyLiquidities events.
type SchemaVersion string

const (
	SchemaLegacy SchemaVersion = "v3"
	SchemaEvents SchemaVersion = "v4"
)

func (v SchemaVersion) Valid() bool {
	return v == SchemaLegacy || v == SchemaEvents
}

const legacyPositionsByOwner = `
query PositionsByOwner($owner: String!, $first: Int!) {
  positions(
    where: { owner: $owner, liquidity_gt: "0" }
    orderBy: id
    orderDirection: desc
    first: $first
  ) {
    id
    owner
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      fee
      tickSpacing
    }
    tickLower
    tickUpper
    liquidity
    transaction {
      id
      timestamp
    }
  }
}
`

const legacyPositionsByPool = `
query PositionsByPool($poolId: String!, $first: Int!) {
  positions(
    where: { pool: $poolId, liquidity_gt: "0" }
    orderBy: id
    orderDirection: desc
    first: $first
  ) {
    id
    owner
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      fee
      tickSpacing
    }
    tickLower
    tickUpper
    liquidity
    transaction {
      id
      timestamp
    }
  }
}
`

const legacyRecentPositions = `
query RecentPositions($timestamp: BigInt!, $first: Int!) {
  positions(
    where: { transaction_: { timestamp_gte: $timestamp }, liquidity_gt: "0" }
    orderBy: id
    orderDirection: desc
    first: $first
  ) {
    id
    owner
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      fee
      tickSpacing
    }
    tickLower
    tickUpper
    liquidity
    transaction {
      id
      timestamp
    }
  }
}
`

const eventPositionsByOwner = `
query ModifyLiquidityByOrigin($owner: String!, $first: Int!) {
  modifyLiquidities(
    where: { origin: $owner, amount_gt: "0" }
    orderBy: timestamp
    orderDirection: desc
    first: $first
  ) {
    id
    timestamp
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      feeTier
      tickSpacing
    }
    tickLower
    tickUpper
    amount
    origin
  }
}
`

const eventPositionsByPool = `
query ModifyLiquidityByPool($poolId: String!, $first: Int!) {
  modifyLiquidities(
    where: { pool: $poolId, amount_gt: "0" }
    orderBy: timestamp
    orderDirection: desc
    first: $first
  ) {
    id
    timestamp
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      feeTier
      tickSpacing
    }
    tickLower
    tickUpper
    amount
    origin
  }
}
`

const eventRecentPositions = `
query RecentModifyLiquidity($timestamp: BigInt!, $first: Int!) {
  modifyLiquidities(
    where: { timestamp_gte: $timestamp, amount_gt: "0" }
    orderBy: timestamp
    orderDirection: desc
    first: $first
  ) {
    id
    timestamp
    pool {
      id
      token0 {
        id
      }
      token1 {
        id
      }
      feeTier
      tickSpacing
    }
    tickLower
    tickUpper
    amount
    origin
  }
}
`

// The swaps collection has the same shape in both schema generations.
const recentSwaps = `
query RecentSwaps($poolId: String!, $timestamp: BigInt!, $first: Int!) {
  swaps(
    where: { pool: $poolId, timestamp_gte: $timestamp }
    orderBy: timestamp
    orderDirection: asc
    first: $first
  ) {
    id
    transaction {
      id
      timestamp
    }
    pool {
      id
    }
    amount0
    amount1
  }
}
`
