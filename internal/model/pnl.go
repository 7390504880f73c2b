package model

import "github.com/shopspring/decimal"

// PositionPnL is a derived profitability snapshot. It is recomputed on
// demand from stored history and never persisted as source of truth.
type PositionPnL struct {
	FeesEarned      decimal.Decimal `json:"fees_earned"`
	ImpermanentLoss decimal.Decimal `json:"impermanent_loss"`
	GasSpent        decimal.Decimal `json:"gas_spent"`
	NetPnL          decimal.Decimal `json:"net_pnl"`
}

// HealthStatus classifies a position by range placement and profitability.
type HealthStatus int

const (
	HealthHealthy HealthStatus = iota
	HealthWarning
	HealthCritical
)

func (h HealthStatus) String() string {
	switch h {
	case HealthHealthy:
		return "Healthy"
	case HealthWarning:
		return "Warning"
	case HealthCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}
