package analytics

import (
	"fmt"

	"positionscope/internal/model"
)

// PositionHealth classifies a position against the current tick and its
// derived P&L. Out-of-range and negative net P&L are both Critical and take
// precedence over the edge-proximity Warning.
func PositionHealth(position model.Position, currentTick int32, pnl model.PositionPnL) model.HealthStatus {
	if !IsInRange(currentTick, position.TickLower, position.TickUpper) {
		return model.HealthCritical
	}

	if pnl.NetPnL.IsNegative() {
		return model.HealthCritical
	}

	rangeWidth := position.TickUpper - position.TickLower
	if DistanceToRangeEdge(currentTick, position.TickLower, position.TickUpper) < rangeWidth/10 {
		return model.HealthWarning
	}

	return model.HealthHealthy
}

// HealthDetails renders a one-line human-readable health summary.
func HealthDetails(position model.Position, currentTick int32, pnl model.PositionPnL) string {
	status := PositionHealth(position, currentTick, pnl)
	inRange := IsInRange(currentTick, position.TickLower, position.TickUpper)
	distance := DistanceToRangeEdge(currentTick, position.TickLower, position.TickUpper)

	return fmt.Sprintf("status=%s in_range=%t edge_distance=%d net_pnl=%s",
		status, inRange, distance, pnl.NetPnL)
}
