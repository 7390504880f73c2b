package storage

import (
	"context"
	"sync"

	"positionscope/internal/model"
)

// Memory is an in-process Store used for dry runs and tests. Conflict
// resolution mirrors the Postgres store: first write wins, later writes
// against the same natural key are no-ops.
type Memory struct {
	mu        sync.Mutex
	pools     map[string]model.Pool
	positions map[string]model.Position
	swaps     map[string]model.Swap
	nextID    int64
}

func NewMemory() *Memory {
	return &Memory{
		pools:     make(map[string]model.Pool),
		positions: make(map[string]model.Position),
		swaps:     make(map[string]model.Swap),
		nextID:    1,
	}
}

func (m *Memory) UpsertPool(_ context.Context, pool model.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pools[pool.PoolID]; ok {
		return nil
	}
	m.pools[pool.PoolID] = pool
	return nil
}

func (m *Memory) UpsertPosition(_ context.Context, position model.Position) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.positions[position.NFTID]; ok {
		return false, nil
	}
	position.ID = m.nextID
	m.nextID++
	m.positions[position.NFTID] = position
	return true, nil
}

func (m *Memory) UpsertSwap(_ context.Context, swap model.Swap) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.swaps[swap.TxHash]; ok {
		return false, nil
	}
	swap.ID = m.nextID
	m.nextID++
	m.swaps[swap.TxHash] = swap
	return true, nil
}

// Positions returns the stored positions in map order; callers that care
// about ordering should sort.
func (m *Memory) Positions() []model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Position, 0, len(m.positions))
	for _, position := range m.positions {
		out = append(out, position)
	}
	return out
}

// Swaps returns the stored swaps.
func (m *Memory) Swaps() []model.Swap {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Swap, 0, len(m.swaps))
	for _, swap := range m.swaps {
		out = append(out, swap)
	}
	return out
}

// PoolCount reports how many distinct pools have been recorded.
func (m *Memory) PoolCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pools)
}
