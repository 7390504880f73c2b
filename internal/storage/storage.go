package storage

import (
	"context"

	"positionscope/internal/model"
)

// Store persists normalized records. Every method is idempotent on the
// entity's natural key: repeated application of the same record is a no-op.
// The position and swap upserts report whether a new row was created so the
// sync engine can count fresh inserts.
type Store interface {
	UpsertPool(ctx context.Context, pool model.Pool) error
	UpsertPosition(ctx context.Context, position model.Position) (bool, error)
	UpsertSwap(ctx context.Context, swap model.Swap) (bool, error)
}
