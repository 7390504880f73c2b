package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"positionscope/internal/model"
)

// Store provides Postgres persistence for pools, positions, and swaps.
// Idempotency lives in the SQL: natural-key uniqueness plus DO NOTHING on
// conflict, so concurrent cycles cannot race a check-then-insert.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPool inserts pool metadata keyed by pool_id. Pools are immutable
// once created, so a conflict is a no-op.
func (s *Store) UpsertPool(ctx context.Context, pool model.Pool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (pool_id, token0, token1, fee_tier, tick_spacing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pool_id) DO NOTHING
	`,
		pool.PoolID,
		pool.Token0,
		pool.Token1,
		pool.FeeTier,
		pool.TickSpacing,
		pool.CreatedAt,
	)
	return err
}

// UpsertPosition inserts a position keyed by its external nft_id and reports
// whether a new row was created. An already-known nft_id means the position
// was synced by an earlier cycle.
func (s *Store) UpsertPosition(ctx context.Context, position model.Position) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO positions (nft_id, owner, pool_id, tick_lower, tick_upper, liquidity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (nft_id) DO NOTHING
	`,
		position.NFTID,
		position.Owner,
		position.PoolID,
		position.TickLower,
		position.TickUpper,
		position.Liquidity.String(),
		position.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertSwap inserts a swap keyed by tx_hash and reports whether a new row
// was created.
func (s *Store) UpsertSwap(ctx context.Context, swap model.Swap) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO swaps (tx_hash, pool_id, amount0, amount1, swapped_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_hash) DO NOTHING
	`,
		swap.TxHash,
		swap.PoolID,
		swap.Amount0.String(),
		swap.Amount1.String(),
		swap.Timestamp,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListPositions returns all stored positions.
func (s *Store) ListPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, nft_id, owner, pool_id, tick_lower, tick_upper, liquidity::text, created_at
		FROM positions
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var position model.Position
		var liquidity string
		if err := rows.Scan(
			&position.ID,
			&position.NFTID,
			&position.Owner,
			&position.PoolID,
			&position.TickLower,
			&position.TickUpper,
			&liquidity,
			&position.CreatedAt,
		); err != nil {
			return nil, err
		}

		value, ok := new(big.Int).SetString(liquidity, 10)
		if !ok {
			return nil, fmt.Errorf("stored liquidity is not numeric: %q", liquidity)
		}
		position.Liquidity = value

		positions = append(positions, position)
	}
	return positions, rows.Err()
}

// SwapsByPool returns swaps for a pool at or after the given time.
func (s *Store) SwapsByPool(ctx context.Context, poolID string, since time.Time) ([]model.Swap, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tx_hash, pool_id, amount0::text, amount1::text, swapped_at
		FROM swaps
		WHERE pool_id = $1 AND swapped_at >= $2
		ORDER BY swapped_at
	`, poolID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var swaps []model.Swap
	for rows.Next() {
		var swap model.Swap
		var amount0, amount1 string
		if err := rows.Scan(&swap.ID, &swap.TxHash, &swap.PoolID, &amount0, &amount1, &swap.Timestamp); err != nil {
			return nil, err
		}

		value0, ok := new(big.Int).SetString(amount0, 10)
		if !ok {
			return nil, fmt.Errorf("stored amount0 is not numeric: %q", amount0)
		}
		value1, ok := new(big.Int).SetString(amount1, 10)
		if !ok {
			return nil, fmt.Errorf("stored amount1 is not numeric: %q", amount1)
		}
		swap.Amount0 = value0
		swap.Amount1 = value1

		swaps = append(swaps, swap)
	}
	return swaps, rows.Err()
}

// LastSync returns the completion time of the last recorded cycle for a name.
func (s *Store) LastSync(ctx context.Context, name string) (time.Time, bool, error) {
	if name == "" {
		return time.Time{}, false, fmt.Errorf("sync name required")
	}
	var at time.Time
	row := s.pool.QueryRow(ctx, `SELECT last_synced_at FROM sync_state WHERE name=$1`, name)
	if err := row.Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

// SaveSync records the completion of a cycle for diagnostics. The watermark
// itself stays look-back based, so this is bookkeeping only.
func (s *Store) SaveSync(ctx context.Context, name string, at time.Time, inserted int) error {
	if name == "" {
		return fmt.Errorf("sync name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_state (name, last_synced_at, inserted_count, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_synced_at = EXCLUDED.last_synced_at, inserted_count = EXCLUDED.inserted_count, updated_at = now()
	`, name, at, inserted)
	return err
}
