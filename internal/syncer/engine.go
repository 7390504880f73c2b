package syncer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"positionscope/internal/graph"
	"positionscope/internal/storage"
)

// Config holds runtime settings for a sync cycle.
type Config struct {
	// Lookback is the watermark window. It is deliberately wider than the
	// polling interval so missed cycles are re-covered; re-processing the
	// overlap is idempotent.
	Lookback time.Duration
	// WithSwaps also syncs swaps for every pool seen in the position batch.
	WithSwaps bool
}

// Stats summarizes one cycle.
type Stats struct {
	Positions int
	Swaps     int
	Pools     int
}

// Engine reconciles the subgraph feed into the store. Feed failures abort
// the cycle; record-level failures are logged and skipped so one bad record
// cannot block the batch.
type Engine struct {
	graph  *graph.Client
	store  storage.Store
	dump   *storage.JsonlDump
	cfg    Config
	logger *zap.Logger
}

// NewEngine builds an Engine. dump may be nil to disable candidate dumping.
func NewEngine(cfg Config, graphClient *graph.Client, store storage.Store, dump *storage.JsonlDump, logger *zap.Logger) *Engine {
	if cfg.Lookback <= 0 {
		cfg.Lookback = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		graph:  graphClient,
		store:  store,
		dump:   dump,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes one full cycle: recent positions, then swaps per pool when
// configured. Returns the counts of newly inserted records.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	inserted, pools, err := e.syncPositionCandidates(ctx, e.fetchRecent)
	if err != nil {
		return stats, err
	}
	stats.Positions = inserted
	stats.Pools = len(pools)

	if e.cfg.WithSwaps {
		for _, poolID := range pools {
			count, err := e.SyncSwaps(ctx, poolID)
			if err != nil {
				return stats, fmt.Errorf("sync swaps for pool %s: %w", poolID, err)
			}
			stats.Swaps += count
		}
	}

	return stats, nil
}

// SyncPositions runs one position cycle against the watermark and returns
// the number of newly inserted positions.
func (e *Engine) SyncPositions(ctx context.Context) (int, error) {
	inserted, _, err := e.syncPositionCandidates(ctx, e.fetchRecent)
	return inserted, err
}

// SyncOwnerPositions syncs the positions of a single owner address.
func (e *Engine) SyncOwnerPositions(ctx context.Context, owner string) (int, error) {
	inserted, _, err := e.syncPositionCandidates(ctx, func(ctx context.Context) ([]graph.PositionCandidate, error) {
		return e.graph.PositionsByOwner(ctx, owner)
	})
	return inserted, err
}

// SyncPoolPositions syncs the positions of a single pool.
func (e *Engine) SyncPoolPositions(ctx context.Context, poolID string) (int, error) {
	inserted, _, err := e.syncPositionCandidates(ctx, func(ctx context.Context) ([]graph.PositionCandidate, error) {
		return e.graph.PositionsByPool(ctx, poolID)
	})
	return inserted, err
}

// SyncSwaps fetches swaps for a pool since the watermark and inserts them
// idempotently. Returns the number of newly inserted swaps.
func (e *Engine) SyncSwaps(ctx context.Context, poolID string) (int, error) {
	since := time.Now().UTC().Add(-e.cfg.Lookback)

	candidates, err := e.graph.RecentSwaps(ctx, poolID, since)
	if err != nil {
		return 0, fmt.Errorf("fetch recent swaps: %w", err)
	}

	e.logger.Info("fetched swaps",
		zap.Int("count", len(candidates)),
		zap.String("pool", poolID),
		zap.Time("since", since),
	)

	if e.dump != nil {
		if err := e.dump.PutSwapCandidates(candidates); err != nil {
			e.logger.Warn("dump swap candidates", zap.Error(err))
		}
	}

	inserted := 0
	for _, candidate := range candidates {
		swap, err := candidate.Parse()
		if err != nil {
			e.logger.Warn("skip swap", zap.String("id", candidate.ID), zap.Error(err))
			continue
		}

		created, err := e.store.UpsertSwap(ctx, swap)
		if err != nil {
			e.logger.Warn("insert swap", zap.String("id", candidate.ID), zap.Error(err))
			continue
		}
		if created {
			inserted++
			e.logger.Debug("inserted swap", zap.String("id", candidate.ID))
		}
	}

	e.logger.Info("swap sync complete", zap.String("pool", poolID), zap.Int("inserted", inserted))
	return inserted, nil
}

func (e *Engine) fetchRecent(ctx context.Context) ([]graph.PositionCandidate, error) {
	since := time.Now().UTC().Add(-e.cfg.Lookback)
	return e.graph.RecentPositions(ctx, since)
}

// syncPositionCandidates runs the shared reconcile loop: ensure the pool,
// then insert the position keyed by its external identity. Returns the
// number of newly inserted positions and the distinct pools seen.
func (e *Engine) syncPositionCandidates(ctx context.Context, fetch func(context.Context) ([]graph.PositionCandidate, error)) (int, []string, error) {
	candidates, err := fetch(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch positions: %w", err)
	}

	e.logger.Info("fetched positions", zap.Int("count", len(candidates)))

	if e.dump != nil {
		if err := e.dump.PutPositionCandidates(candidates); err != nil {
			e.logger.Warn("dump position candidates", zap.Error(err))
		}
	}

	inserted := 0
	poolSeen := make(map[string]struct{})
	pools := make([]string, 0)

	for _, candidate := range candidates {
		pool, err := candidate.Pool.Parse()
		if err != nil {
			e.logger.Warn("skip position: bad pool metadata",
				zap.String("id", candidate.ID),
				zap.String("pool", candidate.Pool.ID),
				zap.Error(err),
			)
			continue
		}

		// The position references the pool, so a failed pool upsert
		// short-circuits the position too.
		if err := e.store.UpsertPool(ctx, pool); err != nil {
			e.logger.Warn("skip position: pool upsert failed",
				zap.String("id", candidate.ID),
				zap.String("pool", pool.PoolID),
				zap.Error(err),
			)
			continue
		}

		if _, ok := poolSeen[pool.PoolID]; !ok {
			poolSeen[pool.PoolID] = struct{}{}
			pools = append(pools, pool.PoolID)
		}

		position, err := candidate.Parse()
		if err != nil {
			e.logger.Warn("skip position", zap.String("id", candidate.ID), zap.Error(err))
			continue
		}

		created, err := e.store.UpsertPosition(ctx, position)
		if err != nil {
			e.logger.Warn("insert position", zap.String("id", candidate.ID), zap.Error(err))
			continue
		}
		if created {
			inserted++
			e.logger.Debug("inserted position", zap.String("id", candidate.ID))
		} else {
			e.logger.Debug("position already synced", zap.String("id", candidate.ID))
		}
	}

	e.logger.Info("position sync complete", zap.Int("inserted", inserted), zap.Int("pools", len(pools)))
	return inserted, pools, nil
}
