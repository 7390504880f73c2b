package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"positionscope/internal/graph"
	"positionscope/internal/model"
	"positionscope/internal/storage"
)

const eventPositionsPayload = `{
  "data": {
    "modifyLiquidities": [
      {
        "id": "pos-1",
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
      },
      {
        "id": "pos-2",
        "timestamp": "1700000100",
        "pool": {
          "id": "0xpool",
          "token0": {"id": "0xtoken0"},
          "token1": {"id": "0xtoken1"},
          "feeTier": "3000",
          "tickSpacing": "60"
        },
        "tickLower": "-500",
        "tickUpper": "500",
        "amount": "7000000",
        "origin": "0xdef"
      }
    ]
  }
}`

const swapsPayload = `{
  "data": {
    "swaps": [
      {
        "id": "swap-1",
        "transaction": {"id": "0xtx1", "timestamp": "1700000050"},
        "pool": {"id": "0xpool"},
        "amount0": "1000",
        "amount1": "-900"
      }
    ]
  }
}`

func newFeedServer(t *testing.T, positionsPayload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "swaps(") {
			fmt.Fprint(w, swapsPayload)
			return
		}
		fmt.Fprint(w, positionsPayload)
	}))
}

func newTestEngine(t *testing.T, url string, schema graph.SchemaVersion, store storage.Store) *Engine {
	t.Helper()
	client, err := graph.NewClient(graph.Config{
		URL:        url,
		Schema:     schema,
		MaxRetries: 0,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewEngine(Config{Lookback: time.Hour, WithSwaps: true}, client, store, nil, zap.NewNop())
}

func TestRunSyncsPositionsAndSwaps(t *testing.T) {
	server := newFeedServer(t, eventPositionsPayload)
	defer server.Close()

	store := storage.NewMemory()
	engine := newTestEngine(t, server.URL, graph.SchemaEvents, store)

	stats, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Positions != 2 {
		t.Fatalf("positions = %d, want 2", stats.Positions)
	}
	if stats.Swaps != 1 {
		t.Fatalf("swaps = %d, want 1", stats.Swaps)
	}
	if stats.Pools != 1 {
		t.Fatalf("pools = %d, want 1", stats.Pools)
	}
	if store.PoolCount() != 1 {
		t.Fatalf("stored pools = %d, want 1", store.PoolCount())
	}
}

func TestRunIsIdempotent(t *testing.T) {
	server := newFeedServer(t, eventPositionsPayload)
	defer server.Close()

	store := storage.NewMemory()
	engine := newTestEngine(t, server.URL, graph.SchemaEvents, store)

	if _, err := engine.Run(context.Background()); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	stats, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	if stats.Positions != 0 {
		t.Fatalf("second cycle inserted %d positions, want 0", stats.Positions)
	}
	if stats.Swaps != 0 {
		t.Fatalf("second cycle inserted %d swaps, want 0", stats.Swaps)
	}
	if got := len(store.Positions()); got != 2 {
		t.Fatalf("stored positions = %d, want 2", got)
	}
}

func TestMalformedRecordIsSkipped(t *testing.T) {
	payload := strings.Replace(eventPositionsPayload, `"tickLower": "-500"`, `"tickLower": "abc"`, 1)
	server := newFeedServer(t, payload)
	defer server.Close()

	store := storage.NewMemory()
	engine := newTestEngine(t, server.URL, graph.SchemaEvents, store)

	inserted, err := engine.SyncPositions(context.Background())
	if err != nil {
		t.Fatalf("batch must survive one bad record: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}
}

type failingPoolStore struct {
	*storage.Memory
}

func (f *failingPoolStore) UpsertPool(context.Context, model.Pool) error {
	return fmt.Errorf("pool table unavailable")
}

func TestPoolFailureSkipsDependentPosition(t *testing.T) {
	server := newFeedServer(t, eventPositionsPayload)
	defer server.Close()

	store := &failingPoolStore{Memory: storage.NewMemory()}
	engine := newTestEngine(t, server.URL, graph.SchemaEvents, store)

	inserted, err := engine.SyncPositions(context.Background())
	if err != nil {
		t.Fatalf("pool failures are record-level: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("inserted = %d, want 0", inserted)
	}
	if got := len(store.Positions()); got != 0 {
		t.Fatalf("positions must not outlive their pool, got %d", got)
	}
}

func TestFeedFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "subgraph down", http.StatusBadGateway)
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, graph.SchemaEvents, storage.NewMemory())

	if _, err := engine.SyncPositions(context.Background()); err == nil {
		t.Fatalf("expected error for failing feed")
	}
}

func TestFeedErrorsAreFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errors": [{"message": "field does not exist"}]}`)
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL, graph.SchemaEvents, storage.NewMemory())

	_, err := engine.SyncPositions(context.Background())
	if err == nil {
		t.Fatalf("expected error for feed-level errors")
	}
	if !strings.Contains(err.Error(), "field does not exist") {
		t.Fatalf("error should carry feed message, got: %v", err)
	}
}

const legacyPositionsPayload = `{
  "data": {
    "positions": [
      {
        "id": "pos-1",
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
  }
}`

func TestLegacySchemaSyncs(t *testing.T) {
	server := newFeedServer(t, legacyPositionsPayload)
	defer server.Close()

	store := storage.NewMemory()
	engine := newTestEngine(t, server.URL, graph.SchemaLegacy, store)

	inserted, err := engine.SyncPositions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d, want 1", inserted)
	}

	positions := store.Positions()
	if positions[0].Owner != "0xabc" || positions[0].TickLower != -1000 {
		t.Fatalf("legacy record mangled: %+v", positions[0])
	}
}
