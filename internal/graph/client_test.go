package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{Schema: SchemaEvents}, nil); err == nil {
		t.Fatalf("missing url must fail")
	}
	if _, err := NewClient(Config{URL: "http://localhost", Schema: "v5"}, nil); err == nil {
		t.Fatalf("unknown schema must fail")
	}
}

func TestPositionsByOwnerRejectsBadAddress(t *testing.T) {
	client, err := NewClient(Config{URL: "http://localhost:1", Schema: SchemaEvents}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.PositionsByOwner(context.Background(), "not-an-address"); err == nil {
		t.Fatalf("invalid owner address must fail before any request")
	}
}

func TestQueryRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data": {"swaps": []}}`)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		URL:          server.URL,
		Schema:       SchemaEvents,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	swaps, err := client.RecentSwaps(context.Background(), "0xpool", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if len(swaps) != 0 {
		t.Fatalf("expected empty result, got %d", len(swaps))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestQuerySendsPageSizeAndWatermark(t *testing.T) {
	var captured struct {
		Variables map[string]interface{} `json:"variables"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"data": {"modifyLiquidities": []}}`)
	}))
	defer server.Close()

	client, err := NewClient(Config{URL: server.URL, Schema: SchemaEvents, PageSize: 25}, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	since := time.Unix(1700000000, 0)
	if _, err := client.RecentPositions(context.Background(), since); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := captured.Variables["first"]; got != float64(25) {
		t.Fatalf("first = %v, want 25", got)
	}
	if got := captured.Variables["timestamp"]; got != "1700000000" {
		t.Fatalf("timestamp = %v, want 1700000000", got)
	}
}
