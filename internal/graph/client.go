package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Config holds client settings.
type Config struct {
	URL          string
	Schema       SchemaVersion
	PageSize     int
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client queries a subgraph endpoint and normalizes the results into
// schema-independent candidates.
type Client struct {
	httpClient   *http.Client
	url          string
	schema       SchemaVersion
	pageSize     int
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("graph url is required")
	}
	if !cfg.Schema.Valid() {
		return nil, fmt.Errorf("unknown schema version: %s", cfg.Schema)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		url:          cfg.URL,
		schema:       cfg.Schema,
		pageSize:     cfg.PageSize,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
	}, nil
}

// PositionsByOwner fetches position candidates for one owner address.
func (c *Client) PositionsByOwner(ctx context.Context, owner string) ([]PositionCandidate, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("invalid owner address: %s", owner)
	}

	variables := map[string]interface{}{
		"owner": strings.ToLower(owner),
		"first": c.pageSize,
	}

	return c.queryPositions(ctx, legacyPositionsByOwner, eventPositionsByOwner, variables)
}

// PositionsByPool fetches position candidates for one pool.
func (c *Client) PositionsByPool(ctx context.Context, poolID string) ([]PositionCandidate, error) {
	variables := map[string]interface{}{
		"poolId": strings.ToLower(poolID),
		"first":  c.pageSize,
	}

	return c.queryPositions(ctx, legacyPositionsByPool, eventPositionsByPool, variables)
}

// RecentPositions fetches position candidates at or after the watermark.
func (c *Client) RecentPositions(ctx context.Context, since time.Time) ([]PositionCandidate, error) {
	variables := map[string]interface{}{
		"timestamp": strconv.FormatInt(since.Unix(), 10),
		"first":     c.pageSize,
	}

	return c.queryPositions(ctx, legacyRecentPositions, eventRecentPositions, variables)
}

// RecentSwaps fetches swap candidates for one pool at or after the watermark.
func (c *Client) RecentSwaps(ctx context.Context, poolID string, since time.Time) ([]SwapCandidate, error) {
	variables := map[string]interface{}{
		"poolId":    strings.ToLower(poolID),
		"timestamp": strconv.FormatInt(since.Unix(), 10),
		"first":     c.pageSize,
	}

	var data swapsData
	if err := c.query(ctx, recentSwaps, variables, &data); err != nil {
		return nil, err
	}
	return normalizeSwaps(data), nil
}

func (c *Client) queryPositions(ctx context.Context, legacyQuery, eventQuery string, variables map[string]interface{}) ([]PositionCandidate, error) {
	if c.schema == SchemaEvents {
		var data modifyLiquiditiesData
		if err := c.query(ctx, eventQuery, variables, &data); err != nil {
			return nil, err
		}
		return normalizeModifyLiquidities(data), nil
	}

	var data legacyPositionsData
	if err := c.query(ctx, legacyQuery, variables, &data); err != nil {
		return nil, err
	}
	return normalizeLegacyPositions(data), nil
}

// query posts the request and decodes the envelope into out. Transport
// failures are retried with backoff; application-level errors in the
// envelope are not.
func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var env envelope
	err = c.withRetry(ctx, func(ctx context.Context) error {
		env, err = c.post(ctx, body)
		if err != nil {
			c.logger.Warn("graph query failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return err
	}

	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		for _, queryErr := range env.Errors {
			messages = append(messages, queryErr.Message)
		}
		return fmt.Errorf("graph errors: %s", strings.Join(messages, ", "))
	}

	if env.Data == nil {
		return fmt.Errorf("no data in graph response")
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode graph data: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return envelope{}, fmt.Errorf("graph request failed with status %d: %s", resp.StatusCode, string(text))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("parse graph response: %w", err)
	}
	return env, nil
}

func (c *Client) withRetry(ctx context.Context, fn func(context.Context) error) error {
	delay := c.retryBackoff

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= c.maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
