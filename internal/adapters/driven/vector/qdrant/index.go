// Package qdrant provides a VectorIndex backed by a Qdrant server over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// modelKey is the collection metadata key holding the pinned embedding model.
const modelKey = "embedding_model"

// errCollectionMissing is returned by collectionInfo on 404.
var errCollectionMissing = errors.New("qdrant: collection does not exist")

// Config holds configuration for the Qdrant index.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection names the collection (required).
	Collection string

	// Timeout bounds each request (default: 15s).
	Timeout time.Duration

	// RequestsPerSecond throttles calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Index is a cosine-distance Qdrant collection.
type Index struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	apiKey     string
	collection string

	mu        sync.RWMutex
	dimension int
	model     string
}

// payload is the point payload layout.
type payload struct {
	ChunkID string `json:"chunk_id"`
	ItemID  string `json:"item_id"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Title   string `json:"title,omitempty"`
	Source  string `json:"source,omitempty"`
}

type point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload payload   `json:"payload"`
}

type collectionResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
			Metadata map[string]any `json:"metadata"`
		} `json:"config"`
	} `json:"result"`
}

// collectionInfo is what the server knows about the collection.
type collectionInfo struct {
	dimension int
	model     string
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload payload `json:"payload"`
	} `json:"result"`
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// New creates a Qdrant index client. It reads the existing collection dimension
// lazily on first use.
func New(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection name required", domain.ErrInvalidInput)
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.New(cfg.RequestsPerSecond),
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}, nil
}

// Ensure creates the collection if missing and verifies its vector size.
func (x *Index) Ensure(ctx context.Context, dimension int, model string) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}

	info, err := x.fetchInfo(ctx)
	switch {
	case errors.Is(err, errCollectionMissing):
		if err := x.create(ctx, dimension, model); err != nil {
			return err
		}
		info = collectionInfo{dimension: dimension, model: model}
	case err != nil:
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimension = info.dimension
	switch {
	case info.model != "":
		x.model = info.model
	case x.model == "":
		x.model = model
	}
	if info.dimension != dimension {
		return &domain.DimensionMismatchError{Expected: info.dimension, Got: dimension}
	}
	return nil
}

// Reset drops and recreates the collection.
func (x *Index) Reset(ctx context.Context, dimension int, model string) error {
	err := x.do(ctx, http.MethodDelete, x.collectionPath(""), nil, nil)
	if err != nil && !errors.Is(err, errCollectionMissing) {
		return fmt.Errorf("drop collection: %w", err)
	}
	if dimension > 0 {
		if err := x.create(ctx, dimension, model); err != nil {
			return err
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimension = dimension
	x.model = model
	return nil
}

// Upsert writes points and waits for the server to apply them.
func (x *Index) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	dim, err := x.knownDimension(ctx)
	if err != nil {
		return err
	}
	if err := vector.CheckDimensions(dim, records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{
			ID:     r.ID,
			Vector: r.Vector,
			Payload: payload{
				ChunkID: r.ChunkID,
				ItemID:  r.Payload.ItemID,
				Index:   r.Payload.Index,
				Text:    r.Payload.Text,
				Title:   r.Payload.Title,
				Source:  r.Payload.Source,
			},
		}
	}

	body := map[string]any{"points": points}
	if err := x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search runs a cosine search with payloads.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return []domain.Hit{}, nil
	}
	dim, err := x.knownDimension(ctx)
	if errors.Is(err, domain.ErrVectorIndexUnavailable) {
		return []domain.Hit{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(query) != dim {
		return nil, &domain.DimensionMismatchError{Expected: dim, Got: len(query)}
	}

	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp searchResponse
	if err := x.do(ctx, http.MethodPost, x.collectionPath("/points/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	hits := make([]domain.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.Hit{
			ChunkID: r.Payload.ChunkID,
			Score:   r.Score,
			Payload: domain.ChunkPayload{
				ItemID: r.Payload.ItemID,
				Index:  r.Payload.Index,
				Text:   r.Payload.Text,
				Title:  r.Payload.Title,
				Source: r.Payload.Source,
			},
		})
	}
	return hits, nil
}

// Delete removes points by ID.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]any{"points": ids}
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/delete?wait=true"), body, nil)
	if err != nil && !errors.Is(err, errCollectionMissing) {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// Count returns the exact number of points.
func (x *Index) Count(ctx context.Context) (int, error) {
	var resp countResponse
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/count"), map[string]any{"exact": true}, &resp)
	if errors.Is(err, errCollectionMissing) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return resp.Result.Count, nil
}

// Dimension returns the last known collection dimension.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Model returns the pinned model. It is read from the collection metadata
// when the collection was created by an earlier process.
func (x *Index) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func (x *Index) knownDimension(ctx context.Context) (int, error) {
	x.mu.RLock()
	dim := x.dimension
	x.mu.RUnlock()
	if dim > 0 {
		return dim, nil
	}

	info, err := x.fetchInfo(ctx)
	if errors.Is(err, errCollectionMissing) {
		return 0, domain.ErrVectorIndexUnavailable
	}
	if err != nil {
		return 0, err
	}
	x.mu.Lock()
	x.dimension = info.dimension
	if x.model == "" {
		x.model = info.model
	}
	x.mu.Unlock()
	return info.dimension, nil
}

func (x *Index) fetchInfo(ctx context.Context) (collectionInfo, error) {
	var resp collectionResponse
	if err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, &resp); err != nil {
		return collectionInfo{}, err
	}
	info := collectionInfo{dimension: resp.Result.Config.Params.Vectors.Size}
	if m, ok := resp.Result.Config.Metadata[modelKey].(string); ok {
		info.model = m
	}
	return info, nil
}

func (x *Index) create(ctx context.Context, dimension int, model string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if model != "" {
		body["metadata"] = map[string]any{modelKey: model}
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(""), body, nil); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (x *Index) collectionPath(suffix string) string {
	return x.baseURL + "/collections/" + url.PathEscape(x.collection) + suffix
}

func (x *Index) do(ctx context.Context, method, target string, body, out any) error {
	if err := x.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errCollectionMissing
	case resp.StatusCode == http.StatusTooManyRequests:
		x.limiter.BackoffFromHeader(resp.Header.Get("Retry-After"))
		return fmt.Errorf("%w: qdrant rate limited", domain.ErrIndexFailure)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: qdrant %s %s: status %d: %s",
			domain.ErrIndexFailure, method, target, resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrIndexFailure, err)
	}
	return nil
}
