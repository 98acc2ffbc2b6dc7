package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex over the vectors table.
// Search is a brute-force cosine scan of the collection.
type vectorIndex struct {
	store      *Store
	collection string

	mu        sync.RWMutex
	dimension int
	model     string
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

func newVectorIndex(s *Store, collection string) (*vectorIndex, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name required", domain.ErrInvalidInput)
	}
	x := &vectorIndex{store: s, collection: collection}

	row := s.db.QueryRow("SELECT dimension, model FROM vector_collections WHERE name = ?", collection)
	if err := row.Scan(&x.dimension, &x.model); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loading collection %s: %w", collection, err)
	}
	return x, nil
}

// Ensure creates the collection on first use and validates its dimension afterwards.
func (x *vectorIndex) Ensure(ctx context.Context, dimension int, model string) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	_, err := x.store.db.ExecContext(ctx, `
		INSERT INTO vector_collections (name, dimension, model, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, x.collection, dimension, model, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	var existing int
	var existingModel string
	row := x.store.db.QueryRowContext(ctx,
		"SELECT dimension, model FROM vector_collections WHERE name = ?", x.collection)
	if err := row.Scan(&existing, &existingModel); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	x.dimension = existing
	x.model = existingModel
	if existing != dimension {
		return &domain.DimensionMismatchError{Expected: existing, Got: dimension}
	}
	return nil
}

// Reset drops the collection and its vectors, then recreates it.
func (x *vectorIndex) Reset(ctx context.Context, dimension int, model string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_collections WHERE name = ?", x.collection); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	if dimension > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vector_collections (name, dimension, model, created_at) VALUES (?, ?, ?, ?)
		`, x.collection, dimension, model, time.Now().UTC()); err != nil {
			return fmt.Errorf("recreating collection: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	x.dimension = dimension
	x.model = model
	return nil
}

// Upsert stores or replaces vectors by ID in one transaction.
func (x *vectorIndex) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	x.mu.RLock()
	dim := x.dimension
	x.mu.RUnlock()

	if dim == 0 {
		return domain.ErrVectorIndexUnavailable
	}
	if err := vector.CheckDimensions(dim, records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, id, chunk_id, embedding, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			chunk_id = excluded.chunk_id,
			embedding = excluded.embedding,
			payload = excluded.payload
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		payload, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Errorf("marshalling payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, x.collection, r.ID, r.ChunkID,
			float32SliceToBytes(r.Vector), string(payload)); err != nil {
			return fmt.Errorf("saving vector %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scores every vector in the collection and returns the best k.
func (x *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error) {
	x.mu.RLock()
	dim := x.dimension
	x.mu.RUnlock()

	if dim != 0 && len(query) != dim {
		return nil, &domain.DimensionMismatchError{Expected: dim, Got: len(query)}
	}

	rows, err := x.store.db.QueryContext(ctx,
		"SELECT id, chunk_id, embedding, payload FROM vectors WHERE collection = ?", x.collection)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var records []domain.VectorRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.VectorRecord
		var blob []byte
		var payload string
		if err := rows.Scan(&r.ID, &r.ChunkID, &blob, &payload); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload: %w", err)
		}
		r.Vector = bytesToFloat32Slice(blob)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return vector.TopK(query, records, k), nil
}

// Delete removes vectors by ID.
func (x *vectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, x.collection)
	for _, id := range ids {
		args = append(args, id)
	}

	//nolint:gosec // placeholders only, values are bound
	query := "DELETE FROM vectors WHERE collection = ? AND id IN (" + placeholders + ")"
	if _, err := x.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// Count returns the number of vectors in the collection.
func (x *vectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := x.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vectors WHERE collection = ?", x.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Dimension returns the collection dimension, 0 before Ensure.
func (x *vectorIndex) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Model returns the embedding model recorded at creation.
func (x *vectorIndex) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

// Close is a no-op; the owning Store closes the database.
func (x *vectorIndex) Close() error {
	return nil
}
