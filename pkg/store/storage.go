package store

import (
	"context"

	"github.com/astrea-space/astrea/backend/pkg/common"
)

// VectorStorage defines the interface for the passage vector index.
// Implementations persist embedded document chunks and answer top-K
// similarity queries over them.
type VectorStorage interface {
	UpsertChunks(ctx context.Context, chunks []common.Chunk, embeddings [][]float32) error
	Query(ctx context.Context, embedding []float32, topK int) ([]common.VectorMatch, error)
}

// GraphStorage defines the interface for the knowledge graph database.
// Implementations merge extracted triples into the graph and answer
// path queries for visualization.
type GraphStorage interface {
	EnsureConstraints(ctx context.Context) error
	UpsertTriples(ctx context.Context, triples []common.Triple) error
	QueryPaths(ctx context.Context, names []string, limit int) (*common.GraphData, error)
	Close(ctx context.Context) error
}
