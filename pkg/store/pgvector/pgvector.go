package pgvector

import (
	"context"
	"fmt"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// VectorDBStorage implements store.VectorStorage on Postgres with the
// pgvector extension. Chunks live in the documents table created by the
// migrations; similarity is cosine distance.
type VectorDBStorage struct {
	conn *pgxpool.Pool
}

// NewVectorDBStorage creates a vector store backed by the given pool.
// The pool must have pgvector types registered (see server init).
func NewVectorDBStorage(conn *pgxpool.Pool) *VectorDBStorage {
	return &VectorDBStorage{conn: conn}
}

// UpsertChunks persists embedded chunks in a single transaction.
// chunks and embeddings must be parallel slices.
func (s *VectorDBStorage) UpsertChunks(
	ctx context.Context,
	chunks []common.Chunk,
	embeddings [][]float32,
) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	logger.Debug("[Store][UpsertChunks] Upserting chunks", "chunks", len(chunks))

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, chunk := range chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (id, text, doc_id, title, url, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				text = EXCLUDED.text,
				doc_id = EXCLUDED.doc_id,
				title = EXCLUDED.title,
				url = EXCLUDED.url,
				embedding = EXCLUDED.embedding,
				updated_at = now()
		`,
			chunk.ID,
			util.SanitizePostgresText(chunk.Text),
			chunk.Source.DocID,
			chunk.Source.Title,
			chunk.Source.URL,
			pgvector.NewVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Query returns the topK most similar chunks to the given embedding,
// ordered by descending similarity.
func (s *VectorDBStorage) Query(
	ctx context.Context,
	embedding []float32,
	topK int,
) ([]common.VectorMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, text, doc_id, title, url,
			1 - (embedding <=> $1) AS score
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]common.VectorMatch, 0, topK)
	for rows.Next() {
		var m common.VectorMatch
		if err := rows.Scan(&m.ID, &m.Text, &m.Ref.DocID, &m.Ref.Title, &m.Ref.URL, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
