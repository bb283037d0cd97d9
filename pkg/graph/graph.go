package graph

import (
	"context"
	"fmt"

	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	"github.com/astrea-space/astrea/backend/pkg/logger"
	"github.com/astrea-space/astrea/backend/pkg/splitter"
	"github.com/astrea-space/astrea/backend/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 100
	defaultParallelMax = 5
)

// Pipeline runs the document ingestion flow: load, chunk, extract
// triples into the knowledge graph, embed, and index for retrieval.
type Pipeline struct {
	client     ai.GraphAIClient
	embedder   ai.EmbeddingClient
	vectors    store.VectorStorage
	graphStore store.GraphStorage
	splitter   *splitter.Splitter

	batchSize   int
	parallelMax int
}

// NewPipelineParams contains the dependencies for a Pipeline. GraphStore
// may be nil, in which case graph building is skipped entirely.
type NewPipelineParams struct {
	Client      ai.GraphAIClient
	Embedder    ai.EmbeddingClient
	Vectors     store.VectorStorage
	GraphStore  store.GraphStorage
	Splitter    *splitter.Splitter
	BatchSize   int
	ParallelMax int
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	parallelMax := params.ParallelMax
	if parallelMax <= 0 {
		parallelMax = defaultParallelMax
	}
	split := params.Splitter
	if split == nil {
		split = splitter.NewSplitter(splitter.DefaultChunkSize, splitter.DefaultChunkOverlap)
	}

	return &Pipeline{
		client:      params.Client,
		embedder:    params.Embedder,
		vectors:     params.Vectors,
		graphStore:  params.GraphStore,
		splitter:    split,
		batchSize:   batchSize,
		parallelMax: parallelMax,
	}
}

// ProcessFileParams describes a single ingestion request.
type ProcessFileParams struct {
	File       loader.GraphFile
	Source     common.SourceRef
	BuildGraph bool
}

// ProcessResult summarizes what a ProcessFile call produced.
type ProcessResult struct {
	ChunksCreated    int
	ContentLength    int
	TriplesExtracted int
}

// ProcessFile loads a file, splits it into chunks, optionally merges
// extracted triples into the knowledge graph, and indexes the chunks in
// the vector store. Graph building runs before vector indexing so a
// vector hit never references a document the graph has not seen.
func (p *Pipeline) ProcessFile(ctx context.Context, params ProcessFileParams) (*ProcessResult, error) {
	text, err := params.File.GetText(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", params.File.FilePath, err)
	}

	chunks, err := p.chunksFromText(string(text), params.Source)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &ProcessResult{}, nil
	}

	logger.Info("[Graph][ProcessFile] Processing document",
		"docId", params.Source.DocID,
		"chunks", len(chunks),
		"chars", len(text),
	)

	triples := 0
	if params.BuildGraph && p.graphStore != nil {
		triples, err = p.buildGraph(ctx, chunks)
		if err != nil {
			return nil, err
		}
	}

	if err := p.indexChunks(ctx, chunks); err != nil {
		return nil, err
	}

	return &ProcessResult{
		ChunksCreated:    len(chunks),
		ContentLength:    len(text),
		TriplesExtracted: triples,
	}, nil
}

func (p *Pipeline) chunksFromText(text string, source common.SourceRef) ([]common.Chunk, error) {
	parts := p.splitter.Split(text)
	chunks := make([]common.Chunk, 0, len(parts))
	for _, part := range parts {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate chunk ID: %w", err)
		}
		chunks = append(chunks, common.Chunk{
			ID:     id,
			Text:   part,
			Source: source,
		})
	}
	return chunks, nil
}

// buildGraph extracts triples chunk by chunk and merges them into the
// graph store in batches. A chunk whose extraction fails (bad JSON,
// upstream error) contributes zero triples and ingestion continues;
// only store write failures abort the run.
func (p *Pipeline) buildGraph(ctx context.Context, chunks []common.Chunk) (int, error) {
	total := 0
	batch := make([]common.Triple, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.graphStore.UpsertTriples(ctx, batch); err != nil {
			return fmt.Errorf("failed to write triples: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, chunk := range chunks {
		triples, err := extractFromChunk(ctx, chunk, p.client)
		if err != nil {
			logger.Warn("[Graph][buildGraph] Skipping chunk after extraction failure",
				"chunk", chunk.ID,
				"error", err,
			)
			continue
		}

		batch = append(batch, triples...)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// indexChunks embeds all chunks with bounded concurrency and writes them
// to the vector store in one upsert.
func (p *Pipeline) indexChunks(ctx context.Context, chunks []common.Chunk) error {
	embeddings := make([][]float32, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelMax)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedding, err := p.embedder.GenerateEmbedding(gCtx, []byte(chunk.Text))
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
			}
			embeddings[i] = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return p.vectors.UpsertChunks(ctx, chunks, embeddings)
}
