package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	"github.com/astrea-space/astrea/backend/pkg/splitter"
)

type fakeAIClient struct {
	// payloads maps a substring of the prompt to the JSON the model
	// would return for it.
	payloads map[string]string
	failOn   string
	calls    int
}

func (c *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (c *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	c.calls++
	if c.failOn != "" && strings.Contains(prompt, c.failOn) {
		return fmt.Errorf("model returned invalid JSON")
	}
	for key, payload := range c.payloads {
		if strings.Contains(prompt, key) {
			return json.Unmarshal([]byte(payload), out)
		}
	}
	return json.Unmarshal([]byte(`{"entities":[],"relations":[]}`), out)
}

func (c *fakeAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (c *fakeAIClient) ResetMetrics() {}

func (c *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type fakeEmbedder struct {
	calls int
}

func (e *fakeEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	e.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeVectorStore struct {
	chunks     []common.Chunk
	embeddings [][]float32
}

func (s *fakeVectorStore) UpsertChunks(ctx context.Context, chunks []common.Chunk, embeddings [][]float32) error {
	s.chunks = append(s.chunks, chunks...)
	s.embeddings = append(s.embeddings, embeddings...)
	return nil
}

func (s *fakeVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]common.VectorMatch, error) {
	return nil, nil
}

type fakeGraphStore struct {
	batches [][]common.Triple
	failing bool
}

func (s *fakeGraphStore) EnsureConstraints(ctx context.Context) error { return nil }

func (s *fakeGraphStore) UpsertTriples(ctx context.Context, triples []common.Triple) error {
	if s.failing {
		return fmt.Errorf("graph store unavailable")
	}
	batch := make([]common.Triple, len(triples))
	copy(batch, triples)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *fakeGraphStore) QueryPaths(ctx context.Context, names []string, limit int) (*common.GraphData, error) {
	return &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}, nil
}

func (s *fakeGraphStore) Close(ctx context.Context) error { return nil }

type staticLoader struct {
	text string
}

func (l *staticLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return []byte(l.text), nil
}

const tripleJSON = `{
	"entities": [
		{"name": "Bion-M1", "type": "Mission"},
		{"name": "SF group", "type": "Group"}
	],
	"relations": [
		{"subject": "Bion-M1", "subjectType": "Mission", "predicate": "HAS_GROUP", "object": "SF group", "objectType": "Group", "confidence": 0.9}
	]
}`

func newTestPipeline(client ai.GraphAIClient, vectors *fakeVectorStore, graphStore *fakeGraphStore, batchSize int) *Pipeline {
	return NewPipeline(NewPipelineParams{
		Client:     client,
		Embedder:   &fakeEmbedder{},
		Vectors:    vectors,
		GraphStore: graphStore,
		Splitter:   splitter.NewSplitter(100, 0),
		BatchSize:  batchSize,
	})
}

func TestProcessFileIndexesAndExtracts(t *testing.T) {
	client := &fakeAIClient{payloads: map[string]string{"Bion-M1": tripleJSON}}
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	p := newTestPipeline(client, vectors, graphStore, 100)

	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{
		ID:       "doc-1",
		FilePath: "bion-m1.pdf",
		Loader:   &staticLoader{text: "The Bion-M1 mission carried a spaceflight group of mice."},
	})

	result, err := p.ProcessFile(context.Background(), ProcessFileParams{
		File:       file,
		Source:     common.SourceRef{DocID: "doc-1", Title: "Bion-M1"},
		BuildGraph: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ChunksCreated != 1 {
		t.Fatalf("unexpected chunk count: got %d, want 1", result.ChunksCreated)
	}
	if result.TriplesExtracted != 1 {
		t.Fatalf("unexpected triple count: got %d, want 1", result.TriplesExtracted)
	}
	if len(vectors.chunks) != 1 {
		t.Fatalf("unexpected indexed chunks: got %d, want 1", len(vectors.chunks))
	}
	if len(vectors.embeddings) != 1 || len(vectors.embeddings[0]) != 3 {
		t.Fatalf("embeddings not stored alongside chunks")
	}
	if len(graphStore.batches) != 1 || len(graphStore.batches[0]) != 1 {
		t.Fatalf("unexpected graph batches: %+v", graphStore.batches)
	}
	if graphStore.batches[0][0].RelType != "HAS_GROUP" {
		t.Fatalf("unexpected relType: got %q", graphStore.batches[0][0].RelType)
	}
}

func TestProcessFileSkipsFailedChunks(t *testing.T) {
	// First paragraph fails extraction, second succeeds. The failure
	// must not abort the run or block vector indexing.
	client := &fakeAIClient{
		payloads: map[string]string{"Bion-M1": tripleJSON},
		failOn:   "unparsable",
	}
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	p := newTestPipeline(client, vectors, graphStore, 100)

	text := "This unparsable paragraph confuses the model badly." +
		"\n\n" +
		"The Bion-M1 mission carried a spaceflight group of mice."

	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{
		ID:       "doc-2",
		FilePath: "mixed.pdf",
		Loader:   &staticLoader{text: text},
	})

	result, err := p.ProcessFile(context.Background(), ProcessFileParams{
		File:       file,
		Source:     common.SourceRef{DocID: "doc-2"},
		BuildGraph: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ChunksCreated != 2 {
		t.Fatalf("unexpected chunk count: got %d, want 2", result.ChunksCreated)
	}
	if result.TriplesExtracted != 1 {
		t.Fatalf("unexpected triple count: got %d, want 1", result.TriplesExtracted)
	}
	if len(vectors.chunks) != 2 {
		t.Fatalf("failed chunk was not indexed: got %d chunks, want 2", len(vectors.chunks))
	}
}

func TestProcessFileWithoutGraphBuild(t *testing.T) {
	client := &fakeAIClient{payloads: map[string]string{"Bion-M1": tripleJSON}}
	vectors := &fakeVectorStore{}
	graphStore := &fakeGraphStore{}
	p := newTestPipeline(client, vectors, graphStore, 100)

	file := loader.NewGraphWebFile(loader.NewGraphFileParams{
		ID:       "url-1",
		FilePath: "https://example.test/article",
		Loader:   &staticLoader{text: "The Bion-M1 mission carried a spaceflight group of mice."},
	})

	result, err := p.ProcessFile(context.Background(), ProcessFileParams{
		File:   file,
		Source: common.SourceRef{DocID: "url-1", URL: "https://example.test/article"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TriplesExtracted != 0 {
		t.Fatalf("graph build ran despite BuildGraph=false")
	}
	if client.calls != 0 {
		t.Fatalf("extraction was called despite BuildGraph=false: %d calls", client.calls)
	}
	if len(graphStore.batches) != 0 {
		t.Fatalf("triples were written despite BuildGraph=false")
	}
	if len(vectors.chunks) != 1 {
		t.Fatalf("chunks were not indexed: got %d, want 1", len(vectors.chunks))
	}
}

func TestBuildGraphFlushesInBatches(t *testing.T) {
	client := &fakeAIClient{payloads: map[string]string{"Bion-M1": tripleJSON}}
	graphStore := &fakeGraphStore{}
	p := newTestPipeline(client, &fakeVectorStore{}, graphStore, 2)

	chunks := []common.Chunk{
		{ID: "c1", Text: "Bion-M1 chunk one"},
		{ID: "c2", Text: "Bion-M1 chunk two"},
		{ID: "c3", Text: "Bion-M1 chunk three"},
	}

	total, err := p.buildGraph(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Fatalf("unexpected total: got %d, want 3", total)
	}
	if len(graphStore.batches) != 2 {
		t.Fatalf("unexpected flush count: got %d, want 2", len(graphStore.batches))
	}
	if len(graphStore.batches[0]) != 2 || len(graphStore.batches[1]) != 1 {
		t.Fatalf("unexpected batch sizes: %d and %d", len(graphStore.batches[0]), len(graphStore.batches[1]))
	}
}

func TestBuildGraphStoreFailureAborts(t *testing.T) {
	client := &fakeAIClient{payloads: map[string]string{"Bion-M1": tripleJSON}}
	graphStore := &fakeGraphStore{failing: true}
	p := newTestPipeline(client, &fakeVectorStore{}, graphStore, 1)

	chunks := []common.Chunk{{ID: "c1", Text: "Bion-M1 chunk"}}

	if _, err := p.buildGraph(context.Background(), chunks); err == nil {
		t.Fatal("expected error from failing graph store, got nil")
	}
}
