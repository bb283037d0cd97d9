package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/astrea-space/astrea/backend/internal/session"
	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
)

type chatCall struct {
	messages      []ai.ChatMessage
	systemPrompts []string
}

type scriptedAIClient struct {
	rewriteAnswer string
	chatAnswer    string
	entityAnswer  string
	rewriteErr    error
	chatErr       error

	rewriteCalls  []chatCall
	composeCalls  []chatCall
	entityCalls   int
	entityPrompts []string
}

func (c *scriptedAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	options := ai.GenerateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	call := chatCall{messages: messages, systemPrompts: options.SystemPrompts}
	if len(options.SystemPrompts) > 0 && options.SystemPrompts[0] == ai.RewritePrompt {
		c.rewriteCalls = append(c.rewriteCalls, call)
		if c.rewriteErr != nil {
			return "", c.rewriteErr
		}
		return c.rewriteAnswer, nil
	}

	c.composeCalls = append(c.composeCalls, call)
	if c.chatErr != nil {
		return "", c.chatErr
	}
	return c.chatAnswer, nil
}

func (c *scriptedAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	c.entityCalls++
	c.entityPrompts = append(c.entityPrompts, prompt)
	return c.entityAnswer, nil
}

func (c *scriptedAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return nil
}

func (c *scriptedAIClient) ResetMetrics() {}

func (c *scriptedAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type staticEmbedder struct{}

func (e *staticEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

type scriptedVectorStore struct {
	matches []common.VectorMatch
}

func (s *scriptedVectorStore) UpsertChunks(ctx context.Context, chunks []common.Chunk, embeddings [][]float32) error {
	return nil
}

func (s *scriptedVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]common.VectorMatch, error) {
	return s.matches, nil
}

type scriptedGraphStore struct {
	data    *common.GraphData
	failing bool
	queries [][]string
}

func (s *scriptedGraphStore) EnsureConstraints(ctx context.Context) error { return nil }

func (s *scriptedGraphStore) UpsertTriples(ctx context.Context, triples []common.Triple) error {
	return nil
}

func (s *scriptedGraphStore) QueryPaths(ctx context.Context, names []string, limit int) (*common.GraphData, error) {
	s.queries = append(s.queries, names)
	if s.failing {
		return nil, fmt.Errorf("graph unavailable")
	}
	if s.data != nil {
		return s.data, nil
	}
	return &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}, nil
}

func (s *scriptedGraphStore) Close(ctx context.Context) error { return nil }

func matchesFor(texts ...string) []common.VectorMatch {
	matches := make([]common.VectorMatch, 0, len(texts))
	for i, text := range texts {
		matches = append(matches, common.VectorMatch{
			ID:    fmt.Sprintf("m%d", i),
			Score: 0.9,
			Text:  text,
		})
	}
	return matches
}

func newTestService(client *scriptedAIClient, vectors *scriptedVectorStore, graphStore *scriptedGraphStore) *Service {
	params := NewServiceParams{
		Client:   client,
		Embedder: &staticEmbedder{},
		Vectors:  vectors,
		Sessions: session.NewMemoryStore(10),
	}
	if graphStore != nil {
		params.GraphStore = graphStore
	}
	return NewService(params)
}

func TestChatEmptyContextReturnsFallback(t *testing.T) {
	client := &scriptedAIClient{rewriteAnswer: "What is microgravity?"}
	graphStore := &scriptedGraphStore{}
	svc := newTestService(client, &scriptedVectorStore{}, graphStore)

	result, err := svc.Chat(context.Background(), "", "What is the effect of microgravity on plant roots?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Answer != FallbackAnswer {
		t.Fatalf("unexpected answer: got %q, want %q", result.Answer, FallbackAnswer)
	}
	if len(client.composeCalls) != 0 {
		t.Fatalf("compose LLM call issued despite empty context: %d calls", len(client.composeCalls))
	}
	if result.Graph == nil || len(result.Graph.Nodes) != 0 || len(result.Graph.Edges) != 0 {
		t.Fatalf("unexpected graph payload: %+v", result.Graph)
	}
	if client.entityCalls != 0 {
		t.Fatalf("entity identification ran despite empty context")
	}
}

func TestChatComposeMessageCount(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "What happened to Bion-M1 mice?",
		chatAnswer:    "Key Findings: bone density decreased.",
		entityAnswer:  "Bion-M1, SF group",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("Bion-M1 carried mice.", "Bone density decreased.")}
	svc := newTestService(client, vectors, &scriptedGraphStore{})

	// Seed two turns of history.
	svc.sessions.Append(session.DefaultSessionID,
		ai.ChatMessage{Role: "user", Message: "Hello"},
		ai.ChatMessage{Role: "assistant", Message: "Hi, how can I help?"},
	)

	if _, err := svc.Chat(context.Background(), "", "What about the mice?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.composeCalls) != 1 {
		t.Fatalf("unexpected compose call count: got %d, want 1", len(client.composeCalls))
	}
	call := client.composeCalls[0]

	// system prompt + prior history + new user turn
	total := len(call.systemPrompts) + len(call.messages)
	if total != 2+2 {
		t.Fatalf("unexpected composed message count: got %d, want 4", total)
	}
	if len(call.systemPrompts) != 1 || !strings.Contains(call.systemPrompts[0], "Astrea") {
		t.Fatalf("persona prompt missing from compose call")
	}
	if !strings.Contains(call.systemPrompts[0], "Bion-M1 carried mice.\n\n---\n\nBone density decreased.") {
		t.Fatalf("context block not joined with separator: %q", call.systemPrompts[0])
	}
	if call.messages[len(call.messages)-1].Message != "What about the mice?" {
		t.Fatalf("latest user turn missing from compose call")
	}
}

func TestChatRewriteFailurePropagates(t *testing.T) {
	client := &scriptedAIClient{rewriteErr: fmt.Errorf("model unavailable")}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	svc := newTestService(client, vectors, &scriptedGraphStore{})

	_, err := svc.Chat(context.Background(), "s1", "What about the mice?")
	if err == nil {
		t.Fatalf("expected rewrite failure to propagate")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("rewrite failure not wrapped in returned error: %v", err)
	}
	if len(client.composeCalls) != 0 {
		t.Fatalf("compose ran despite rewrite failure: %d calls", len(client.composeCalls))
	}
	if history := svc.sessions.Get("s1"); len(history) != 0 {
		t.Fatalf("history grew on a failed turn: %d messages", len(history))
	}
}

func TestChatEmptyRewriteFallsBackToQuestion(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "   ",
		chatAnswer:    "an answer",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	svc := newTestService(client, vectors, nil)

	if _, err := svc.Chat(context.Background(), "", "What about the mice?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.composeCalls) != 1 {
		t.Fatalf("unexpected compose call count: got %d, want 1", len(client.composeCalls))
	}
}

func TestChatGraphLookupUsesOriginalQuestion(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "What happened to the Bion-M1 spaceflight mice cohort?",
		chatAnswer:    "an answer",
		entityAnswer:  "Bion-M1",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	svc := newTestService(client, vectors, &scriptedGraphStore{})

	question := "What about the mice?"
	if _, err := svc.Chat(context.Background(), "", question); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.entityPrompts) != 1 {
		t.Fatalf("unexpected entity prompt count: got %d, want 1", len(client.entityPrompts))
	}
	if !strings.Contains(client.entityPrompts[0], question) {
		t.Fatalf("entity prompt missing the user's question: %q", client.entityPrompts[0])
	}
	if strings.Contains(client.entityPrompts[0], client.rewriteAnswer) {
		t.Fatalf("entity prompt built from the rewritten question: %q", client.entityPrompts[0])
	}
}

func TestChatHistoryGrowth(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "standalone question",
		chatAnswer:    "an answer",
		entityAnswer:  "",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	svc := newTestService(client, vectors, nil)

	turns := 3
	for i := range turns {
		if _, err := svc.Chat(context.Background(), "s1", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("unexpected error on turn %d: %v", i, err)
		}
	}

	history := svc.sessions.Get("s1")
	if len(history) != turns*2 {
		t.Fatalf("unexpected history length: got %d, want %d", len(history), turns*2)
	}
	for i, msg := range history {
		wantRole := "user"
		if i%2 == 1 {
			wantRole = "assistant"
		}
		if msg.Role != wantRole {
			t.Fatalf("unexpected role at %d: got %q, want %q", i, msg.Role, wantRole)
		}
	}
}

func TestChatGraphDegradesToNil(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "standalone question",
		chatAnswer:    "an answer",
		entityAnswer:  "Bion-M1",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	graphStore := &scriptedGraphStore{failing: true}
	svc := newTestService(client, vectors, graphStore)

	result, err := svc.Chat(context.Background(), "", "What about Bion-M1?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "an answer" {
		t.Fatalf("answer was blocked by graph failure: got %q", result.Answer)
	}
	if result.Graph != nil {
		t.Fatalf("expected nil graph on store failure, got %+v", result.Graph)
	}
}

func TestChatWithoutGraphStore(t *testing.T) {
	client := &scriptedAIClient{
		rewriteAnswer: "standalone question",
		chatAnswer:    "an answer",
	}
	vectors := &scriptedVectorStore{matches: matchesFor("some context")}
	svc := newTestService(client, vectors, nil)

	result, err := svc.Chat(context.Background(), "", "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Graph != nil {
		t.Fatalf("expected nil graph without a graph store, got %+v", result.Graph)
	}
	if client.entityCalls != 0 {
		t.Fatalf("entity identification ran without a graph store")
	}
}

func TestFetchGraphPassesEntityNames(t *testing.T) {
	client := &scriptedAIClient{entityAnswer: " Bion-M1 , SF group ,, "}
	graphStore := &scriptedGraphStore{}
	svc := newTestService(client, &scriptedVectorStore{}, graphStore)

	svc.fetchGraph(context.Background(), "question", "some context")

	if len(graphStore.queries) != 1 {
		t.Fatalf("unexpected query count: got %d, want 1", len(graphStore.queries))
	}
	got := graphStore.queries[0]
	want := []string{"Bion-M1", "SF group"}
	if len(got) != len(want) {
		t.Fatalf("unexpected entity names: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected entity name at %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
