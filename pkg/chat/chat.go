package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrea-space/astrea/backend/internal/session"
	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/store"
)

const defaultTopK = 10

// Service runs the retrieval-augmented chat flow: rewrite the question,
// retrieve context passages, compose an answer, and fetch the related
// knowledge subgraph for visualization.
type Service struct {
	client     ai.GraphAIClient
	embedder   ai.EmbeddingClient
	vectors    store.VectorStorage
	graphStore store.GraphStorage
	sessions   session.Store
	topK       int
}

// NewServiceParams contains the dependencies for a chat Service.
// GraphStore may be nil; chat then answers without a graph payload.
type NewServiceParams struct {
	Client     ai.GraphAIClient
	Embedder   ai.EmbeddingClient
	Vectors    store.VectorStorage
	GraphStore store.GraphStorage
	Sessions   session.Store
	TopK       int
}

// NewService creates a chat service.
func NewService(params NewServiceParams) *Service {
	topK := params.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Service{
		client:     params.Client,
		embedder:   params.Embedder,
		vectors:    params.Vectors,
		graphStore: params.GraphStore,
		sessions:   params.Sessions,
		topK:       topK,
	}
}

// Result is the outcome of one chat turn. Graph is nil when the graph
// store is unconfigured or its query failed. Grounded reports whether
// the answer was composed by the model from retrieved context, as
// opposed to a fallback sentence.
type Result struct {
	Answer   string            `json:"answer"`
	Graph    *common.GraphData `json:"graph"`
	Grounded bool              `json:"-"`
}

// Chat answers a question within a session. The question and answer are
// appended to the session history afterwards, so the history always
// grows by two turns per successful call.
func (s *Service) Chat(ctx context.Context, sessionID, question string) (*Result, error) {
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}
	history := s.sessions.Get(sessionID)

	rewritten, err := s.transformQuery(ctx, history, question)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite question: %w", err)
	}

	contextBlock, err := s.retrieveContext(ctx, rewritten)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	answer, grounded, err := s.composeAnswer(ctx, history, question, contextBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to compose answer: %w", err)
	}

	graph := s.fetchGraph(ctx, question, contextBlock)

	s.sessions.Append(sessionID,
		ai.ChatMessage{Role: "user", Message: question},
		ai.ChatMessage{Role: "assistant", Message: answer},
	)

	return &Result{Answer: answer, Graph: graph, Grounded: grounded}, nil
}

// transformQuery rewrites the latest question into a standalone one
// using the chat history. Transport and model errors propagate to the
// caller; only an empty rewrite degrades to the original question.
func (s *Service) transformQuery(ctx context.Context, history []ai.ChatMessage, question string) (string, error) {
	messages := make([]ai.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{Role: "user", Message: question})

	rewritten, err := s.client.GenerateChat(ctx, messages, ai.WithSystemPrompts(ai.RewritePrompt))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rewritten) == "" {
		return question, nil
	}
	return rewritten, nil
}
