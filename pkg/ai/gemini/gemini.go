package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/ai"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultDimensions = 768

// GraphGeminiClient produces vector embeddings via the Google Generative AI
// API. It implements ai.EmbeddingClient; chat generation stays with the
// OpenAI-compatible providers.
type GraphGeminiClient struct {
	embeddingModel string
	timeoutMin     int

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGraphGeminiClientParams contains configuration for creating a GraphGeminiClient.
type NewGraphGeminiClientParams struct {
	EmbeddingModel string
	ApiKey         string
	TimeoutMin     int
}

// NewGraphGeminiClient creates a Gemini embedding client.
//
// Example:
//
//	client, err := gemini.NewGraphGeminiClient(ctx, gemini.NewGraphGeminiClientParams{
//		EmbeddingModel: "text-embedding-004",
//		ApiKey:         os.Getenv("AI_EMBED_KEY"),
//	})
func NewGraphGeminiClient(ctx context.Context, params NewGraphGeminiClientParams) (*GraphGeminiClient, error) {
	if params.ApiKey == "" {
		return nil, fmt.Errorf("API key must not be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(params.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	embeddingModel := params.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}
	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 2
	}

	return &GraphGeminiClient{
		embeddingModel: embeddingModel,
		timeoutMin:     timeoutMin,
		client:         client,
		model:          client.EmbeddingModel(embeddingModel),
	}, nil
}

// GenerateEmbedding creates a vector embedding for the given input text.
// Empty input maps to a zero vector without hitting the API.
func (c *GraphGeminiClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(input) == 0 || len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	start := time.Now()
	res, err := c.model.EmbedContent(rCtx, genai.Text(string(input)))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	duration := time.Since(start).Milliseconds()

	c.modifyMetrics(ai.ModelMetrics{DurationMs: duration})

	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned from gemini")
	}

	out := make([]float32, 0, dim)
	for _, v := range res.Embedding.Values {
		if len(out) >= dim {
			break
		}
		out = append(out, v)
	}
	if len(out) < dim {
		padded := make([]float32, dim)
		copy(padded, out)
		out = padded
	}
	return out, nil
}

// ResetMetrics clears accumulated timing metrics.
func (c *GraphGeminiClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns accumulated timing metrics since the last reset.
func (c *GraphGeminiClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *GraphGeminiClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}

// Close releases the underlying API client.
func (c *GraphGeminiClient) Close() error {
	return c.client.Close()
}
