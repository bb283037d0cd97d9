package middleware

import (
	"context"

	"github.com/astrea-space/astrea/backend/internal/session"
	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/ai"
	gemai "github.com/astrea-space/astrea/backend/pkg/ai/gemini"
	oai "github.com/astrea-space/astrea/backend/pkg/ai/ollama"
	gai "github.com/astrea-space/astrea/backend/pkg/ai/openai"
	"github.com/astrea-space/astrea/backend/pkg/chat"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	"github.com/astrea-space/astrea/backend/pkg/store"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App bundles the shared service dependencies built once at startup.
type App struct {
	DBConn     *pgxpool.Pool
	Queue      *amqp091.Channel
	Key        *keyfunc.Keyfunc
	S3         *s3.Client
	AiClient   ai.GraphAIClient
	Embedder   ai.EmbeddingClient
	Vectors    store.VectorStorage
	GraphStore store.GraphStorage
	Sessions   session.Store
	Chat       *chat.Service
	Pipeline   *graph.Pipeline
	WebLoader  loader.GraphFileLoader

	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

// AppContextMiddleware attaches the shared App to every request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}

// NewAIClientFromEnv builds the chat/extraction client selected by the
// AI_ADAPTER environment variable (default "openai").
func NewAIClientFromEnv() (ai.GraphAIClient, error) {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		return oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
		}), nil
	}
}

// NewEmbeddingClientFromEnv builds the embedding client selected by the
// EMBED_ADAPTER environment variable (default "gemini"). Chat and
// embedding providers are configured independently so a local chat model
// can be paired with a hosted embedding API.
func NewEmbeddingClientFromEnv(ctx context.Context) (ai.EmbeddingClient, error) {
	switch util.GetEnv("EMBED_ADAPTER") {
	case "openai":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			EmbeddingURL:   util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey:   util.GetEnv("AI_EMBED_KEY"),
		}), nil
	case "ollama":
		return oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),
		})
	default:
		return gemai.NewGraphGeminiClient(ctx, gemai.NewGraphGeminiClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ApiKey:         util.GetEnv("AI_EMBED_KEY"),
		})
	}
}
