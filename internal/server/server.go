package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/astrea-space/astrea/backend/internal/queue"
	mid "github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/session"
	"github.com/astrea-space/astrea/backend/internal/storage"
	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/chat"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader/web"
	"github.com/astrea-space/astrea/backend/pkg/logger"
	"github.com/astrea-space/astrea/backend/pkg/store"
	storeneo4j "github.com/astrea-space/astrea/backend/pkg/store/neo4j"
	"github.com/astrea-space/astrea/backend/pkg/store/pgvector"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	runMigrations(databaseURL)

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database config", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	aiClient, err := mid.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}
	embedder, err := mid.NewEmbeddingClientFromEnv(ctx)
	if err != nil {
		logger.Fatal("Failed to create embedding client", "err", err)
	}

	var graphStore store.GraphStorage
	if uri := util.GetEnv("NEO4J_URI"); uri != "" {
		neoStore, err := storeneo4j.NewGraphDBStorage(ctx, storeneo4j.NewGraphDBStorageParams{
			URI:      uri,
			User:     util.GetEnv("NEO4J_USER"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
			Database: util.GetEnv("NEO4J_DATABASE"),
		})
		if err != nil {
			logger.Fatal("Failed to connect to Neo4j", "err", err)
		}
		defer neoStore.Close(ctx)
		if err := neoStore.EnsureConstraints(ctx); err != nil {
			logger.Fatal("Failed to ensure Neo4j constraints", "err", err)
		}
		graphStore = neoStore
	} else {
		logger.Warn("NEO4J_URI is not set, knowledge-graph features are disabled")
	}

	vectors := pgvector.NewVectorDBStorage(conn)
	sessions := session.NewMemoryStore(int(util.GetEnvNumeric("CHAT_MAX_SESSIONS", 0)))

	chatService := chat.NewService(chat.NewServiceParams{
		Client:     aiClient,
		Embedder:   embedder,
		Vectors:    vectors,
		GraphStore: graphStore,
		Sessions:   sessions,
	})
	pipeline := graph.NewPipeline(graph.NewPipelineParams{
		Client:     aiClient,
		Embedder:   embedder,
		Vectors:    vectors,
		GraphStore: graphStore,
	})

	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	app := &mid.App{
		DBConn:     conn,
		Queue:      ch,
		Key:        key,
		S3:         s3,
		AiClient:   aiClient,
		Embedder:   embedder,
		Vectors:    vectors,
		GraphStore: graphStore,
		Sessions:   sessions,
		Chat:       chatService,
		Pipeline:   pipeline,
		WebLoader:  web.NewWebGraphLoader(),

		MasterAPIKey:   masterAPIKey,
		MasterUserID:   masterUserID,
		MasterUserRole: masterUserRole,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("50M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations(databaseURL string) {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		logger.Fatal("Failed to create migrator", "err", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
