package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	mid "github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/storage"
	"github.com/astrea-space/astrea/backend/internal/util"

	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	ioloader "github.com/astrea-space/astrea/backend/pkg/loader/io"
	"github.com/astrea-space/astrea/backend/pkg/loader/pdf"
	s3loader "github.com/astrea-space/astrea/backend/pkg/loader/s3"
	"github.com/astrea-space/astrea/backend/pkg/logger"
	"github.com/astrea-space/astrea/backend/pkg/logger/console"
	"github.com/astrea-space/astrea/backend/pkg/store"
	storeneo4j "github.com/astrea-space/astrea/backend/pkg/store/neo4j"
	"github.com/astrea-space/astrea/backend/pkg/store/pgvector"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// The indexer walks the publication corpus once and runs every PDF
// through the full ingestion pipeline. Intended for initial corpus
// loads and re-indexing after schema changes.
func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if util.GetEnv("AI_EMBED_KEY") == "" || util.GetEnv("DATABASE_URL") == "" {
		logger.Fatal("AI_EMBED_KEY and DATABASE_URL must be set")
	}

	ctx := context.Background()

	aiClient, err := mid.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}
	embedder, err := mid.NewEmbeddingClientFromEnv(ctx)
	if err != nil {
		logger.Fatal("Could not create embedding client", "err", err)
	}

	poolConfig, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to parse database config", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pgConn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

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
		logger.Warn("NEO4J_URI is not set, knowledge-graph extraction is disabled")
	}

	pipeline := graph.NewPipeline(graph.NewPipelineParams{
		Client:     aiClient,
		Embedder:   embedder,
		Vectors:    pgvector.NewVectorDBStorage(pgConn),
		GraphStore: graphStore,
	})

	buildKG := util.GetEnvBool("BUILD_KG", true)

	type indexTarget struct {
		path   string
		loader loader.GraphFileLoader
	}
	targets := make([]indexTarget, 0)

	if s3Client := storage.NewS3Client(ctx); s3Client != nil {
		bucket := util.GetEnv("AWS_BUCKET")
		keys, err := storage.ListFilesWithPrefix(ctx, s3Client, "")
		if err != nil {
			logger.Fatal("Failed to list bucket objects", "err", err)
		}
		s3l := s3loader.NewS3GraphFileLoaderWithClient(bucket, s3Client)
		for _, key := range keys {
			if strings.EqualFold(filepath.Ext(key), ".pdf") {
				targets = append(targets, indexTarget{path: key, loader: s3l})
			}
		}
	} else {
		dir := util.GetEnvString("DOCUMENTS_DIR", "documents")
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Fatal("Failed to read documents directory", "dir", dir, "err", err)
		}
		iol := ioloader.NewIOGraphFileLoader()
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				continue
			}
			targets = append(targets, indexTarget{path: filepath.Join(dir, entry.Name()), loader: iol})
		}
	}

	if len(targets) == 0 {
		logger.Warn("No PDF documents found, nothing to index")
		return
	}

	logger.Info("Indexing documents", "count", len(targets), "buildKg", buildKG)

	processed := 0
	failed := 0
	for _, target := range targets {
		base := filepath.Base(target.path)
		docID := strings.TrimSuffix(base, filepath.Ext(base))

		file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{
			ID:       docID,
			FilePath: target.path,
			Loader:   pdf.NewPDFGraphLoader(target.loader),
		})

		result, err := pipeline.ProcessFile(ctx, graph.ProcessFileParams{
			File: file,
			Source: common.SourceRef{
				DocID: docID,
				Title: docID,
			},
			BuildGraph: buildKG,
		})
		if err != nil {
			logger.Error("Failed to index document", "doc", target.path, "err", err)
			failed++
			continue
		}

		processed++
		logger.Info("Document indexed",
			"docId", docID,
			"chunks", result.ChunksCreated,
			"triples", result.TriplesExtracted,
		)
	}

	logger.Info("Indexing finished", "processed", processed, "failed", failed)
}
