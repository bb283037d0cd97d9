package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	ioloader "github.com/astrea-space/astrea/backend/pkg/loader/io"
	"github.com/astrea-space/astrea/backend/pkg/loader/pdf"
	s3loader "github.com/astrea-space/astrea/backend/pkg/loader/s3"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ProcessIngestMessage handles one ingest_queue message: resolve the
// document source (local path or S3 key), run it through the ingestion
// pipeline, and report the outcome. Errors bubble up so the caller can
// route the message to the retry queue.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	pipeline *graph.Pipeline,
	msg string,
) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode ingest message: %w", err)
	}

	var filePath string
	var fileLoader loader.GraphFileLoader
	switch {
	case data.S3Key != "":
		if s3Client == nil {
			return fmt.Errorf("received S3 ingest job but object storage is not configured")
		}
		filePath = data.S3Key
		bucket := util.GetEnvString("AWS_BUCKET", "astrea")
		fileLoader = s3loader.NewS3GraphFileLoaderWithClient(bucket, s3Client)
	case data.Path != "":
		filePath = data.Path
		fileLoader = ioloader.NewIOGraphFileLoader()
	default:
		return fmt.Errorf("ingest message carries neither path nor s3Key")
	}

	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		fileLoader = pdf.NewPDFGraphLoader(fileLoader)
	}

	docID := data.DocID
	if docID == "" {
		base := filepath.Base(filePath)
		docID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	title := data.Title
	if title == "" {
		title = docID
	}

	buildKG := util.GetEnvBool("BUILD_KG", true)
	if data.BuildKG != nil {
		buildKG = *data.BuildKG
	}

	file := loader.NewGraphDocumentFile(loader.NewGraphFileParams{
		ID:       docID,
		FilePath: filePath,
		Loader:   fileLoader,
	})

	result, err := pipeline.ProcessFile(ctx, graph.ProcessFileParams{
		File: file,
		Source: common.SourceRef{
			DocID: docID,
			Title: title,
			URL:   data.URL,
		},
		BuildGraph: buildKG,
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue][Ingest] Document processed",
		"docId", docID,
		"chunks", result.ChunksCreated,
		"triples", result.TriplesExtracted,
	)
	return nil
}
