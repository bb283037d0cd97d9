package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	"github.com/astrea-space/astrea/backend/pkg/logger"
)

// ProcessScrapeMessage handles one scrape_queue message: fetch the page,
// extract its readable text and index it for retrieval. Scraped pages
// are indexed only, no knowledge-graph triples are extracted from them.
func ProcessScrapeMessage(
	ctx context.Context,
	pipeline *graph.Pipeline,
	webLoader loader.GraphFileLoader,
	msg string,
) error {
	data := new(ScrapeJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode scrape message: %w", err)
	}

	parsed, err := url.ParseRequestURI(data.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid scrape url %q", data.URL)
	}

	file := loader.NewGraphWebFile(loader.NewGraphFileParams{
		ID:       data.URL,
		FilePath: data.URL,
		Loader:   webLoader,
	})

	result, err := pipeline.ProcessFile(ctx, graph.ProcessFileParams{
		File: file,
		Source: common.SourceRef{
			DocID: data.URL,
			Title: data.URL,
			URL:   data.URL,
		},
		BuildGraph: false,
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue][Scrape] URL processed",
		"url", data.URL,
		"chunks", result.ChunksCreated,
		"contentLength", result.ContentLength,
	)
	return nil
}
