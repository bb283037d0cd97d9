package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/logger"
)

const graphPathLimit = 10

// fetchGraph asks the model which graph entities the question and
// context mention, then loads the surrounding subgraph. Any failure
// degrades to no graph; the chat answer is never blocked on this step.
func (s *Service) fetchGraph(ctx context.Context, question, contextBlock string) *common.GraphData {
	if s.graphStore == nil {
		return nil
	}
	if strings.TrimSpace(contextBlock) == "" {
		return &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}
	}

	prompt := fmt.Sprintf(ai.GraphEntitiesPrompt, question, contextBlock)
	raw, err := s.client.GenerateCompletion(ctx, prompt)
	if err != nil {
		logger.Warn("[Chat][fetchGraph] Entity identification failed", "error", err)
		return nil
	}

	names := splitEntityNames(raw)
	if len(names) == 0 {
		return &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}
	}

	data, err := s.graphStore.QueryPaths(ctx, names, graphPathLimit)
	if err != nil {
		logger.Warn("[Chat][fetchGraph] Graph query failed", "error", err)
		return nil
	}
	return data
}

func splitEntityNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := util.CanonicalizeName(part)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
