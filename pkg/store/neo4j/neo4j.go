package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v6/neo4j"
)

// nodeLabels is the controlled vocabulary of entity labels. Labels are
// interpolated into Cypher, so they must come from this table and never
// from extracted input.
var nodeLabels = map[string]bool{
	"Mission":     true,
	"Group":       true,
	"Mouse":       true,
	"Training":    true,
	"Diet":        true,
	"Habitat":     true,
	"Measurement": true,
	"Tissue":      true,
	"Method":      true,
	"Outcome":     true,
	"Institution": true,
}

// relTypes is the controlled vocabulary of typed relationships. Anything
// outside this set is stored as RELATES_TO with the original predicate as
// a property.
var relTypes = map[string]bool{
	"HAS_GROUP":       true,
	"CONTAINS":        true,
	"UNDERWENT":       true,
	"FED":             true,
	"HOUSED_IN":       true,
	"HAS_MEASUREMENT": true,
	"SAMPLED_FOR":     true,
	"ANALYZED_BY":     true,
	"RESULTED_IN":     true,
	"CONDUCTED":       true,
}

// GenericRelType is the fallback relationship type for predicates outside
// the controlled vocabulary.
const GenericRelType = "RELATES_TO"

// GraphDBStorage implements store.GraphStorage on Neo4j. Nodes are keyed
// by exact name (a known limitation: "ISS" and "International Space
// Station" stay separate nodes); provenance lists grow on every
// re-ingestion and are intentionally not deduplicated.
type GraphDBStorage struct {
	driver   neo4j.Driver
	database string
}

// NewGraphDBStorageParams contains connection parameters for Neo4j.
type NewGraphDBStorageParams struct {
	URI      string
	User     string
	Password string
	Database string
}

// NewGraphDBStorage connects to Neo4j and verifies connectivity.
func NewGraphDBStorage(ctx context.Context, params NewGraphDBStorageParams) (*GraphDBStorage, error) {
	if params.URI == "" {
		return nil, fmt.Errorf("neo4j URI must not be empty")
	}

	driver, err := neo4j.NewDriver(params.URI, neo4j.BasicAuth(params.User, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &GraphDBStorage{
		driver:   driver,
		database: params.Database,
	}, nil
}

// EnsureConstraints creates the node uniqueness constraint and the
// fallback-relationship predicate index if they do not exist yet.
func (s *GraphDBStorage) EnsureConstraints(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE",
		"CREATE INDEX rel_predicate IF NOT EXISTS FOR ()-[r:RELATES_TO]-() ON (r.predicate)",
	}
	for _, stmt := range statements {
		if _, err := neo4j.ExecuteQuery(
			ctx, s.driver, stmt, nil,
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(s.database),
		); err != nil {
			return fmt.Errorf("failed to ensure graph schema: %w", err)
		}
	}
	return nil
}

// nodeRow is the parameter shape for the node merge statement.
type nodeRow struct {
	name  string
	typ   string
	docID string
	title string
	url   string
}

// UpsertTriples merges a batch of triples into the graph. Subject and
// object nodes are merged by exact name; on re-ingestion their count is
// incremented and provenance lists are appended to. Relationships in the
// controlled vocabulary get a typed edge, everything else lands on a
// RELATES_TO edge carrying the original predicate.
func (s *GraphDBStorage) UpsertTriples(ctx context.Context, triples []common.Triple) error {
	if len(triples) == 0 {
		return nil
	}

	logger.Debug("[Store][UpsertTriples] Merging triples", "triples", len(triples))

	now := time.Now().UTC().Format(time.RFC3339)

	// Group node rows by label so each label gets one parameterized
	// statement instead of per-type Cypher branches.
	nodesByLabel := map[string][]nodeRow{}
	for _, t := range triples {
		for _, side := range []struct {
			name string
			typ  string
		}{
			{t.Subject, t.SubjectType},
			{t.Object, t.ObjectType},
		} {
			label := side.typ
			if !nodeLabels[label] {
				label = ""
			}
			nodesByLabel[label] = append(nodesByLabel[label], nodeRow{
				name:  side.name,
				typ:   side.typ,
				docID: t.Source.DocID,
				title: t.Source.Title,
				url:   t.Source.URL,
			})
		}
	}

	for label, rows := range nodesByLabel {
		params := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			params = append(params, map[string]any{
				"name":  r.name,
				"type":  r.typ,
				"docId": r.docID,
				"title": r.title,
				"url":   r.url,
			})
		}

		query := `
			UNWIND $rows AS row
			MERGE (n:Entity {name: row.name})
			ON CREATE SET
				n.types = [row.type],
				n.docIds = [row.docId],
				n.titles = [row.title],
				n.urls = [row.url],
				n.firstSeen = $now,
				n.lastSeen = $now,
				n.count = 1
			ON MATCH SET
				n.types = n.types + row.type,
				n.docIds = n.docIds + row.docId,
				n.titles = n.titles + row.title,
				n.urls = n.urls + row.url,
				n.lastSeen = $now,
				n.count = n.count + 1
		`
		if label != "" {
			query += fmt.Sprintf("\nSET n:%s", label)
		}

		if _, err := neo4j.ExecuteQuery(
			ctx, s.driver, query,
			map[string]any{"rows": params, "now": now},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(s.database),
		); err != nil {
			return fmt.Errorf("failed to merge nodes: %w", err)
		}
	}

	// Group relationship rows by resolved type for the same reason.
	relsByType := map[string][]map[string]any{}
	for _, t := range triples {
		relType := t.RelType
		if !relTypes[relType] {
			relType = GenericRelType
		}
		relsByType[relType] = append(relsByType[relType], map[string]any{
			"subject":    t.Subject,
			"object":     t.Object,
			"predicate":  t.Predicate,
			"confidence": t.Confidence,
			"docId":      t.Source.DocID,
		})
	}

	for relType, rows := range relsByType {
		query := fmt.Sprintf(`
			UNWIND $rows AS row
			MATCH (a:Entity {name: row.subject})
			MATCH (b:Entity {name: row.object})
			MERGE (a)-[r:%s]->(b)
			ON CREATE SET
				r.predicate = row.predicate,
				r.confidence = row.confidence,
				r.docIds = [row.docId],
				r.firstSeen = $now,
				r.lastSeen = $now,
				r.count = 1
			ON MATCH SET
				r.predicate = row.predicate,
				r.confidence = (r.confidence + row.confidence) / 2,
				r.docIds = r.docIds + row.docId,
				r.lastSeen = $now,
				r.count = r.count + 1
		`, relType)

		if _, err := neo4j.ExecuteQuery(
			ctx, s.driver, query,
			map[string]any{"rows": rows, "now": now},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(s.database),
		); err != nil {
			return fmt.Errorf("failed to merge relationships: %w", err)
		}
	}

	return nil
}

// QueryPaths finds paths of 1 to 3 hops touching any of the named
// entities and flattens them into a deduplicated node/edge list for
// visualization.
func (s *GraphDBStorage) QueryPaths(ctx context.Context, names []string, limit int) (*common.GraphData, error) {
	data := &common.GraphData{
		Nodes: []common.GraphNode{},
		Edges: []common.GraphEdge{},
	}
	if len(names) == 0 {
		return data, nil
	}
	if limit <= 0 {
		limit = 10
	}

	result, err := neo4j.ExecuteQuery(
		ctx, s.driver, `
			MATCH p = (e:Entity)-[*1..3]-(x)
			WHERE e.name IN $names
			RETURN p
			LIMIT $limit
		`,
		map[string]any{"names": names, "limit": limit},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query graph paths: %w", err)
	}

	seenNodes := map[string]bool{}
	seenEdges := map[string]bool{}
	for _, record := range result.Records {
		path, _, err := neo4j.GetRecordValue[neo4j.Path](record, "p")
		if err != nil {
			continue
		}

		for _, node := range path.Nodes {
			if seenNodes[node.ElementId] {
				continue
			}
			seenNodes[node.ElementId] = true
			data.Nodes = append(data.Nodes, common.GraphNode{
				ID:    node.ElementId,
				Label: stringProp(node.Props, "name"),
				Type:  nodeType(node),
				Score: floatProp(node.Props, "confidence", 1.0),
			})
		}

		for _, rel := range path.Relationships {
			if seenEdges[rel.ElementId] {
				continue
			}
			seenEdges[rel.ElementId] = true
			data.Edges = append(data.Edges, common.GraphEdge{
				Source:   rel.StartElementId,
				Target:   rel.EndElementId,
				Label:    rel.Type,
				Evidence: stringListProp(rel.Props, "docIds"),
			})
		}
	}

	return data, nil
}

// Close shuts down the underlying driver.
func (s *GraphDBStorage) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// nodeType prefers a controlled-vocabulary label over the Entity label
// every node carries.
func nodeType(node neo4j.Node) string {
	for _, label := range node.Labels {
		if nodeLabels[label] {
			return label
		}
	}
	if types, ok := node.Props["types"].([]any); ok && len(types) > 0 {
		if s, ok := types[0].(string); ok {
			return s
		}
	}
	return "Entity"
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, key string, fallback float64) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return fallback
}

func stringListProp(props map[string]any, key string) []string {
	out := []string{}
	if list, ok := props[key].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
