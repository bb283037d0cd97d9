package common

// Triple represents a single subject-predicate-object fact extracted from a
// document chunk, normalized for graph ingestion. Subject and Object carry
// the canonical display names; SubjectCanonical and ObjectCanonical are the
// lowercase variants kept as node properties for diagnostics (node identity
// stays exact-name, casing included).
type Triple struct {
	Subject          string    `json:"subject"`
	SubjectCanonical string    `json:"subjectCanonical"`
	SubjectType      string    `json:"subjectType"`
	RelType          string    `json:"relType"`
	Predicate        string    `json:"predicate"`
	Object           string    `json:"object"`
	ObjectCanonical  string    `json:"objectCanonical"`
	ObjectType       string    `json:"objectType"`
	Confidence       float64   `json:"confidence"`
	Source           SourceRef `json:"source"`
}

// SourceRef records which document a triple or chunk came from.
type SourceRef struct {
	DocID string `json:"docId"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Chunk is a contiguous segment of document text with provenance metadata.
// Chunks are the unit of both vector indexing and triple extraction.
type Chunk struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Source SourceRef `json:"source"`
}

// VectorMatch is a single result from a vector similarity query.
type VectorMatch struct {
	ID    string    `json:"id"`
	Score float32   `json:"score"`
	Text  string    `json:"text"`
	Ref   SourceRef `json:"ref"`
}

// GraphNode is a node in the visualization graph returned to clients.
type GraphNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// GraphEdge is an edge in the visualization graph returned to clients.
// Evidence lists the docIds recorded on the underlying relationship.
type GraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Label    string   `json:"label"`
	Evidence []string `json:"evidence"`
}

// GraphData is the knowledge-graph payload attached to chat answers for
// 3D visualization.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
