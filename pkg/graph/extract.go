package graph

import (
	"context"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/ai"
	"github.com/astrea-space/astrea/backend/pkg/common"
)

// Chunks beyond this length add latency without adding triples; the
// overlap window means the tail reappears in the next chunk anyway.
const maxExtractionChars = 5000

type extractEntity struct {
	Name string `json:"name" jsonschema_description:"Concise entity name; acronyms like ISS or NASA stay uppercase"`
	Type string `json:"type" jsonschema_description:"One of the controlled entity types"`
}

type extractRelation struct {
	Subject     string  `json:"subject" jsonschema_description:"Name of the subject entity, as identified in the entities list"`
	SubjectType string  `json:"subjectType" jsonschema_description:"Entity type of the subject"`
	Predicate   string  `json:"predicate" jsonschema_description:"Relationship type from the provided templates"`
	Object      string  `json:"object" jsonschema_description:"Name of the object entity, as identified in the entities list"`
	ObjectType  string  `json:"objectType" jsonschema_description:"Entity type of the object"`
	Confidence  float64 `json:"confidence" jsonschema_description:"Confidence in this relationship between 0 and 1"`
}

type extractResponse struct {
	Entities  []extractEntity   `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relations []extractRelation `json:"relations" jsonschema_description:"Relationships identified in the text"`
}

func extractFromChunk(
	ctx context.Context,
	chunk common.Chunk,
	client ai.GraphAIClient,
) ([]common.Triple, error) {
	text := util.TruncateChars(chunk.Text, maxExtractionChars)

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_triples",
		"Extract space-biology entities and relationships from a document chunk.",
		text,
		&res,
		ai.WithSystemPrompts(ai.ExtractTriplesPrompt),
	)
	if err != nil {
		return nil, err
	}

	return buildTriples(res.Relations, chunk.Source), nil
}
