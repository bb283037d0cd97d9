package graph

import (
	"strings"

	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/common"
)

// GenericRelType is the fallback for predicates outside the controlled
// vocabulary. The original predicate survives as a relationship property.
const GenericRelType = "RELATES_TO"

const defaultConfidence = 0.7

// canonicalRelTypes is the closed set of typed relationships.
var canonicalRelTypes = map[string]bool{
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

// typePairRelTypes infers a relationship type from the subject/object
// entity types when the predicate itself is not recognizable.
var typePairRelTypes = map[string]string{
	"Mission|Group":       "HAS_GROUP",
	"Group|Mouse":         "CONTAINS",
	"Mouse|Training":      "UNDERWENT",
	"Mouse|Diet":          "FED",
	"Mouse|Habitat":       "HOUSED_IN",
	"Mouse|Measurement":   "HAS_MEASUREMENT",
	"Mouse|Tissue":        "SAMPLED_FOR",
	"Tissue|Method":       "ANALYZED_BY",
	"Mouse|Outcome":       "RESULTED_IN",
	"Institution|Mission": "CONDUCTED",
}

// NormalizeRelType resolves a free-form predicate to a relationship type.
// Resolution order: predicate match against the controlled set
// (case-insensitive, punctuation treated as separators), then inference
// from the subject/object type pair, then the generic fallback.
func NormalizeRelType(predicate, subjectType, objectType string) string {
	cleaned := cleanPredicate(predicate)
	if canonicalRelTypes[cleaned] {
		return cleaned
	}
	if relType, ok := typePairRelTypes[subjectType+"|"+objectType]; ok {
		return relType
	}
	return GenericRelType
}

// cleanPredicate uppercases a predicate and collapses punctuation and
// whitespace runs into single underscores, so "has group", "HAS-GROUP"
// and "has_group" all resolve alike.
func cleanPredicate(predicate string) string {
	upper := strings.ToUpper(strings.TrimSpace(predicate))
	var builder strings.Builder
	lastSep := false
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep && builder.Len() > 0 {
			builder.WriteRune('_')
			lastSep = true
		}
	}
	return strings.TrimSuffix(builder.String(), "_")
}

// buildTriples normalizes extracted relations into graph-ready triples.
// Relations whose subject or object canonicalizes to empty are dropped.
func buildTriples(relations []extractRelation, source common.SourceRef) []common.Triple {
	triples := make([]common.Triple, 0, len(relations))
	for _, rel := range relations {
		subject := util.CanonicalizeName(rel.Subject)
		object := util.CanonicalizeName(rel.Object)
		if subject == "" || object == "" {
			continue
		}

		confidence := rel.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = defaultConfidence
		}

		subjectType := strings.TrimSpace(rel.SubjectType)
		objectType := strings.TrimSpace(rel.ObjectType)

		triples = append(triples, common.Triple{
			Subject:          subject,
			SubjectCanonical: strings.ToLower(subject),
			SubjectType:      subjectType,
			RelType:          NormalizeRelType(rel.Predicate, subjectType, objectType),
			Predicate:        strings.TrimSpace(rel.Predicate),
			Object:           object,
			ObjectCanonical:  strings.ToLower(object),
			ObjectType:       objectType,
			Confidence:       confidence,
			Source:           source,
		})
	}
	return triples
}
