package graph

import (
	"testing"

	"github.com/astrea-space/astrea/backend/pkg/common"
)

func TestNormalizeRelType(t *testing.T) {
	tests := []struct {
		name        string
		predicate   string
		subjectType string
		objectType  string
		want        string
	}{
		{
			name:      "exact canonical name",
			predicate: "HAS_GROUP",
			want:      "HAS_GROUP",
		},
		{
			name:      "lowercase canonical name",
			predicate: "contains",
			want:      "CONTAINS",
		},
		{
			name:      "hyphenated canonical name",
			predicate: "has-measurement",
			want:      "HAS_MEASUREMENT",
		},
		{
			name:      "spaced canonical name with trailing punctuation",
			predicate: "housed in.",
			want:      "HOUSED_IN",
		},
		{
			name:        "unknown predicate with known type pair",
			predicate:   "includes",
			subjectType: "Mission",
			objectType:  "Group",
			want:        "HAS_GROUP",
		},
		{
			name:        "unknown predicate with tissue method pair",
			predicate:   "examined via",
			subjectType: "Tissue",
			objectType:  "Method",
			want:        "ANALYZED_BY",
		},
		{
			name:        "unknown predicate with reversed type pair",
			predicate:   "includes",
			subjectType: "Group",
			objectType:  "Mission",
			want:        GenericRelType,
		},
		{
			name:        "unknown predicate with unknown types",
			predicate:   "correlates with",
			subjectType: "Satellite",
			objectType:  "Orbit",
			want:        GenericRelType,
		},
		{
			name:      "empty predicate",
			predicate: "",
			want:      GenericRelType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRelType(tt.predicate, tt.subjectType, tt.objectType)
			if got != tt.want {
				t.Fatalf("unexpected relType: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildTriplesFiltering(t *testing.T) {
	source := common.SourceRef{DocID: "doc-1", Title: "Bion-M1 results", URL: "https://example.test/bion-m1"}

	relations := []extractRelation{
		{
			Subject:     "Bion-M1",
			SubjectType: "Mission",
			Predicate:   "HAS_GROUP",
			Object:      "SF group",
			ObjectType:  "Group",
			Confidence:  0.9,
		},
		{
			Subject:     "",
			SubjectType: "Mission",
			Predicate:   "HAS_GROUP",
			Object:      "SF group",
			ObjectType:  "Group",
		},
		{
			Subject:     "Mouse 12",
			SubjectType: "Mouse",
			Predicate:   "SAMPLED_FOR",
			Object:      "   ",
			ObjectType:  "Tissue",
		},
	}

	triples := buildTriples(relations, source)
	if len(triples) != 1 {
		t.Fatalf("unexpected triple count: got %d, want 1", len(triples))
	}

	got := triples[0]
	if got.Subject != "Bion-M1" || got.Object != "SF group" {
		t.Fatalf("unexpected triple endpoints: got %q -> %q", got.Subject, got.Object)
	}
	if got.RelType != "HAS_GROUP" {
		t.Fatalf("unexpected relType: got %q, want %q", got.RelType, "HAS_GROUP")
	}
	if got.Source.DocID != "doc-1" {
		t.Fatalf("unexpected source docId: got %q, want %q", got.Source.DocID, "doc-1")
	}
}

func TestBuildTriplesConfidenceDefault(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       float64
	}{
		{name: "missing confidence", confidence: 0, want: defaultConfidence},
		{name: "negative confidence", confidence: -0.5, want: defaultConfidence},
		{name: "out of range confidence", confidence: 1.4, want: defaultConfidence},
		{name: "valid confidence", confidence: 0.35, want: 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relations := []extractRelation{{
				Subject:     "Mouse 3",
				SubjectType: "Mouse",
				Predicate:   "RESULTED_IN",
				Object:      "Bone loss",
				ObjectType:  "Outcome",
				Confidence:  tt.confidence,
			}}

			triples := buildTriples(relations, common.SourceRef{DocID: "doc-2"})
			if len(triples) != 1 {
				t.Fatalf("unexpected triple count: got %d, want 1", len(triples))
			}
			if triples[0].Confidence != tt.want {
				t.Fatalf("unexpected confidence: got %v, want %v", triples[0].Confidence, tt.want)
			}
		})
	}
}

func TestBuildTriplesCanonicalizesNames(t *testing.T) {
	relations := []extractRelation{{
		Subject:     "  Bion-M1   mission ",
		SubjectType: "Mission",
		Predicate:   "conducted by",
		Object:      " Institute of\tBiomedical Problems ",
		ObjectType:  "Institution",
		Confidence:  0.8,
	}}

	triples := buildTriples(relations, common.SourceRef{})
	if len(triples) != 1 {
		t.Fatalf("unexpected triple count: got %d, want 1", len(triples))
	}

	got := triples[0]
	if got.Subject != "Bion-M1 mission" {
		t.Fatalf("unexpected subject: got %q, want %q", got.Subject, "Bion-M1 mission")
	}
	if got.Object != "Institute of Biomedical Problems" {
		t.Fatalf("unexpected object: got %q, want %q", got.Object, "Institute of Biomedical Problems")
	}
	if got.SubjectCanonical != "bion-m1 mission" {
		t.Fatalf("unexpected canonical subject: got %q", got.SubjectCanonical)
	}
}
