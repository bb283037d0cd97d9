package util

import (
	"strings"
	"testing"

	"github.com/astrea-space/astrea/backend/pkg/common"
)

func TestSectionsFromGraphNilGraph(t *testing.T) {
	sections := SectionsFromGraph("Bone density decreased.", nil)

	if sections.KeyFindings != "Bone density decreased." {
		t.Fatalf("unexpected key findings: got %q", sections.KeyFindings)
	}
	if len(sections.Experiments) != 0 || len(sections.Missions) != 0 || len(sections.Relationships) != 0 {
		t.Fatalf("expected empty sections for nil graph: %+v", sections)
	}
}

func TestSectionsFromGraphFiltersNodeTypes(t *testing.T) {
	graph := &common.GraphData{
		Nodes: []common.GraphNode{
			{ID: "n1", Label: "Bion-M1", Type: "Mission"},
			{ID: "n2", Label: "SF group", Type: "Group"},
			{ID: "n3", Label: "Rodent Research-1", Type: "Experiment"},
		},
		Edges: []common.GraphEdge{
			{Source: "n1", Target: "n2", Label: "HAS_GROUP"},
		},
	}

	sections := SectionsFromGraph("answer", graph)

	if len(sections.Missions) != 1 || sections.Missions[0] != "Bion-M1" {
		t.Fatalf("unexpected missions: %v", sections.Missions)
	}
	if len(sections.Experiments) != 1 || sections.Experiments[0] != "Rodent Research-1" {
		t.Fatalf("unexpected experiments: %v", sections.Experiments)
	}
	if len(sections.Relationships) != 1 || sections.Relationships[0] != "n1 HAS_GROUP n2" {
		t.Fatalf("unexpected relationships: %v", sections.Relationships)
	}
}

func TestFormatWithEmptySections(t *testing.T) {
	got := AnswerSections{KeyFindings: "Nothing notable."}.Format()

	want := "Key Findings:\nNothing notable.\n\n" +
		"Experiments:\n- No specific experiments found\n\n" +
		"Missions:\n- No specific missions found\n\n" +
		"Links:\n- No specific relationships found"
	if got != want {
		t.Fatalf("unexpected formatted answer:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatListsEntries(t *testing.T) {
	got := AnswerSections{
		KeyFindings:   "Mice lost bone density.",
		Missions:      []string{"Bion-M1", "SpaceX CRS-4"},
		Relationships: []string{"n1 HAS_GROUP n2"},
	}.Format()

	if !strings.Contains(got, "Missions:\n- Bion-M1\n- SpaceX CRS-4") {
		t.Fatalf("missions not listed: %q", got)
	}
	if !strings.Contains(got, "Links:\n- n1 HAS_GROUP n2") {
		t.Fatalf("relationships not listed: %q", got)
	}
	if !strings.Contains(got, "Experiments:\n- No specific experiments found") {
		t.Fatalf("experiment filler missing: %q", got)
	}
}
