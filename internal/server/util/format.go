package util

import (
	"strings"

	"github.com/astrea-space/astrea/backend/pkg/common"
)

// AnswerSections is the typed layout of a formatted chat answer. The
// HTTP layer fills it from the composed answer and the graph payload
// instead of inspecting the answer text.
type AnswerSections struct {
	KeyFindings   string
	Experiments   []string
	Missions      []string
	Relationships []string
}

// SectionsFromGraph builds the section record for a grounded answer.
// Experiments and Missions list node labels by type; Relationships list
// edges as "<source> <label> <target>".
func SectionsFromGraph(answer string, graph *common.GraphData) AnswerSections {
	sections := AnswerSections{KeyFindings: answer}
	if graph == nil {
		return sections
	}

	for _, node := range graph.Nodes {
		switch node.Type {
		case "Experiment":
			sections.Experiments = append(sections.Experiments, node.Label)
		case "Mission":
			sections.Missions = append(sections.Missions, node.Label)
		}
	}
	for _, edge := range graph.Edges {
		sections.Relationships = append(sections.Relationships,
			edge.Source+" "+edge.Label+" "+edge.Target)
	}
	return sections
}

// Format renders the fixed four-section answer template.
func (s AnswerSections) Format() string {
	var builder strings.Builder
	builder.WriteString("Key Findings:\n")
	builder.WriteString(s.KeyFindings)
	builder.WriteString("\n\nExperiments:\n- ")
	builder.WriteString(joinOr(s.Experiments, "No specific experiments found"))
	builder.WriteString("\n\nMissions:\n- ")
	builder.WriteString(joinOr(s.Missions, "No specific missions found"))
	builder.WriteString("\n\nLinks:\n- ")
	builder.WriteString(joinOr(s.Relationships, "No specific relationships found"))
	return builder.String()
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "\n- ")
}
