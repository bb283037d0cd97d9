package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type entity struct {
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  entity
	}{
		{
			name:  "valid json object",
			input: `{"name":"Bion-M1"}`,
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: 'Bion-M1'}`,
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"Bion-M1",}`,
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"Bion-M1`,
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "stringified invalid json object",
			input: `"{name: 'Bion-M1'}"`,
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"name\": \"Bion-M1\"\n}\n",
			want:  entity{Name: "Bion-M1"},
		},
		{
			name:  "fenced json",
			input: "```json\n{\"name\":\"Bion-M1\",\"type\":\"Mission\"}\n```",
			want:  entity{Name: "Bion-M1", Type: "Mission"},
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"name\":\"Bion-M1\"}\n```",
			want:  entity{Name: "Bion-M1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got entity
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got.Name != tc.want.Name || got.Type != tc.want.Type {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ExtractionPayload(t *testing.T) {
	type relation struct {
		Subject    string  `json:"subject"`
		Predicate  string  `json:"predicate"`
		Object     string  `json:"object"`
		Confidence float64 `json:"confidence"`
	}
	type payload struct {
		Relations []relation `json:"relations"`
	}

	input := "```json\n{\"relations\": [{subject: 'Mouse M5', predicate: 'SAMPLED_FOR', object: 'Tibia', confidence: 0.9},]}\n```"
	var got payload
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got.Relations) != 1 {
		t.Fatalf("UnmarshalFlexible() relations length = %d, want 1", len(got.Relations))
	}
	r := got.Relations[0]
	if r.Subject != "Mouse M5" || r.Predicate != "SAMPLED_FOR" || r.Object != "Tibia" || r.Confidence != 0.9 {
		t.Fatalf("UnmarshalFlexible() got = %+v", r)
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	type entity struct {
		Name string `json:"name"`
	}

	input := `[{name:'ISS'},{name:'NASA',}]`
	var got []entity
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "ISS" || got[1].Name != "NASA" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two entities ISS,NASA", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type entity struct {
		Name string `json:"name"`
	}

	var got entity
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}
