package definition

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/model"
)

func TestDefaultQuestionnaire(t *testing.T) {
	t.Parallel()

	q, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	if q.ID != "candidate-intake" {
		t.Fatalf("ID = %q", q.ID)
	}

	var stepIDs []string
	for _, step := range q.Steps {
		stepIDs = append(stepIDs, step.ID)
	}
	want := []string{"identity", "situation", "preferences", "compensation", "documents"}
	if diff := cmp.Diff(want, stepIDs); diff != "" {
		t.Fatalf("step ids mismatch (-want +got):\n%s", diff)
	}

	transport, ok := q.Field("transportMethods")
	if !ok {
		t.Fatalf("transportMethods not declared")
	}
	if transport.MaxSelections != 3 || transport.MinSelections != 1 {
		t.Fatalf("transportMethods bounds = %d..%d", transport.MinSelections, transport.MaxSelections)
	}

	motivations, _ := q.Field("motivationsRanking")
	if !motivations.Ranked || motivations.MaxSelections != 3 {
		t.Fatalf("motivationsRanking not a ranked pick-3: %+v", motivations)
	}

	var conditional int
	for _, step := range q.Steps {
		for _, sec := range step.Sections {
			if sec.VisibleWhen != "" {
				conditional++
			}
		}
	}
	if conditional < 2 {
		t.Fatalf("expected both employment branches to be conditional, got %d", conditional)
	}

	if len(q.Steps[3].Ranges) != 1 {
		t.Fatalf("compensation step carries %d range rules", len(q.Steps[3].Ranges))
	}
}

func TestDefaultIsStable(t *testing.T) {
	t.Parallel()

	first, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	second, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Default diverged between calls (-first +second):\n%s", diff)
	}
}

const minimalJSON = `{
  "id": "mini",
  "title": "Mini",
  "steps": [
    {
      "id": "only",
      "sections": [
        {
          "id": "main",
          "fields": [
            {"name": "fullName", "type": "string", "required": true}
          ]
        }
      ]
    }
  ]
}`

const minimalYAML = `
id: mini
title: Mini
steps:
  - id: only
    sections:
      - id: main
        fields:
          - name: fullName
            type: string
            required: true
`

func TestLoadBytesParsesJSONAndYAML(t *testing.T) {
	t.Parallel()

	fromJSON, err := LoadBytes([]byte(minimalJSON), "mini.json")
	if err != nil {
		t.Fatalf("LoadBytes(json) returned error: %v", err)
	}
	fromYAML, err := LoadBytes([]byte(minimalYAML), "mini.yaml")
	if err != nil {
		t.Fatalf("LoadBytes(yaml) returned error: %v", err)
	}

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("JSON and YAML disagree (-json +yaml):\n%s", diff)
	}
}

func TestLoadBytesRejectsBrokenDocuments(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
		want string
	}{
		{"empty", "   \n", "is empty"},
		{"garbage", "{{{not a document", "invalid JSON or YAML"},
		{"invalid model", `{"title": "no id", "steps": []}`, "invalid questionnaire"},
		{"bad expression", `{
			"id": "x",
			"steps": [{"id": "s", "sections": [{
				"id": "c",
				"visibleWhen": "a == ",
				"fields": [{"name": "f", "type": "string"}]
			}]}]
		}`, "invalid expression"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadBytes([]byte(tc.data), tc.name)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"forms/mini.yaml": &fstest.MapFile{Data: []byte(minimalYAML)},
	}

	q, err := Load(fsys, "forms/mini.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if q.ID != "mini" {
		t.Fatalf("ID = %q", q.ID)
	}

	if _, err := Load(fsys, "forms/absent.yaml"); err == nil {
		t.Fatalf("expected error for a missing file")
	}
	if _, err := Load(nil, "x"); err == nil {
		t.Fatalf("expected error for a nil filesystem")
	}
}

func TestLoadedDefinitionRunsThroughModelHelpers(t *testing.T) {
	t.Parallel()

	q, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	step, ok := q.StepOf("salaryMin")
	if !ok || q.Steps[step].ID != "compensation" {
		t.Fatalf("StepOf(salaryMin) = %d, %v", step, ok)
	}

	field, _ := q.Field("sectorExclusions")
	if field.Type != model.FieldTypeMultiSelect || !field.Required {
		t.Fatalf("sectorExclusions = %+v", field)
	}
	if got := field.OptionLabel("none"); got != "None" {
		t.Fatalf("OptionLabel(none) = %q", got)
	}
}
