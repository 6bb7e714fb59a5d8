package wizard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinFlowsAreValid(t *testing.T) {
	if err := DefaultFlow().Validate(); err != nil {
		t.Fatalf("default flow: %v", err)
	}
	if err := ShortFlow().Validate(); err != nil {
		t.Fatalf("short flow: %v", err)
	}
}

func TestFlowValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		flow Flow
	}{
		{"empty", Flow{Name: "x"}},
		{"no safety gate first", Flow{Name: "x", Steps: []Step{
			{Kind: StepSingleSelect, Field: FieldLocation},
			{Kind: StepPhotos, Field: FieldPhotos},
		}}},
		{"photo not last", Flow{Name: "x", Steps: []Step{
			{Kind: StepBooleanSet, Field: FieldSafety},
			{Kind: StepPhotos, Field: FieldPhotos},
			{Kind: StepSingleSelect, Field: FieldLocation},
		}}},
		{"duplicate field", Flow{Name: "x", Steps: []Step{
			{Kind: StepBooleanSet, Field: FieldSafety},
			{Kind: StepSingleSelect, Field: FieldLocation},
			{Kind: StepSingleSelect, Field: FieldLocation},
			{Kind: StepPhotos, Field: FieldPhotos},
		}}},
		{"kind field mismatch", Flow{Name: "x", Steps: []Step{
			{Kind: StepBooleanSet, Field: FieldSafety},
			{Kind: StepMultiSelect, Field: FieldLocation},
			{Kind: StepPhotos, Field: FieldPhotos},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.flow.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadFlowFromYAML(t *testing.T) {
	doc := `name: custom
steps:
  - kind: boolean-set
    field: safety
    title: "안전 확인"
  - kind: single-select
    field: location
    title: "위치"
    autoAdvance: true
  - kind: photo-collector
    field: photos
    title: "사진"
`
	path := filepath.Join(t.TempDir(), "flow.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	flow, err := LoadFlow(path)
	if err != nil {
		t.Fatalf("LoadFlow: %v", err)
	}
	if flow.Name != "custom" || len(flow.Steps) != 3 {
		t.Fatalf("flow = %+v", flow)
	}
	if !flow.Steps[1].AutoAdvance {
		t.Fatal("autoAdvance not parsed")
	}

	if _, err := LoadFlow(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing flow file must fail")
	}
}

func TestLoadFlowRejectsInvalid(t *testing.T) {
	doc := `name: broken
steps:
  - kind: single-select
    field: location
    title: "위치"
`
	path := filepath.Join(t.TempDir(), "flow.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFlow(path); err == nil {
		t.Fatal("structurally invalid flow must be rejected")
	}
}
