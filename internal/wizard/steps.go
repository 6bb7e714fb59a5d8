package wizard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StepKind selects the input widget and the advance discipline of a step.
type StepKind string

const (
	// StepBooleanSet is a set of checkboxes that must all be confirmed
	// before the step can be advanced (the safety gate).
	StepBooleanSet StepKind = "boolean-set"
	// StepSingleSelect picks one value from a closed set.
	StepSingleSelect StepKind = "single-select"
	// StepMultiSelect toggles values from a closed set; advancing requires
	// an explicit continue with at least one value selected.
	StepMultiSelect StepKind = "multi-select"
	// StepFreeText is an optional free-form note; continue always allowed.
	StepFreeText StepKind = "free-text"
	// StepPhotos collects photos; it is always the terminal step.
	StepPhotos StepKind = "photo-collector"
)

// Field names an AnswerSet field a step binds to.
type Field string

const (
	FieldSafety       Field = "safety"
	FieldLocation     Field = "location"
	FieldFrequency    Field = "frequency"
	FieldUpperFloor   Field = "upperFloor"
	FieldRepairPast   Field = "repairHistory"
	FieldBuildingType Field = "buildingType"
	FieldBuildingAge  Field = "buildingAge"
	FieldSymptoms     Field = "symptoms"
	FieldSeverity     Field = "severity"
	FieldNote         Field = "note"
	FieldPhotos       Field = "photos"
)

// Step describes one wizard step: what it asks, which field it fills and
// whether answering it moves the wizard forward without an explicit continue.
type Step struct {
	Kind        StepKind `yaml:"kind" json:"kind"`
	Field       Field    `yaml:"field" json:"field"`
	Title       string   `yaml:"title" json:"title"`
	AutoAdvance bool     `yaml:"autoAdvance" json:"autoAdvance"`
}

// Flow is an ordered step sequence. Adding or removing a step only touches
// the flow definition; the sequencer consumes steps generically.
type Flow struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// DefaultFlow is the full ten step intake used in production.
func DefaultFlow() Flow {
	return Flow{
		Name: "full",
		Steps: []Step{
			{Kind: StepBooleanSet, Field: FieldSafety, Title: "응급 상황을 먼저 체크해주세요."},
			{Kind: StepSingleSelect, Field: FieldLocation, Title: "누수가 발생한 위치는?", AutoAdvance: true},
			{Kind: StepSingleSelect, Field: FieldFrequency, Title: "누수 빈도는 어떠한가요?", AutoAdvance: true},
			{Kind: StepSingleSelect, Field: FieldUpperFloor, Title: "위층 거주 여부를 알려주세요.", AutoAdvance: true},
			{Kind: StepSingleSelect, Field: FieldRepairPast, Title: "과거 수리 이력이 있으신가요?", AutoAdvance: true},
			{Kind: StepSingleSelect, Field: FieldBuildingType, Title: "건물 유형을 선택해주세요.", AutoAdvance: true},
			{Kind: StepMultiSelect, Field: FieldSymptoms, Title: "나타나는 증상을 선택해주세요."},
			{Kind: StepSingleSelect, Field: FieldSeverity, Title: "누수 피해 규모가 어느 정도인가요?", AutoAdvance: true},
			{Kind: StepFreeText, Field: FieldNote, Title: "추가로 전달하고 싶은 내용이 있다면 적어주세요 (선택)"},
			{Kind: StepPhotos, Field: FieldPhotos, Title: "현장 사진을 업로드해주세요."},
		},
	}
}

// ShortFlow is the reduced six step variant.
func ShortFlow() Flow {
	return Flow{
		Name: "short",
		Steps: []Step{
			{Kind: StepBooleanSet, Field: FieldSafety, Title: "응급 상황을 먼저 체크해주세요."},
			{Kind: StepSingleSelect, Field: FieldLocation, Title: "누수가 발생한 위치는?", AutoAdvance: true},
			{Kind: StepMultiSelect, Field: FieldSymptoms, Title: "나타나는 증상을 선택해주세요."},
			{Kind: StepSingleSelect, Field: FieldSeverity, Title: "누수 피해 규모가 어느 정도인가요?", AutoAdvance: true},
			{Kind: StepFreeText, Field: FieldNote, Title: "추가로 전달하고 싶은 내용이 있다면 적어주세요 (선택)"},
			{Kind: StepPhotos, Field: FieldPhotos, Title: "현장 사진을 업로드해주세요."},
		},
	}
}

// LoadFlow reads a YAML flow definition from disk and validates it.
func LoadFlow(path string) (Flow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Flow{}, fmt.Errorf("wizard: read flow: %w", err)
	}
	var flow Flow
	if err := yaml.Unmarshal(b, &flow); err != nil {
		return Flow{}, fmt.Errorf("wizard: parse flow: %w", err)
	}
	if err := flow.Validate(); err != nil {
		return Flow{}, err
	}
	return flow, nil
}

// Validate checks the structural invariants a flow must satisfy: a leading
// safety gate, a terminal photo collector, known kind/field pairs and no
// field bound twice.
func (f Flow) Validate() error {
	if len(f.Steps) < 2 {
		return fmt.Errorf("wizard: flow %q needs at least a safety gate and a photo step", f.Name)
	}
	if f.Steps[0].Kind != StepBooleanSet || f.Steps[0].Field != FieldSafety {
		return fmt.Errorf("wizard: flow %q must start with the safety gate", f.Name)
	}
	last := f.Steps[len(f.Steps)-1]
	if last.Kind != StepPhotos || last.Field != FieldPhotos {
		return fmt.Errorf("wizard: flow %q must end with the photo collector", f.Name)
	}
	seen := make(map[Field]bool, len(f.Steps))
	for i, step := range f.Steps {
		if step.Kind == StepPhotos && i != len(f.Steps)-1 {
			return fmt.Errorf("wizard: flow %q has a photo collector before the final step", f.Name)
		}
		if step.Kind == StepBooleanSet && i != 0 {
			return fmt.Errorf("wizard: flow %q has a safety gate after step 0", f.Name)
		}
		want, ok := fieldKinds[step.Field]
		if !ok {
			return fmt.Errorf("wizard: flow %q step %d binds unknown field %q", f.Name, i, step.Field)
		}
		if want != step.Kind {
			return fmt.Errorf("wizard: flow %q step %d: field %q requires kind %q", f.Name, i, step.Field, want)
		}
		if seen[step.Field] {
			return fmt.Errorf("wizard: flow %q binds field %q twice", f.Name, step.Field)
		}
		seen[step.Field] = true
	}
	return nil
}

var fieldKinds = map[Field]StepKind{
	FieldSafety:       StepBooleanSet,
	FieldLocation:     StepSingleSelect,
	FieldFrequency:    StepSingleSelect,
	FieldUpperFloor:   StepSingleSelect,
	FieldRepairPast:   StepSingleSelect,
	FieldBuildingType: StepSingleSelect,
	FieldBuildingAge:  StepSingleSelect,
	FieldSymptoms:     StepMultiSelect,
	FieldSeverity:     StepSingleSelect,
	FieldNote:         StepFreeText,
	FieldPhotos:       StepPhotos,
}
