package wizard

import (
	"errors"
	"fmt"
)

// ErrAtFirstStep is returned by Retreat on step 0. The caller is expected to
// fall back to the outer navigation history instead of underflowing.
var ErrAtFirstStep = errors.New("wizard: already at first step")

// ValidationError carries a user-facing message for a locally recoverable
// input problem. It never advances wizard state.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Answer is the delta one step submission carries. Exactly the part matching
// the current step's kind is consulted.
type Answer struct {
	// HazardChecks replaces the safety checkbox states (boolean-set).
	HazardChecks []bool `json:"hazardChecks,omitempty"`
	// Value is a single-select wire value.
	Value string `json:"value,omitempty"`
	// Toggle flips one multi-select value.
	Toggle string `json:"toggle,omitempty"`
	// Text replaces the free-form note.
	Text string `json:"text,omitempty"`
}

// Sequencer walks an ordered step flow over one AnswerSet. It is the single
// writer for the answer set during a wizard run.
type Sequencer struct {
	Flow    Flow       `json:"flow"`
	Index   int        `json:"index"`
	Answers *AnswerSet `json:"answers"`
	Done    bool       `json:"done"`
}

// NewSequencer starts a flow at step 0 with an empty answer set.
func NewSequencer(flow Flow) *Sequencer {
	return &Sequencer{Flow: flow, Answers: NewAnswerSet()}
}

// Current returns the active step index.
func (s *Sequencer) Current() int { return s.Index }

// CurrentStep returns the active step descriptor.
func (s *Sequencer) CurrentStep() Step { return s.Flow.Steps[s.Index] }

// IsComplete reports whether the wizard finished and the answers may be
// handed to the analysis pipeline.
func (s *Sequencer) IsComplete() bool { return s.Done }

// PhotoStep returns the index of the terminal photo collector.
func (s *Sequencer) PhotoStep() int { return len(s.Flow.Steps) - 1 }

// Apply writes the delta into the field bound to the current step. Closed-set
// values outside their set fail with a ValidationError and change nothing.
func (s *Sequencer) Apply(delta Answer) error {
	step := s.CurrentStep()
	a := s.Answers
	switch step.Kind {
	case StepBooleanSet:
		if len(delta.HazardChecks) != HazardCheckCount {
			return validationErrorf("안전 확인 항목 %d개를 모두 전달해주세요.", HazardCheckCount)
		}
		copy(a.HazardChecks[:], delta.HazardChecks)
		return nil
	case StepSingleSelect:
		return s.applySingle(step.Field, normalizeEnum(delta.Value))
	case StepMultiSelect:
		v := Symptom(normalizeEnum(delta.Toggle))
		if !validSymptom(v) {
			return validationErrorf("선택할 수 없는 증상 값입니다: %s", delta.Toggle)
		}
		a.ToggleSymptom(v)
		return nil
	case StepFreeText:
		a.Note = delta.Text
		return nil
	case StepPhotos:
		// Photos are attached through the photo intake endpoints, not as
		// step answers.
		return validationErrorf("사진 단계에서는 사진 업로드만 가능합니다.")
	default:
		return fmt.Errorf("wizard: unknown step kind %q", step.Kind)
	}
}

func (s *Sequencer) applySingle(field Field, raw string) error {
	a := s.Answers
	switch field {
	case FieldLocation:
		v := Location(raw)
		if !validLocation(v) {
			return validationErrorf("선택할 수 없는 위치 값입니다: %s", raw)
		}
		a.Location = v
	case FieldFrequency:
		v := Frequency(raw)
		if !validFrequency(v) {
			return validationErrorf("선택할 수 없는 빈도 값입니다: %s", raw)
		}
		a.Frequency = v
	case FieldUpperFloor:
		v := UpperFloor(raw)
		if !validUpperFloor(v) {
			return validationErrorf("선택할 수 없는 값입니다: %s", raw)
		}
		a.UpperFloor = v
	case FieldRepairPast:
		v := RepairPast(raw)
		if !validRepairPast(v) {
			return validationErrorf("선택할 수 없는 수리 이력 값입니다: %s", raw)
		}
		a.RepairPast = v
	case FieldBuildingType:
		v := BuildingType(raw)
		if !validBuildingType(v) {
			return validationErrorf("선택할 수 없는 건물 유형입니다: %s", raw)
		}
		a.BuildingType = v
	case FieldBuildingAge:
		v := BuildingAge(raw)
		if !validBuildingAge(v) {
			return validationErrorf("선택할 수 없는 연식 값입니다: %s", raw)
		}
		a.BuildingAge = v
	case FieldSeverity:
		v := Severity(raw)
		if !validSeverity(v) {
			return validationErrorf("선택할 수 없는 피해 규모 값입니다: %s", raw)
		}
		a.Severity = v
	default:
		return fmt.Errorf("wizard: field %q is not single-select", field)
	}
	return nil
}

// Advance moves to the next step if the current step's requirement is met.
// A blocked advance is a no-op returning a ValidationError. Advancing past
// the terminal step is not possible; completion goes through Finish.
func (s *Sequencer) Advance() error {
	if s.Done {
		return validationErrorf("이미 완료된 진단입니다.")
	}
	if err := s.requirementMet(); err != nil {
		return err
	}
	if s.Index >= s.PhotoStep() {
		return validationErrorf("마지막 단계입니다. 분석 시작을 눌러주세요.")
	}
	s.Index++
	return nil
}

// Retreat moves one step back, or reports ErrAtFirstStep on step 0.
func (s *Sequencer) Retreat() error {
	if s.Index == 0 {
		return ErrAtFirstStep
	}
	s.Index--
	s.Done = false
	return nil
}

// Finish is the explicit "start analysis" action on the terminal photo step.
// At least one photo is a hard requirement; with zero photos no pipeline call
// may be made.
func (s *Sequencer) Finish() error {
	if s.Index != s.PhotoStep() {
		return validationErrorf("아직 완료되지 않은 단계가 있습니다.")
	}
	if len(s.Answers.Photos) == 0 {
		return validationErrorf("정밀 분석을 위해 현장 사진 업로드가 필요합니다.")
	}
	s.Done = true
	return nil
}

// RewindToPhotos sends the wizard back to the photo collector, keeping every
// answer and photo. Used when the relevance gate rejects the photo set.
func (s *Sequencer) RewindToPhotos() {
	s.Index = s.PhotoStep()
	s.Done = false
}

func (s *Sequencer) requirementMet() error {
	step := s.CurrentStep()
	a := s.Answers
	switch step.Kind {
	case StepBooleanSet:
		if !a.SafetyAcknowledged() {
			return validationErrorf("모든 응급 상황 항목을 확인해주세요.")
		}
	case StepSingleSelect:
		if !s.singleSelected(step.Field) {
			return validationErrorf("항목을 선택해주세요.")
		}
	case StepMultiSelect:
		if len(a.Symptoms) == 0 {
			return validationErrorf("증상을 하나 이상 선택해주세요.")
		}
	case StepFreeText:
		// Optional, always passes.
	case StepPhotos:
		if len(a.Photos) == 0 {
			return validationErrorf("정밀 분석을 위해 현장 사진 업로드가 필요합니다.")
		}
	}
	return nil
}

func (s *Sequencer) singleSelected(field Field) bool {
	a := s.Answers
	switch field {
	case FieldLocation:
		return a.Location != ""
	case FieldFrequency:
		return a.Frequency != ""
	case FieldUpperFloor:
		return a.UpperFloor != ""
	case FieldRepairPast:
		return a.RepairPast != ""
	case FieldBuildingType:
		return a.BuildingType != ""
	case FieldBuildingAge:
		return a.BuildingAge != ""
	case FieldSeverity:
		return a.Severity != ""
	}
	return false
}
