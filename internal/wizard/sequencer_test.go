package wizard

import (
	"errors"
	"testing"
)

func mustApply(t *testing.T, s *Sequencer, delta Answer) {
	t.Helper()
	if err := s.Apply(delta); err != nil {
		t.Fatalf("Apply(%+v) at step %d: %v", delta, s.Current(), err)
	}
}

func mustAdvance(t *testing.T, s *Sequencer) {
	t.Helper()
	if err := s.Advance(); err != nil {
		t.Fatalf("Advance at step %d: %v", s.Current(), err)
	}
}

func jpegImage(t *testing.T) EncodedImage {
	t.Helper()
	img, err := EncodePhoto([]byte{0xFF, 0xD8, 0xFF, 0xE0, 'x', 'x'})
	if err != nil {
		t.Fatalf("EncodePhoto: %v", err)
	}
	return img
}

// completeToPhotos walks the default flow up to the photo collector.
func completeToPhotos(t *testing.T, s *Sequencer) {
	t.Helper()
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, true}})
	mustAdvance(t, s)
	for _, v := range []string{"CEILING", "TODAY", "UPPER", "NONE", "APARTMENT"} {
		mustApply(t, s, Answer{Value: v})
		mustAdvance(t, s)
	}
	mustApply(t, s, Answer{Toggle: "DRIPPING"})
	mustAdvance(t, s)
	mustApply(t, s, Answer{Value: "MEDIUM"})
	mustAdvance(t, s)
	mustAdvance(t, s) // note is optional
	if s.Current() != s.PhotoStep() {
		t.Fatalf("expected photo step %d, at %d", s.PhotoStep(), s.Current())
	}
}

func TestSafetyGateBlocksUntilAllConfirmed(t *testing.T) {
	s := NewSequencer(DefaultFlow())

	var verr *ValidationError
	if err := s.Advance(); !errors.As(err, &verr) {
		t.Fatalf("advance with no checks: %v", err)
	}
	mustApply(t, s, Answer{HazardChecks: []bool{true, false, true}})
	if err := s.Advance(); !errors.As(err, &verr) {
		t.Fatalf("advance with partial checks: %v", err)
	}
	if s.Current() != 0 {
		t.Fatalf("blocked advance moved the index to %d", s.Current())
	}
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, true}})
	mustAdvance(t, s)
	if s.Current() != 1 {
		t.Fatalf("index = %d, want 1", s.Current())
	}
}

func TestSafetyGateReblocksAfterUncheck(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, true}})
	mustAdvance(t, s)
	if err := s.Retreat(); err != nil {
		t.Fatalf("Retreat: %v", err)
	}
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, false}})
	if err := s.Advance(); err == nil {
		t.Fatal("unchecking a hazard box must re-block the gate")
	}
}

func TestSingleSelectRejectsUnknownValue(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, true}})
	mustAdvance(t, s)

	var verr *ValidationError
	if err := s.Apply(Answer{Value: "GARAGE"}); !errors.As(err, &verr) {
		t.Fatalf("unknown location: %v", err)
	}
	if s.Answers.Location != "" {
		t.Fatalf("rejected value was stored: %q", s.Answers.Location)
	}
	// Wire values are case-insensitive.
	mustApply(t, s, Answer{Value: "ceiling"})
	if s.Answers.Location != LocationCeiling {
		t.Fatalf("location = %q", s.Answers.Location)
	}
}

func TestMultiSelectToggleAndRequirement(t *testing.T) {
	s := NewSequencer(ShortFlow())
	mustApply(t, s, Answer{HazardChecks: []bool{true, true, true}})
	mustAdvance(t, s)
	mustApply(t, s, Answer{Value: "WALL"})
	mustAdvance(t, s)

	if err := s.Advance(); err == nil {
		t.Fatal("advance with no symptoms selected must be blocked")
	}
	mustApply(t, s, Answer{Toggle: "MOLD"})
	mustApply(t, s, Answer{Toggle: "STAINED"})
	mustApply(t, s, Answer{Toggle: "MOLD"}) // toggle off
	if len(s.Answers.Symptoms) != 1 || s.Answers.Symptoms[0] != SymptomStained {
		t.Fatalf("symptoms = %v", s.Answers.Symptoms)
	}
	mustAdvance(t, s)
}

func TestRetreatFromFirstStep(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	if err := s.Retreat(); !errors.Is(err, ErrAtFirstStep) {
		t.Fatalf("err = %v, want ErrAtFirstStep", err)
	}
}

func TestFinishRequiresPhoto(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	completeToPhotos(t, s)

	if err := s.Finish(); err == nil {
		t.Fatal("finish with zero photos must fail")
	}
	if s.IsComplete() {
		t.Fatal("failed finish marked the wizard complete")
	}
	s.Answers.AddPhoto(jpegImage(t))
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !s.IsComplete() {
		t.Fatal("wizard not complete after finish")
	}
}

func TestFinishOffPhotoStep(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	if err := s.Finish(); err == nil {
		t.Fatal("finish on the safety step must fail")
	}
}

func TestRewindToPhotosKeepsState(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	completeToPhotos(t, s)
	s.Answers.AddPhoto(jpegImage(t))
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	s.RewindToPhotos()
	if s.IsComplete() {
		t.Fatal("rewind must reopen the wizard")
	}
	if s.Current() != s.PhotoStep() {
		t.Fatalf("index = %d, want photo step", s.Current())
	}
	if len(s.Answers.Photos) != 1 || s.Answers.Location != LocationCeiling {
		t.Fatal("rewind lost answers or photos")
	}
}

func TestRetreatReopensCompletedWizard(t *testing.T) {
	s := NewSequencer(DefaultFlow())
	completeToPhotos(t, s)
	s.Answers.AddPhoto(jpegImage(t))
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := s.Retreat(); err != nil {
		t.Fatalf("Retreat: %v", err)
	}
	if s.IsComplete() {
		t.Fatal("retreat must clear completion")
	}
	if s.Current() != s.PhotoStep()-1 {
		t.Fatalf("index = %d", s.Current())
	}
}
