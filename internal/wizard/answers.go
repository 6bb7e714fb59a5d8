package wizard

import "strings"

// Closed-set answer values. The string forms are wire values; Korean display
// labels used for prompt rendering live in labels.go.
type (
	Location     string
	Symptom      string
	Frequency    string
	UpperFloor   string
	RepairPast   string
	BuildingType string
	BuildingAge  string
	Severity     string
)

const (
	LocationCeiling Location = "CEILING"
	LocationWall    Location = "WALL"
	LocationFloor   Location = "FLOOR"
	LocationBoiler  Location = "BOILER"
	LocationVeranda Location = "VERANDA"
	LocationRoof    Location = "ROOF"
	LocationUnknown Location = "UNKNOWN"
)

const (
	SymptomDripping     Symptom = "DRIPPING"
	SymptomStained      Symptom = "STAINED"
	SymptomMold         Symptom = "MOLD"
	SymptomRainOnly     Symptom = "RAIN_ONLY"
	SymptomConstant     Symptom = "CONSTANT"
	SymptomIntermittent Symptom = "INTERMITTENT"
)

const (
	FrequencyToday     Frequency = "TODAY"
	FrequencyDaysAgo   Frequency = "DAYS_AGO"
	FrequencyRecurring Frequency = "RECURRING"
	FrequencySudden    Frequency = "SUDDEN"
)

const (
	UpperFloorAbove   UpperFloor = "UPPER"
	UpperFloorMyPipe  UpperFloor = "MY_PIPE"
	UpperFloorUnknown UpperFloor = "UNKNOWN"
)

const (
	RepairNone      RepairPast = "NONE"
	RepairDIY       RepairPast = "DIY"
	RepairProFixed  RepairPast = "PRO_FIXED"
	RepairProFailed RepairPast = "PRO_FAILED"
)

const (
	BuildingApartment BuildingType = "APARTMENT"
	BuildingVilla     BuildingType = "VILLA"
	BuildingHouse     BuildingType = "HOUSE"
	BuildingOfficetel BuildingType = "OFFICETEL"
)

const (
	AgeUnder10   BuildingAge = "UNDER_10"
	AgeTenTwenty BuildingAge = "BETWEEN_10_20"
	AgeOver20    BuildingAge = "OVER_20"
	AgeUnknown   BuildingAge = "UNKNOWN"
)

const (
	SeveritySmall  Severity = "SMALL"
	SeverityMedium Severity = "MEDIUM"
	SeverityLarge  Severity = "LARGE"
)

// HazardCheckCount is the number of safety acknowledgement checks on step 0.
// All of them must be true before the wizard can move forward.
const HazardCheckCount = 3

// MaxPhotos is the hard cap on attached photos for one wizard run.
const MaxPhotos = 6

// AnswerSet accumulates everything the user entered during one wizard run.
// It is mutated step by step by the sequencer and read as a whole by the
// analysis pipeline only after the sequencer reports completion.
type AnswerSet struct {
	HazardChecks [HazardCheckCount]bool `json:"hazardChecks"`
	Location     Location               `json:"location"`
	Symptoms     []Symptom              `json:"symptoms"`
	Frequency    Frequency              `json:"frequency"`
	UpperFloor   UpperFloor             `json:"upperFloor"`
	RepairPast   RepairPast             `json:"repairHistory"`
	BuildingType BuildingType           `json:"buildingType"`
	BuildingAge  BuildingAge            `json:"buildingAge"`
	Severity     Severity               `json:"severity"`
	Note         string                 `json:"note"`
	Photos       []EncodedImage         `json:"photos"`
}

// NewAnswerSet returns an empty answer set for a fresh wizard run.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{}
}

// SafetyAcknowledged reports whether every hazard check has been confirmed.
func (a *AnswerSet) SafetyAcknowledged() bool {
	for _, c := range a.HazardChecks {
		if !c {
			return false
		}
	}
	return true
}

// HasSymptom reports whether the given symptom is already selected.
func (a *AnswerSet) HasSymptom(s Symptom) bool {
	for _, cur := range a.Symptoms {
		if cur == s {
			return true
		}
	}
	return false
}

// ToggleSymptom adds the symptom if absent and removes it if present,
// preserving the order of everything else.
func (a *AnswerSet) ToggleSymptom(s Symptom) {
	for i, cur := range a.Symptoms {
		if cur == s {
			a.Symptoms = append(a.Symptoms[:i], a.Symptoms[i+1:]...)
			return
		}
	}
	a.Symptoms = append(a.Symptoms, s)
}

func validLocation(v Location) bool {
	switch v {
	case LocationCeiling, LocationWall, LocationFloor, LocationBoiler,
		LocationVeranda, LocationRoof, LocationUnknown:
		return true
	}
	return false
}

func validSymptom(v Symptom) bool {
	switch v {
	case SymptomDripping, SymptomStained, SymptomMold, SymptomRainOnly,
		SymptomConstant, SymptomIntermittent:
		return true
	}
	return false
}

func validFrequency(v Frequency) bool {
	switch v {
	case FrequencyToday, FrequencyDaysAgo, FrequencyRecurring, FrequencySudden:
		return true
	}
	return false
}

func validUpperFloor(v UpperFloor) bool {
	switch v {
	case UpperFloorAbove, UpperFloorMyPipe, UpperFloorUnknown:
		return true
	}
	return false
}

func validRepairPast(v RepairPast) bool {
	switch v {
	case RepairNone, RepairDIY, RepairProFixed, RepairProFailed:
		return true
	}
	return false
}

func validBuildingType(v BuildingType) bool {
	switch v {
	case BuildingApartment, BuildingVilla, BuildingHouse, BuildingOfficetel:
		return true
	}
	return false
}

func validBuildingAge(v BuildingAge) bool {
	switch v {
	case AgeUnder10, AgeTenTwenty, AgeOver20, AgeUnknown:
		return true
	}
	return false
}

func validSeverity(v Severity) bool {
	switch v {
	case SeveritySmall, SeverityMedium, SeverityLarge:
		return true
	}
	return false
}

func normalizeEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
