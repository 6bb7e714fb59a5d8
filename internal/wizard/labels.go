package wizard

// Korean display labels for every closed-set value. The analysis prompt sends
// these instead of the raw wire values so the model reasons over the same text
// the user saw.

var locationLabels = map[Location]string{
	LocationCeiling: "천장",
	LocationWall:    "벽",
	LocationFloor:   "바닥",
	LocationBoiler:  "보일러/온수",
	LocationVeranda: "베란다/창가",
	LocationRoof:    "옥상/외벽",
	LocationUnknown: "모르겠음",
}

var symptomLabels = map[Symptom]string{
	SymptomDripping:     "물방울이 떨어진다",
	SymptomStained:      "젖어 있거나 번진 흔적",
	SymptomMold:         "곰팡이/냄새 발생",
	SymptomRainOnly:     "비 올 때만 발생",
	SymptomConstant:     "계속 샌다",
	SymptomIntermittent: "가끔 발생",
}

var frequencyLabels = map[Frequency]string{
	FrequencyToday:     "오늘 처음",
	FrequencyDaysAgo:   "며칠 전부터",
	FrequencyRecurring: "예전부터 반복",
	FrequencySudden:    "방금 갑자기",
}

var upperFloorLabels = map[UpperFloor]string{
	UpperFloorAbove:   "위층에 다른 세대가 있음",
	UpperFloorMyPipe:  "최상층이거나 단독 건물",
	UpperFloorUnknown: "정확히 모름",
}

var repairPastLabels = map[RepairPast]string{
	RepairNone:      "수리 이력 없음",
	RepairDIY:       "직접 응급 조치를 해봤음",
	RepairProFixed:  "업체 수리 후 해결됐었음",
	RepairProFailed: "업체 수리 후에도 재발함",
}

var buildingTypeLabels = map[BuildingType]string{
	BuildingApartment: "아파트",
	BuildingVilla:     "빌라(다세대)",
	BuildingHouse:     "단독주택",
	BuildingOfficetel: "오피스텔",
}

var buildingAgeLabels = map[BuildingAge]string{
	AgeUnder10:   "10년 미만",
	AgeTenTwenty: "10~20년",
	AgeOver20:    "20년 이상",
	AgeUnknown:   "모름",
}

var severityLabels = map[Severity]string{
	SeveritySmall:  "미세함 (번짐/습기)",
	SeverityMedium: "보통 (규칙적인 낙수)",
	SeverityLarge:  "심각함 (쏟아짐/고임)",
}

func (v Location) Label() string     { return labelOr(locationLabels[v], string(v)) }
func (v Symptom) Label() string      { return labelOr(symptomLabels[v], string(v)) }
func (v Frequency) Label() string    { return labelOr(frequencyLabels[v], string(v)) }
func (v UpperFloor) Label() string   { return labelOr(upperFloorLabels[v], string(v)) }
func (v RepairPast) Label() string   { return labelOr(repairPastLabels[v], string(v)) }
func (v BuildingType) Label() string { return labelOr(buildingTypeLabels[v], string(v)) }
func (v BuildingAge) Label() string  { return labelOr(buildingAgeLabels[v], string(v)) }
func (v Severity) Label() string     { return labelOr(severityLabels[v], string(v)) }

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
