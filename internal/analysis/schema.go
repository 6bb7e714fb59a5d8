package analysis

import "google.golang.org/genai"

var probabilityEnum = []string{
	string(ProbabilityHigh),
	string(ProbabilityMedium),
	string(ProbabilityLow),
}

// ReportSchema declares the structured-output contract the report model must
// satisfy. It mirrors the Result type exactly.
func ReportSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"riskScore": {
				Type:        genai.TypeInteger,
				Description: "누수 위험도 점수 (0-100)",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "진단 결과 한 줄 요약",
			},
			"detectionCost": {
				Type:        genai.TypeString,
				Description: "해당 지역의 적정 누수 탐지 비용 범위",
			},
			"repairCostInfo": {
				Type:        genai.TypeString,
				Description: "예상 수리 비용에 대한 안내",
			},
			"overchargeThreshold": {
				Type:        genai.TypeString,
				Description: "이 금액 이상이면 과잉 청구를 의심해야 하는 기준",
			},
			"causes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"probability": {Type: genai.TypeString, Enum: probabilityEnum},
						"title":       {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"probability", "title", "description"},
				},
			},
			"expertGuide": {
				Type:        genai.TypeString,
				Description: "전문가 호출 전 체크해야 할 사항",
			},
			"scamCheckQuestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:        genai.TypeString,
					Description: "질문:|위험답변:|판단근거: 형식의 복합 문자열",
				},
			},
			"insurance": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"probability": {Type: genai.TypeString, Enum: probabilityEnum},
					"prepList":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"disclaimer":  {Type: genai.TypeString},
				},
				Required: []string{"probability", "prepList", "disclaimer"},
			},
		},
		Required: []string{
			"riskScore", "summary", "detectionCost", "repairCostInfo",
			"overchargeThreshold", "causes", "expertGuide",
			"scamCheckQuestions", "insurance",
		},
	}
}

// RelevanceSchema declares the single-field verdict of the photo pre-check.
func RelevanceSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isRelevant": {
				Type:        genai.TypeBoolean,
				Description: "사진이 누수/배관/건물 하자 진단과 관련이 있으면 true",
			},
		},
		Required: []string{"isRelevant"},
	}
}
