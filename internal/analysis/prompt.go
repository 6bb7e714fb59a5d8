package analysis

import (
	"bytes"
	"fmt"
	"strings"

	"leakbox/internal/wizard"
)

// ReportPrompt renders the situation summary the report model receives
// alongside the photos. All user-facing text stays in Korean.
func ReportPrompt(a *wizard.AnswerSet) string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE",
		"당신은 20년 경력의 누수 탐지 전문가입니다. 아래 현장 정보와 첨부된 사진을 근거로 누수 원인을 진단하고, 소비자가 업체에 과잉 청구당하지 않도록 돕는 리포트를 작성하세요.")
	writeSection(&buf, "SITUATION", formatSituation(a))
	writeSection(&buf, "RULES", formatList([]string{
		"causes는 가능성이 높은 순서로 정렬합니다.",
		"probability는 High, Medium, Low 세 값만 사용합니다.",
		"비용 안내는 대한민국 시장 기준의 현실적인 범위로 제시합니다.",
		"scamCheckQuestions의 각 항목은 '질문:...|위험답변:...|판단근거:...' 형식을 지킵니다.",
		"사진에서 확인되는 근거를 진단에 반영합니다.",
	}))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only. No prose outside the JSON object.")
	writeSection(&buf, "LANGUAGE", "Korean")
	return strings.TrimSpace(buf.String()) + "\n"
}

// RelevancePrompt asks only whether the photos belong in a leak diagnosis.
func RelevancePrompt() string {
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE",
		"첨부된 사진이 주거 공간의 누수, 배관, 결로, 곰팡이 등 건물 하자 진단과 관련된 사진인지 판별하세요.")
	writeSection(&buf, "RULES", formatList([]string{
		"천장, 벽지, 바닥, 배관, 보일러, 얼룩, 물자국 사진은 관련 있음으로 판단합니다.",
		"인물, 음식, 풍경 등 진단과 무관한 사진만 있으면 관련 없음으로 판단합니다.",
		"애매하면 관련 있음으로 판단합니다.",
	}))
	writeSection(&buf, "OUTPUT_FORMAT", "JSON only.")
	return strings.TrimSpace(buf.String()) + "\n"
}

func formatSituation(a *wizard.AnswerSet) string {
	building := "건물 유형: " + a.BuildingType.Label()
	if a.BuildingAge != "" {
		building += fmt.Sprintf(" (%s)", a.BuildingAge.Label())
	}
	lines := []string{
		"누수 의심 위치: " + a.Location.Label(),
		"증상 발생 시점: " + a.Frequency.Label(),
		"윗집/외부 관련 여부: " + a.UpperFloor.Label(),
		"과거 수리 이력: " + a.RepairPast.Label(),
		building,
		"증상: " + symptomLabels(a.Symptoms),
		"피해 규모: " + a.Severity.Label(),
	}
	if note := strings.TrimSpace(a.Note); note != "" {
		lines = append(lines, "추가 설명: "+note)
	}
	lines = append(lines, fmt.Sprintf("첨부 사진 수: %d", len(a.Photos)))
	return formatList(lines)
}

func symptomLabels(ss []wizard.Symptom) string {
	if len(ss) == 0 {
		return "선택 없음"
	}
	labels := make([]string, 0, len(ss))
	for _, s := range ss {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, ", ")
}

func formatList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return b.String()
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
