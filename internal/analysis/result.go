package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Probability is the closed likelihood set the service is contracted to use.
// Any other label is a contract violation and is rejected, never rendered.
type Probability string

const (
	ProbabilityHigh   Probability = "High"
	ProbabilityMedium Probability = "Medium"
	ProbabilityLow    Probability = "Low"
)

func validProbability(p Probability) bool {
	switch p {
	case ProbabilityHigh, ProbabilityMedium, ProbabilityLow:
		return true
	}
	return false
}

// Cause is one probable leak cause; order in the result is significant
// (most likely first, as returned).
type Cause struct {
	Probability Probability `json:"probability"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// Insurance is the claim guidance block of the report.
type Insurance struct {
	Probability Probability `json:"probability"`
	PrepList    []string    `json:"prepList"`
	Disclaimer  string      `json:"disclaimer"`
}

// Result is the immutable diagnostic report as validated from the service
// response. Held per session until the user restarts or leaves.
type Result struct {
	RiskScore           int       `json:"riskScore"`
	Summary             string    `json:"summary"`
	DetectionCost       string    `json:"detectionCost"`
	RepairCostInfo      string    `json:"repairCostInfo"`
	OverchargeThreshold string    `json:"overchargeThreshold"`
	Causes              []Cause   `json:"causes"`
	ExpertGuide         string    `json:"expertGuide"`
	ScamCheckQuestions  []string  `json:"scamCheckQuestions"`
	Insurance           Insurance `json:"insurance"`
}

// ChecklistDelimiter separates the question, red-flag answer and rationale
// packed into each scam-check entry.
const ChecklistDelimiter = "|"

// ChecklistItem is one scam-check entry split into its three parts.
type ChecklistItem struct {
	Question string `json:"question"`
	RedFlag  string `json:"redFlag"`
	Reason   string `json:"reason"`
}

// SplitChecklist unpacks the compound scam-check strings. Entries with fewer
// than three parts keep what they have; empties are dropped.
func SplitChecklist(entries []string) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ChecklistDelimiter)
		item := ChecklistItem{}
		if len(parts) > 0 {
			item.Question = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "질문:"))
		}
		if len(parts) > 1 {
			item.RedFlag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), "위험답변:"))
		}
		if len(parts) > 2 {
			item.Reason = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[2]), "판단근거:"))
		}
		if item.Question == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// resultWire mirrors Result with pointers so missing required fields are
// distinguishable from zero values.
type resultWire struct {
	RiskScore           *int       `json:"riskScore"`
	Summary             *string    `json:"summary"`
	DetectionCost       *string    `json:"detectionCost"`
	RepairCostInfo      *string    `json:"repairCostInfo"`
	OverchargeThreshold *string    `json:"overchargeThreshold"`
	Causes              []Cause    `json:"causes"`
	ExpertGuide         *string    `json:"expertGuide"`
	ScamCheckQuestions  []string   `json:"scamCheckQuestions"`
	Insurance           *Insurance `json:"insurance"`
}

// ParseResult validates the raw service payload against the declared report
// contract. Any structural mismatch is an error; callers must treat it as a
// failed run, never a partial render.
func ParseResult(raw json.RawMessage) (*Result, error) {
	var w resultWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("analysis: malformed report payload: %w", err)
	}
	for name, ptr := range map[string]*string{
		"summary":             w.Summary,
		"detectionCost":       w.DetectionCost,
		"repairCostInfo":      w.RepairCostInfo,
		"overchargeThreshold": w.OverchargeThreshold,
	} {
		if ptr == nil || strings.TrimSpace(*ptr) == "" {
			return nil, fmt.Errorf("analysis: report missing required field %q", name)
		}
	}
	if w.RiskScore == nil {
		return nil, fmt.Errorf("analysis: report missing required field %q", "riskScore")
	}
	if *w.RiskScore < 0 || *w.RiskScore > 100 {
		return nil, fmt.Errorf("analysis: riskScore %d outside [0,100]", *w.RiskScore)
	}
	if len(w.Causes) == 0 {
		return nil, fmt.Errorf("analysis: report has no causes")
	}
	for i, c := range w.Causes {
		if !validProbability(c.Probability) {
			return nil, fmt.Errorf("analysis: cause %d has probability %q outside the contract", i, c.Probability)
		}
		if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Description) == "" {
			return nil, fmt.Errorf("analysis: cause %d is incomplete", i)
		}
	}
	if len(w.ScamCheckQuestions) == 0 {
		return nil, fmt.Errorf("analysis: report has no scam check questions")
	}
	if w.Insurance == nil {
		return nil, fmt.Errorf("analysis: report missing required field %q", "insurance")
	}
	if !validProbability(w.Insurance.Probability) {
		return nil, fmt.Errorf("analysis: insurance probability %q outside the contract", w.Insurance.Probability)
	}
	if strings.TrimSpace(w.Insurance.Disclaimer) == "" {
		return nil, fmt.Errorf("analysis: insurance disclaimer is empty")
	}

	res := &Result{
		RiskScore:           *w.RiskScore,
		Summary:             *w.Summary,
		DetectionCost:       *w.DetectionCost,
		RepairCostInfo:      *w.RepairCostInfo,
		OverchargeThreshold: *w.OverchargeThreshold,
		Causes:              w.Causes,
		ScamCheckQuestions:  w.ScamCheckQuestions,
		Insurance:           *w.Insurance,
	}
	if w.ExpertGuide != nil {
		res.ExpertGuide = *w.ExpertGuide
	}
	return res, nil
}
