package analysis

import (
	"context"
	"encoding/json"
	"log"

	"leakbox/internal/llmclient"
	"leakbox/internal/wizard"
)

// Phase is the externally observable state of one analysis run.
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhaseRelevanceChecking Phase = "RELEVANCE_CHECKING"
	PhaseAnalyzing         Phase = "ANALYZING"
	PhaseSucceeded         Phase = "SUCCEEDED"
	PhaseRelevanceRejected Phase = "RELEVANCE_REJECTED"
	PhaseFailed            Phase = "FAILED"
)

// Terminal reports whether the phase ends a run.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseRelevanceRejected, PhaseFailed:
		return true
	}
	return false
}

// User-facing failure text. Kept in Korean to match the rest of the product.
const (
	MsgIrrelevantPhotos = "업로드하신 사진이 누수 진단과 관련이 없어 보입니다. 누수 부위나 피해 현장 사진을 다시 올려주세요."
	MsgAnalysisFailed   = "분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	MsgPhotoRequired    = "정밀 분석을 위해 현장 사진 업로드가 필요합니다."
)

// Photo caps per call. The relevance pre-check samples at most two photos to
// keep the cheap gate cheap; the report call sends at most three.
const (
	relevancePhotoCap = 2
	reportPhotoCap    = 3
)

// Outcome is the terminal state of a run. Result is non-nil only for
// PhaseSucceeded; UserMessage is set for the two failure phases.
type Outcome struct {
	Phase       Phase
	Result      *Result
	UserMessage string
}

// Pipeline runs the two-phase photo analysis. Report and Relevance may be the
// same client; Relevance is consulted only when RelevanceEnabled is set.
// OnPhase, when non-nil, observes every transition including the terminal one.
type Pipeline struct {
	Report           llmclient.LLMClient
	Relevance        llmclient.LLMClient
	RelevanceEnabled bool
	OnPhase          func(Phase)
}

func (p *Pipeline) setPhase(ph Phase) {
	if p.OnPhase != nil {
		p.OnPhase(ph)
	}
}

// Run executes one analysis over a completed answer set. It never issues a
// model call without at least one photo, and the relevance gate fails open:
// only an explicit "not relevant" verdict rejects the run.
func (p *Pipeline) Run(ctx context.Context, a *wizard.AnswerSet) Outcome {
	if len(a.Photos) == 0 {
		return Outcome{Phase: PhaseFailed, UserMessage: MsgPhotoRequired}
	}

	if p.RelevanceEnabled && p.Relevance != nil {
		p.setPhase(PhaseRelevanceChecking)
		if relevant := p.checkRelevance(ctx, a); !relevant {
			p.setPhase(PhaseRelevanceRejected)
			return Outcome{Phase: PhaseRelevanceRejected, UserMessage: MsgIrrelevantPhotos}
		}
	}

	p.setPhase(PhaseAnalyzing)
	raw, err := p.Report.GenerateJSON(ctx, llmclient.Request{
		Prompt: ReportPrompt(a),
		Images: imageParts(a.Photos, reportPhotoCap),
		Schema: ReportSchema(),
	})
	if err != nil {
		log.Printf("analysis: report call failed: %v", err)
		p.setPhase(PhaseFailed)
		return Outcome{Phase: PhaseFailed, UserMessage: MsgAnalysisFailed}
	}
	res, err := ParseResult(raw)
	if err != nil {
		log.Printf("analysis: %v", err)
		p.setPhase(PhaseFailed)
		return Outcome{Phase: PhaseFailed, UserMessage: MsgAnalysisFailed}
	}

	p.setPhase(PhaseSucceeded)
	return Outcome{Phase: PhaseSucceeded, Result: res}
}

// checkRelevance returns false only on an explicit negative verdict. Call
// errors and malformed verdicts pass the gate so a flaky pre-check never
// blocks a paying user from a real analysis.
func (p *Pipeline) checkRelevance(ctx context.Context, a *wizard.AnswerSet) bool {
	raw, err := p.Relevance.GenerateJSON(ctx, llmclient.Request{
		Prompt: RelevancePrompt(),
		Images: imageParts(a.Photos, relevancePhotoCap),
		Schema: RelevanceSchema(),
	})
	if err != nil {
		log.Printf("analysis: relevance check failed open: %v", err)
		return true
	}
	var verdict struct {
		IsRelevant *bool `json:"isRelevant"`
	}
	if err := json.Unmarshal(raw, &verdict); err != nil || verdict.IsRelevant == nil {
		log.Printf("analysis: relevance verdict unreadable, failing open")
		return true
	}
	return *verdict.IsRelevant
}

func imageParts(photos []wizard.EncodedImage, limit int) []llmclient.ImagePart {
	if len(photos) > limit {
		photos = photos[:limit]
	}
	parts := make([]llmclient.ImagePart, 0, len(photos))
	for _, ph := range photos {
		data, err := ph.Bytes()
		if err != nil {
			log.Printf("analysis: skipping undecodable photo: %v", err)
			continue
		}
		parts = append(parts, llmclient.ImagePart{MIMEType: ph.MediaType, Data: data})
	}
	return parts
}
