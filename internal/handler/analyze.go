package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"leakbox/internal/analysis"
	"leakbox/internal/archive"
	"leakbox/internal/session"
	"leakbox/internal/wizard"
)

// AnalyzeHandler drives the analysis pipeline and serves the resulting
// report behind the unlock gate.
type AnalyzeHandler struct {
	store      *session.Store
	pipeline   *analysis.Pipeline
	hub        *EventHub
	archive    *archive.Store
	channelURL string
	timeout    time.Duration
}

func NewAnalyzeHandler(store *session.Store, p *analysis.Pipeline, hub *EventHub, arch *archive.Store, channelURL string, timeout time.Duration) *AnalyzeHandler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &AnalyzeHandler{
		store:      store,
		pipeline:   p,
		hub:        hub,
		archive:    arch,
		channelURL: channelURL,
		timeout:    timeout,
	}
}

var errAnalysisInFlight = errors.New("analysis already running")

// Analyze handles POST /v1/sessions/{id}/analyze. The run is synchronous;
// phase transitions stream over the session's event socket meanwhile. A
// second analyze on the same session is rejected until the first one ends.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	startPhase := analysis.PhaseAnalyzing
	if h.pipeline.RelevanceEnabled && h.pipeline.Relevance != nil {
		startPhase = analysis.PhaseRelevanceChecking
	}

	var answers *wizard.AnswerSet
	_, err := h.store.Update(id, func(s *session.Session) error {
		if s.Phase != "" && s.Phase != analysis.PhaseIdle && !s.Phase.Terminal() {
			return errAnalysisInFlight
		}
		if err := s.Seq.Finish(); err != nil {
			return err
		}
		s.Phase = startPhase
		answers = s.Seq.Answers
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, errAnalysisInFlight):
			writeError(w, http.StatusConflict, "이미 분석이 진행 중입니다.")
		case isValidation(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	run := *h.pipeline
	run.OnPhase = func(ph analysis.Phase) {
		h.hub.Broadcast(id, ph)
		if !ph.Terminal() {
			h.store.Update(id, func(s *session.Session) error {
				s.Phase = ph
				return nil
			})
		}
	}
	out := run.Run(ctx, answers)

	s, err := h.store.Update(id, func(s *session.Session) error {
		s.SetOutcome(out)
		if out.Phase == analysis.PhaseRelevanceRejected {
			// Back to the photo step with answers and photos intact so the
			// user swaps photos instead of redoing the wizard.
			s.RewindToPhotos()
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "session expired during analysis")
		return
	}

	if out.Phase == analysis.PhaseSucceeded && h.archive != nil {
		actx, acancel := context.WithTimeout(context.Background(), 15*time.Second)
		if aerr := h.archive.SaveReport(actx, id, answers, out.Result); aerr != nil {
			log.Printf("handler: report archive failed: %v", aerr)
		}
		acancel()
	}

	writeJSON(w, http.StatusOK, viewOf(s))
}

// Report handles GET /v1/sessions/{id}/report. Until the unlock gate opens
// the response carries only the teaser fields.
func (h *AnalyzeHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if s.Result == nil {
		writeError(w, http.StatusConflict, "분석 결과가 없습니다.")
		return
	}
	if !s.Unlock.Unlocked {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"locked": true,
			"preview": map[string]interface{}{
				"riskScore": s.Result.RiskScore,
				"summary":   s.Result.Summary,
			},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locked":    false,
		"report":    s.Result,
		"checklist": analysis.SplitChecklist(s.Result.ScamCheckQuestions),
	})
}

// UnlockChannel handles POST /v1/sessions/{id}/unlock/channel. It records
// the visit and hands back the channel link for the client to open.
func (h *AnalyzeHandler) UnlockChannel(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Update(mux.Vars(r)["id"], func(s *session.Session) error {
		s.Unlock.RecordChannelVisit()
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"channelUrl": h.channelURL,
		"session":    viewOf(s),
	})
}

// UnlockConfirm handles POST /v1/sessions/{id}/unlock/confirm.
func (h *AnalyzeHandler) UnlockConfirm(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Update(mux.Vars(r)["id"], func(s *session.Session) error {
		return s.Unlock.Confirm()
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, session.ErrConfirmBeforeVisit):
			writeError(w, http.StatusConflict, "채널 추가 후 확인해주세요.")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}
