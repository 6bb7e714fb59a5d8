package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"leakbox/internal/analysis"
	"leakbox/internal/session"
	"leakbox/internal/wizard"
)

const answerBodyLimit = 64 << 10

// SessionHandler serves the wizard lifecycle: creation, answers, navigation
// and restart. Photo and analysis endpoints live in their own handlers.
type SessionHandler struct {
	store *session.Store
}

func NewSessionHandler(store *session.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// sessionView is the wire snapshot. Photo payloads stay server-side; the
// client sees media types and indexes only.
type sessionView struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"createdAt"`
	StepIndex  int         `json:"stepIndex"`
	TotalSteps int         `json:"totalSteps"`
	Step       wizard.Step `json:"step"`
	Complete   bool        `json:"complete"`

	Answers answersView `json:"answers"`

	Phase          analysis.Phase     `json:"phase"`
	FailureMessage string             `json:"failureMessage,omitempty"`
	Unlock         session.UnlockGate `json:"unlock"`
	HasReport      bool               `json:"hasReport"`
	NavDepth       int                `json:"navDepth"`
}

type answersView struct {
	HazardChecks  []bool              `json:"hazardChecks"`
	Location      wizard.Location     `json:"location"`
	Symptoms      []wizard.Symptom    `json:"symptoms"`
	Frequency     wizard.Frequency    `json:"frequency"`
	UpperFloor    wizard.UpperFloor   `json:"upperFloor"`
	RepairHistory wizard.RepairPast   `json:"repairHistory"`
	BuildingType  wizard.BuildingType `json:"buildingType"`
	BuildingAge   wizard.BuildingAge  `json:"buildingAge"`
	Severity      wizard.Severity     `json:"severity"`
	Note          string              `json:"note"`
	Photos        []photoView         `json:"photos"`
}

type photoView struct {
	Index     int    `json:"index"`
	MediaType string `json:"mediaType"`
}

func viewOf(s *session.Session) sessionView {
	a := s.Seq.Answers
	photos := make([]photoView, 0, len(a.Photos))
	for i, p := range a.Photos {
		photos = append(photos, photoView{Index: i, MediaType: p.MediaType})
	}
	return sessionView{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		StepIndex:  s.Seq.Current(),
		TotalSteps: len(s.Seq.Flow.Steps),
		Step:       s.Seq.CurrentStep(),
		Complete:   s.Seq.IsComplete(),
		Answers: answersView{
			HazardChecks:  a.HazardChecks[:],
			Location:      a.Location,
			Symptoms:      a.Symptoms,
			Frequency:     a.Frequency,
			UpperFloor:    a.UpperFloor,
			RepairHistory: a.RepairPast,
			BuildingType:  a.BuildingType,
			BuildingAge:   a.BuildingAge,
			Severity:      a.Severity,
			Note:          a.Note,
			Photos:        photos,
		},
		Phase:          s.Phase,
		FailureMessage: s.FailureMsg,
		Unlock:         s.Unlock,
		HasReport:      s.Result != nil,
		NavDepth:       s.Nav.Depth(),
	}
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.store.Create()
	writeJSON(w, http.StatusCreated, viewOf(s))
}

// Get handles GET /v1/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// Answer handles POST /v1/sessions/{id}/answers. The submitted delta is
// applied to the current step; steps marked auto-advance move forward as
// soon as their requirement is met.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var delta wizard.Answer
	if err := decodeJSON(r, &delta, answerBodyLimit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed answer body")
		return
	}
	h.mutate(w, r, func(s *session.Session) error {
		if err := s.Seq.Apply(delta); err != nil {
			return err
		}
		if s.Seq.CurrentStep().AutoAdvance {
			if err := s.Seq.Advance(); err != nil {
				// Requirement not met yet; stay on the step.
				var verr *wizard.ValidationError
				if !errors.As(err, &verr) {
					return err
				}
			}
		}
		return nil
	})
}

// Advance handles POST /v1/sessions/{id}/advance.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *session.Session) error {
		return s.Seq.Advance()
	})
}

// Retreat handles POST /v1/sessions/{id}/retreat, one wizard step back. At
// the first step there is no wizard step to return to, so the request falls
// through to the navigation history and answers like /back does.
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	var view session.View
	fellThrough := false
	s, err := h.store.Update(mux.Vars(r)["id"], func(s *session.Session) error {
		if err := s.Seq.Retreat(); err != nil {
			if errors.Is(err, wizard.ErrAtFirstStep) {
				view = s.Nav.Pop()
				fellThrough = true
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case isValidation(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if fellThrough {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"view":    view,
			"session": viewOf(s),
		})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// Navigate handles POST /v1/sessions/{id}/navigate, pushing an app view.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View session.View `json:"view"`
	}
	if err := decodeJSON(r, &body, answerBodyLimit); err != nil || body.View == "" {
		writeError(w, http.StatusBadRequest, "view is required")
		return
	}
	h.mutate(w, r, func(s *session.Session) error {
		s.Nav.Push(body.View)
		return nil
	})
}

// Back handles POST /v1/sessions/{id}/back, the device back action. The
// response carries the view to show; an exhausted history yields LANDING.
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	var view session.View
	s, err := h.store.Update(mux.Vars(r)["id"], func(s *session.Session) error {
		view = s.Nav.Pop()
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"view":    view,
		"session": viewOf(s),
	})
}

// Restart handles POST /v1/sessions/{id}/restart.
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	flow := h.store.Flow()
	h.mutate(w, r, func(s *session.Session) error {
		s.Restart(flow)
		return nil
	})
}

// mutate runs fn under the store lock and writes the refreshed snapshot,
// mapping wizard validation failures to 422.
func (h *SessionHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	s, err := h.store.Update(mux.Vars(r)["id"], fn)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case isValidation(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func isValidation(err error) bool {
	var verr *wizard.ValidationError
	return errors.As(err, &verr)
}
