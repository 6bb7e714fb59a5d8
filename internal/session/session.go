// Package session holds the per-user diagnosis state: the wizard sequencer,
// the app-level navigation history, the analysis outcome and the report
// unlock gate. Sessions live in memory only and expire with their store.
package session

import (
	"time"

	"github.com/google/uuid"

	"leakbox/internal/analysis"
	"leakbox/internal/wizard"
)

// Session is one user's diagnosis run. All mutation goes through the store's
// Update so concurrent handlers never race on the same session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Seq    *wizard.Sequencer `json:"wizard"`
	Nav    NavStack          `json:"nav"`
	Unlock UnlockGate        `json:"unlock"`

	Phase      analysis.Phase   `json:"phase"`
	Result     *analysis.Result `json:"result,omitempty"`
	FailureMsg string           `json:"failureMessage,omitempty"`
}

// New creates a fresh session over the given wizard flow.
func New(flow wizard.Flow) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Seq:       wizard.NewSequencer(flow),
		Phase:     analysis.PhaseIdle,
	}
}

// Restart wipes everything except identity: fresh wizard, empty navigation,
// relocked report, no result. Equivalent to starting over on the landing page.
func (s *Session) Restart(flow wizard.Flow) {
	s.Seq = wizard.NewSequencer(flow)
	s.Nav = NavStack{}
	s.Unlock.Relock()
	s.Phase = analysis.PhaseIdle
	s.Result = nil
	s.FailureMsg = ""
}

// SetOutcome records a terminal analysis outcome. A new result always arrives
// locked; stale results and failure text from earlier runs are cleared.
func (s *Session) SetOutcome(out analysis.Outcome) {
	s.Phase = out.Phase
	s.Result = out.Result
	s.FailureMsg = out.UserMessage
	s.Unlock.Relock()
}

// RewindToPhotos sends the wizard back to the photo step with answers and
// photos intact. The recorded phase and failure text stay visible so the
// user sees why they are back on the photo collector; any stale report is
// dropped. Used after a relevance rejection so the user replaces photos,
// not answers.
func (s *Session) RewindToPhotos() {
	s.Seq.RewindToPhotos()
	s.Result = nil
}
