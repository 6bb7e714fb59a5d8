package session

import "errors"

// ErrConfirmBeforeVisit means the user tried to confirm the channel add
// without having opened the channel link first.
var ErrConfirmBeforeVisit = errors.New("session: channel must be visited before confirming")

// UnlockGate guards the full report behind the two-step channel flow: the
// user opens the consultation channel link, then confirms they added it.
// Completion is client-asserted; the gate only enforces the ordering.
type UnlockGate struct {
	ChannelVisited bool `json:"channelVisited"`
	Unlocked       bool `json:"unlocked"`
}

// RecordChannelVisit marks that the channel link was opened. Idempotent.
func (g *UnlockGate) RecordChannelVisit() {
	g.ChannelVisited = true
}

// Confirm unlocks the report. Fails unless the channel visit was recorded,
// and stays a no-op error even if already unlocked without a visit record.
func (g *UnlockGate) Confirm() error {
	if !g.ChannelVisited {
		return ErrConfirmBeforeVisit
	}
	g.Unlocked = true
	return nil
}

// Relock resets the gate. New analysis results and restarts always relock.
func (g *UnlockGate) Relock() {
	g.ChannelVisited = false
	g.Unlocked = false
}
