package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"leakbox/internal/analysis"
	"leakbox/internal/session"
)

const (
	eventsWSWriteWait = 10 * time.Second
	eventsWSPongWait  = 60 * time.Second
	eventsWSPingEvery = (eventsWSPongWait * 9) / 10
)

var eventsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// PhaseEvent is one pipeline transition pushed to subscribed clients.
type PhaseEvent struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId"`
	Phase     analysis.Phase `json:"phase"`
	At        time.Time      `json:"at"`
}

// EventHub fans analysis phase transitions out to websocket subscribers,
// keyed by session. Slow subscribers drop events rather than block the
// pipeline.
type EventHub struct {
	mu   sync.Mutex
	subs map[string]map[chan PhaseEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[string]map[chan PhaseEvent]struct{})}
}

// Broadcast pushes one phase transition to every subscriber of the session.
func (h *EventHub) Broadcast(sessionID string, phase analysis.Phase) {
	ev := PhaseEvent{Type: "phase", SessionID: sessionID, Phase: phase, At: time.Now().UTC()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener for one session. The returned cancel must
// be called exactly once.
func (h *EventHub) Subscribe(sessionID string) (<-chan PhaseEvent, func()) {
	ch := make(chan PhaseEvent, 16)
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan PhaseEvent]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs[sessionID], ch)
		if len(h.subs[sessionID]) == 0 {
			delete(h.subs, sessionID)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// EventsHandler serves GET /v1/sessions/{id}/events as a websocket that
// streams analysis phase transitions.
type EventsHandler struct {
	store *session.Store
	hub   *EventHub
}

func NewEventsHandler(store *session.Store, hub *EventHub) *EventsHandler {
	return &EventsHandler{store: store, hub: hub}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := eventsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(eventsWSPongWait)); err != nil {
		log.Printf("events ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsWSPongWait))
	})

	events, cancel := h.hub.Subscribe(id)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsWSPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
