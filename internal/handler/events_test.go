package handler

import (
	"testing"

	"leakbox/internal/analysis"
)

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe("s1")
	defer cancel()
	other, cancelOther := hub.Subscribe("s2")
	defer cancelOther()

	hub.Broadcast("s1", analysis.PhaseAnalyzing)

	select {
	case ev := <-ch:
		if ev.SessionID != "s1" || ev.Phase != analysis.PhaseAnalyzing {
			t.Fatalf("event = %+v", ev)
		}
	default:
		t.Fatal("subscriber did not receive the event")
	}
	select {
	case ev := <-other:
		t.Fatalf("unrelated session received %+v", ev)
	default:
	}
}

func TestEventHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe("s1")
	defer cancel()

	// Fill the buffer past capacity; Broadcast must never block.
	for i := 0; i < 40; i++ {
		hub.Broadcast("s1", analysis.PhaseAnalyzing)
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffered = %d, want full buffer %d", len(ch), cap(ch))
	}
}

func TestEventHubUnsubscribe(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe("s1")
	cancel()

	hub.Broadcast("s1", analysis.PhaseSucceeded)
	select {
	case ev := <-ch:
		t.Fatalf("cancelled subscriber received %+v", ev)
	default:
	}
}
