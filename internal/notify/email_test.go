package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leakbox/internal/lead"
)

func TestNotifyLeadPostsTemplate(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != sendPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewEmailNotifier(srv.URL, "svc_1", "tpl_1", "pub_1")
	if n == nil {
		t.Fatal("notifier not constructed")
	}
	l := lead.Lead{
		Region:    "서울 강남구",
		Phone:     "010-1234-5678",
		Message:   "천장에서 물이 떨어집니다",
		CreatedAt: time.Date(2025, 3, 2, 14, 30, 0, 0, time.UTC),
	}
	if err := n.NotifyLead(context.Background(), l); err != nil {
		t.Fatalf("NotifyLead: %v", err)
	}

	if got.ServiceID != "svc_1" || got.TemplateID != "tpl_1" || got.UserID != "pub_1" {
		t.Fatalf("ids = %+v", got)
	}
	if got.TemplateParams["phone"] != "010-1234-5678" {
		t.Fatalf("phone param = %q", got.TemplateParams["phone"])
	}
	if got.TemplateParams["date"] != "2025-03-02 14:30" {
		t.Fatalf("date param = %q", got.TemplateParams["date"])
	}
}

func TestNotifyLeadServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	n := NewEmailNotifier(srv.URL, "svc_1", "tpl_1", "pub_1")
	if err := n.NotifyLead(context.Background(), lead.Lead{Phone: "010-1234-5678"}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNewEmailNotifierUnconfigured(t *testing.T) {
	if n := NewEmailNotifier("https://api.emailjs.com", "", "tpl", "pub"); n != nil {
		t.Fatal("expected nil notifier without service id")
	}
	if n := NewEmailNotifier("https://api.emailjs.com", "svc", "", "pub"); n != nil {
		t.Fatal("expected nil notifier without template id")
	}
}
