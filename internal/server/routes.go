package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"leakbox/internal/analysis"
	"leakbox/internal/archive"
	"leakbox/internal/handler"
	"leakbox/internal/lead"
	"leakbox/internal/session"
)

// Container holds everything the route table wires together.
type Container struct {
	Sessions       *session.Store
	Pipeline       *analysis.Pipeline
	Hub            *handler.EventHub
	Ledger         *lead.Ledger
	Archive        *archive.Store
	ChannelURL     string
	AnalyzeTimeout time.Duration
	AdminID        string
	AdminPassword  string
}

// NewRouter builds the full /v1 API surface.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.Sessions)
	photoHandler := handler.NewPhotoHandler(c.Sessions)
	analyzeHandler := handler.NewAnalyzeHandler(c.Sessions, c.Pipeline, c.Hub, c.Archive, c.ChannelURL, c.AnalyzeTimeout)
	eventsHandler := handler.NewEventsHandler(c.Sessions, c.Hub)
	leadHandler := handler.NewLeadHandler(c.Ledger)
	adminHandler := handler.NewAdminHandler(c.AdminID, c.AdminPassword, c.Ledger)

	r.Use(handler.CORSMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/answers", sessionHandler.Answer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/retreat", sessionHandler.Retreat).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/navigate", sessionHandler.Navigate).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/restart", sessionHandler.Restart).Methods("POST", "OPTIONS")

	v1.HandleFunc("/sessions/{id}/photos", photoHandler.Add).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/photos/{index}", photoHandler.Remove).Methods("DELETE", "OPTIONS")

	v1.HandleFunc("/sessions/{id}/analyze", analyzeHandler.Analyze).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/report", analyzeHandler.Report).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/unlock/channel", analyzeHandler.UnlockChannel).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/unlock/confirm", analyzeHandler.UnlockConfirm).Methods("POST", "OPTIONS")

	v1.HandleFunc("/sessions/{id}/events", eventsHandler.Stream).Methods("GET")

	v1.HandleFunc("/leads", leadHandler.Submit).Methods("POST", "OPTIONS")

	v1.HandleFunc("/admin/login", adminHandler.Login).Methods("POST", "OPTIONS")
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(adminHandler.RequireAuth)
	adminRoutes.HandleFunc("/admin/leads", adminHandler.ListLeads).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/admin/leads/{id}", adminHandler.UpdateLead).Methods("PATCH", "OPTIONS")
	adminRoutes.HandleFunc("/admin/leads/{id}", adminHandler.DeleteLead).Methods("DELETE", "OPTIONS")

	return r
}
