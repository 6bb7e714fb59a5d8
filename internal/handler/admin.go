package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"leakbox/internal/lead"
)

const adminTokenTTL = 12 * time.Hour

// AdminHandler serves the operator triage surface: login plus the lead
// ledger views. Tokens are opaque, in-memory and expire with the process.
type AdminHandler struct {
	id       string
	password string
	ledger   *lead.Ledger

	mu     sync.Mutex
	tokens map[string]time.Time
}

func NewAdminHandler(id, password string, ledger *lead.Ledger) *AdminHandler {
	return &AdminHandler{
		id:       id,
		password: password,
		ledger:   ledger,
		tokens:   make(map[string]time.Time),
	}
}

// Login handles POST /v1/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       string `json:"id"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body, answerBodyLimit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login body")
		return
	}
	if h.password == "" || !credentialsMatch(body.ID, body.Password, h.id, h.password) {
		writeError(w, http.StatusUnauthorized, "아이디 또는 비밀번호가 올바르지 않습니다.")
		return
	}

	token := uuid.NewString()
	h.mu.Lock()
	h.tokens[token] = time.Now().Add(adminTokenTTL)
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func credentialsMatch(id, password, wantID, wantPassword string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(wantID)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPassword)) == 1
	return idOK && pwOK
}

// RequireAuth wraps operator-only routes behind a Bearer token check.
func (h *AdminHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || !h.tokenValid(token) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) tokenValid(token string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	exp, ok := h.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(h.tokens, token)
		return false
	}
	return true
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// ListLeads handles GET /v1/admin/leads. ?status= narrows the list to one
// triage bucket; ?includeDeleted=true shows soft-deleted entries too.
func (h *AdminHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := lead.Status(q.Get("status"))
	includeDeleted := q.Get("includeDeleted") == "true" || status == lead.StatusDeleted
	if status != "" && !lead.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	leads, err := h.ledger.List(r.Context(), includeDeleted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if status != "" {
		filtered := leads[:0]
		for _, l := range leads {
			if l.Status == status {
				filtered = append(filtered, l)
			}
		}
		leads = filtered
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": leads})
}

// UpdateLead handles PATCH /v1/admin/leads/{id}.
func (h *AdminHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status lead.Status `json:"status"`
	}
	if err := decodeJSON(r, &body, answerBodyLimit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed status body")
		return
	}
	l, err := h.ledger.UpdateStatus(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// DeleteLead handles DELETE /v1/admin/leads/{id}; soft delete only.
func (h *AdminHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.SoftDelete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, l)
}
