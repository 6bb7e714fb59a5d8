package handler

import (
	"errors"
	"net/http"

	"leakbox/internal/lead"
)

// LeadHandler accepts consultation requests from the public site.
type LeadHandler struct {
	ledger *lead.Ledger
}

func NewLeadHandler(ledger *lead.Ledger) *LeadHandler {
	return &LeadHandler{ledger: ledger}
}

// Submit handles POST /v1/leads.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Region  string `json:"region"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body, answerBodyLimit); err != nil {
		writeError(w, http.StatusBadRequest, "malformed lead body")
		return
	}

	l, err := h.ledger.Submit(r.Context(), lead.Lead{
		Region:  body.Region,
		Phone:   body.Phone,
		Message: body.Message,
	})
	if err != nil {
		if errors.Is(err, lead.ErrInvalidPhone) {
			writeError(w, http.StatusBadRequest, "올바른 휴대폰 번호를 입력해주세요. (010-0000-0000)")
			return
		}
		if errors.Is(err, lead.ErrEmptyRegion) {
			writeError(w, http.StatusBadRequest, "지역을 입력해주세요.")
			return
		}
		// The lead may already be in the ledger; the submission still
		// reports failure when the operator notification does not go out.
		writeError(w, http.StatusBadGateway, "상담 신청 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
