// Package notify pushes new consultation leads to the operator through an
// EmailJS-compatible send endpoint. Delivery is best effort; the ledger is
// the source of truth.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leakbox/internal/lead"
)

const sendPath = "/api/v1.0/email/send"

// EmailNotifier posts one templated email per lead.
type EmailNotifier struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	client     *http.Client
}

// NewEmailNotifier returns nil when the service is not configured, which
// callers treat as notification disabled.
func NewEmailNotifier(endpoint, serviceID, templateID, publicKey string) *EmailNotifier {
	if strings.TrimSpace(serviceID) == "" || strings.TrimSpace(templateID) == "" {
		return nil
	}
	return &EmailNotifier{
		endpoint:   strings.TrimRight(endpoint, "/"),
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// NotifyLead sends the operator email for one lead.
func (n *EmailNotifier) NotifyLead(ctx context.Context, l lead.Lead) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:  n.serviceID,
		TemplateID: n.templateID,
		UserID:     n.publicKey,
		TemplateParams: map[string]string{
			"region":  l.Region,
			"phone":   l.Phone,
			"message": l.Message,
			"date":    l.CreatedAt.Format("2006-01-02 15:04"),
		},
	})
	if err != nil {
		return fmt.Errorf("notify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: email service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
