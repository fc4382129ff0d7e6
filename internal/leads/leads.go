// Package leads records the email a visitor enters to unlock the full report.
package leads

import (
	"context"
	"strings"
	"time"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/telemetry"
)

const (
	InvalidEmailMessage = "Please enter a valid email address"
	MissingURLMessage   = "Website URL required"
)

// Lead is one captured unlock.
type Lead struct {
	Email      string    `json:"email"`
	WebsiteURL string    `json:"websiteUrl"`
	AuditID    string    `json:"auditId,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Capturer accepts leads.
type Capturer interface {
	Capture(ctx context.Context, lead Lead) (Lead, error)
}

// Service validates a lead and writes it to the structured log. Nothing is
// persisted.
type Service struct {
	now func() time.Time
}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{now: time.Now}
}

// Capture validates and logs lead. The email only needs to contain '@'.
func (s *Service) Capture(_ context.Context, lead Lead) (Lead, error) {
	lead.Email = strings.TrimSpace(lead.Email)
	lead.WebsiteURL = strings.TrimSpace(lead.WebsiteURL)
	lead.AuditID = strings.TrimSpace(lead.AuditID)
	if !strings.Contains(lead.Email, "@") {
		return Lead{}, llm.NewError(llm.KindInvalidInput, InvalidEmailMessage, nil)
	}
	if lead.WebsiteURL == "" {
		return Lead{}, llm.NewError(llm.KindInvalidInput, MissingURLMessage, nil)
	}
	lead.CapturedAt = s.now().UTC()

	telemetry.Info("lead.captured", map[string]any{
		"email":       lead.Email,
		"website_url": lead.WebsiteURL,
		"audit_id":    lead.AuditID,
		"captured_at": lead.CapturedAt.Format(time.RFC3339),
	})
	metrics.IncLeadCaptured()
	return lead, nil
}
