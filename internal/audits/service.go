package audits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/telemetry"
)

// Analyzer runs one audit.
type Analyzer interface {
	Analyze(ctx context.Context, in UserInput) (AnalysisResult, error)
}

// PageSnapshotter renders live page evidence for the prompt.
type PageSnapshotter interface {
	PromptContext(ctx context.Context, websiteURL string) (string, error)
}

// Service drives prompt building, completion and normalization. It holds no
// per-call state; concurrent calls for the same URL are independent.
type Service struct {
	LLM      llm.Completer
	Snapshot PageSnapshotter
}

// NewService constructs a Service. snap may be nil.
func NewService(completer llm.Completer, snap PageSnapshotter) *Service {
	return &Service{LLM: completer, Snapshot: snap}
}

// Analyze performs one audit. Failures are returned unchanged from the
// component that raised them so Classify sees the original kind and message.
func (s *Service) Analyze(ctx context.Context, in UserInput) (AnalysisResult, error) {
	if strings.TrimSpace(in.WebsiteURL) == "" {
		return AnalysisResult{}, llm.NewError(llm.KindInvalidInput, MissingURLMessage, nil)
	}
	if s.LLM == nil {
		return AnalysisResult{}, llm.NewError(llm.KindConfig, llm.MissingKeyMessage, nil)
	}

	auditID := auditIDFromContext(ctx)
	if auditID == "" {
		auditID = uuid.NewString()
	}
	base := map[string]any{
		"audit_id":    auditID,
		"request_id":  requestIDFromContext(ctx),
		"website_url": in.WebsiteURL,
	}

	start := time.Now()
	metrics.IncAuditStarted()
	logStatus(base, "started", nil)

	prompt := llm.BuildPrompt(in.WebsiteURL, s.snapshotOptions(ctx, base, in.WebsiteURL)...)
	completion, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		s.recordFailure(base, start, err)
		return AnalysisResult{}, err
	}

	result, err := Normalize(completion.Text, completion.Chunks)
	if err != nil {
		s.recordFailure(base, start, err)
		return AnalysisResult{}, err
	}

	metrics.IncAuditCompleted()
	metrics.ObserveAuditDurationMs(metrics.SinceMillis(start))
	logStatus(base, "completed", map[string]any{
		"overall_score":     result.OverallScore,
		"maturity_level":    string(result.MaturityLevel),
		"grounding_sources": len(result.GroundingSources),
		"duration_ms":       metrics.SinceMillis(start),
	})
	return result, nil
}

func (s *Service) snapshotOptions(ctx context.Context, base map[string]any, websiteURL string) []llm.PromptOption {
	if s.Snapshot == nil {
		return nil
	}
	text, err := s.Snapshot.PromptContext(ctx, websiteURL)
	if err != nil {
		fields := copyFields(base)
		fields["error"] = sanitizeError(err)
		telemetry.Warn("audit.snapshot_failed", fields)
		return nil
	}
	return []llm.PromptOption{llm.WithPageContext(text)}
}

func (s *Service) recordFailure(base map[string]any, start time.Time, err error) {
	kind, _ := llm.KindOf(err)
	metrics.IncAuditFailed(string(kind))
	metrics.ObserveAuditDurationMs(metrics.SinceMillis(start))
	logStatus(base, "failed", map[string]any{
		"kind":           string(kind),
		"classification": string(Classify(err)),
		"error":          sanitizeError(err),
		"duration_ms":    metrics.SinceMillis(start),
	})
}

func logStatus(base map[string]any, status string, extra map[string]any) {
	fields := copyFields(base)
	fields["status"] = status
	for k, v := range extra {
		fields[k] = v
	}
	if status == "failed" {
		telemetry.Error("audit.status", fields)
		return
	}
	telemetry.Info("audit.status", fields)
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

var _ Analyzer = (*Service)(nil)
