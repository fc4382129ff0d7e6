package audits

import "context"

type requestIDKey struct{}

type auditIDKey struct{}

// WithRequestID attaches a request ID to the context for logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithAuditID fixes the audit ID used in logs for the next Analyze call.
func WithAuditID(ctx context.Context, auditID string) context.Context {
	if ctx == nil || auditID == "" {
		return ctx
	}
	return context.WithValue(ctx, auditIDKey{}, auditID)
}

func auditIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(auditIDKey{}).(string); ok {
		return id
	}
	return ""
}
