package audits

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/server/middleware"
	"audit-backend/internal/shared/server/respond"
)

// QuotaRetryAfterSeconds is the wait suggested to clients after a quota failure.
const QuotaRetryAfterSeconds = 30

// Handler wires HTTP handlers to an Analyzer.
type Handler struct {
	Svc Analyzer
}

// NewHandler constructs a Handler.
func NewHandler(svc Analyzer) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches audit routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/audits", h.createAudit)
}

type createAuditRequest struct {
	WebsiteURL string `json:"websiteUrl"`
}

// AuditResponse is the body of a successful POST /audits.
type AuditResponse struct {
	ID         string         `json:"id"`
	WebsiteURL string         `json:"websiteUrl"`
	Result     AnalysisResult `json:"result"`
}

// ErrorDetails is carried in the error envelope of a failed audit.
type ErrorDetails struct {
	Kind              string         `json:"kind"`
	Classification    Classification `json:"classification"`
	ProviderMessage   string         `json:"providerMessage"`
	RetryAfterSeconds int            `json:"retryAfterSeconds,omitempty"`
}

func (h *Handler) createAudit(c *gin.Context) {
	var req createAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAuditError(c, llm.NewError(llm.KindInvalidInput, "Invalid request body", err))
		return
	}
	in, err := NewUserInput(req.WebsiteURL)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	auditID := uuid.NewString()
	c.Set("auditId", auditID)
	c.Set("websiteUrl", in.WebsiteURL)

	ctx := WithAuditID(c.Request.Context(), auditID)
	ctx = WithRequestID(ctx, middleware.RequestIDFromContext(c))

	result, err := h.Svc.Analyze(ctx, in)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	respond.OK(c, AuditResponse{
		ID:         auditID,
		WebsiteURL: in.WebsiteURL,
		Result:     result,
	})
}

// StatusFor maps an audit failure to an HTTP status.
func StatusFor(err error) int {
	kind, ok := llm.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case llm.KindInvalidInput:
		return http.StatusBadRequest
	case llm.KindConfig:
		return http.StatusServiceUnavailable
	case llm.KindQuota:
		return http.StatusTooManyRequests
	case llm.KindAuth, llm.KindTransport, llm.KindMalformedResponse, llm.KindValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeAuditError(c *gin.Context, err error) {
	class := Classify(err)
	kind, ok := llm.KindOf(err)
	code := string(kind)
	if !ok {
		code = "INTERNAL_ERROR"
	}
	status := StatusFor(err)

	details := ErrorDetails{
		Kind:            code,
		Classification:  class,
		ProviderMessage: sanitizeError(err),
	}
	message := UserMessage(class)
	if kind == llm.KindInvalidInput {
		var e *llm.Error
		if errors.As(err, &e) {
			message = e.Msg
		}
	}
	if status == http.StatusTooManyRequests {
		details.RetryAfterSeconds = QuotaRetryAfterSeconds
		c.Header("Retry-After", strconv.Itoa(QuotaRetryAfterSeconds))
	}
	respond.Error(c, status, code, message, details)
}
