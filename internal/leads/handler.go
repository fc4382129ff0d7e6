package leads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/server/respond"
)

// Handler exposes lead capture over HTTP.
type Handler struct {
	Svc Capturer
}

// NewHandler constructs a Handler.
func NewHandler(svc Capturer) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches lead routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads", h.captureLead)
}

type captureLeadRequest struct {
	Email      string `json:"email"`
	WebsiteURL string `json:"websiteUrl"`
	AuditID    string `json:"auditId"`
}

// CaptureResponse is the body of a successful POST /leads.
type CaptureResponse struct {
	Status string `json:"status"`
}

func (h *Handler) captureLead(c *gin.Context) {
	var req captureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, string(llm.KindInvalidInput), "Invalid request body", nil)
		return
	}
	if req.AuditID != "" {
		c.Set("auditId", req.AuditID)
	}
	c.Set("websiteUrl", req.WebsiteURL)

	_, err := h.Svc.Capture(c.Request.Context(), Lead{
		Email:      req.Email,
		WebsiteURL: req.WebsiteURL,
		AuditID:    req.AuditID,
	})
	if err != nil {
		var e *llm.Error
		if errors.As(err, &e) && e.Kind == llm.KindInvalidInput {
			respond.Error(c, http.StatusBadRequest, string(e.Kind), e.Msg, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not record your email. Please try again.", nil)
		return
	}
	respond.Accepted(c, CaptureResponse{Status: "captured"})
}
