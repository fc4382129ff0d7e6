package audits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-backend/internal/llm"
)

type stubAnalyzer struct {
	result AnalysisResult
	err    error
	got    UserInput
	ctx    context.Context
}

func (s *stubAnalyzer) Analyze(ctx context.Context, in UserInput) (AnalysisResult, error) {
	s.got = in
	s.ctx = ctx
	return s.result, s.err
}

func newTestRouter(svc Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postAudit(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/audits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type errorEnvelope struct {
	Error struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Details ErrorDetails `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func TestCreateAuditSuccess(t *testing.T) {
	svc := &stubAnalyzer{result: expectedFixtureResult()}
	r := newTestRouter(svc)

	resp := postAudit(t, r, `{"websiteUrl":"example.com"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body AuditResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "https://example.com", body.WebsiteURL)
	assert.Equal(t, "https://example.com", svc.got.WebsiteURL)
	assert.Equal(t, body.ID, auditIDFromContext(svc.ctx))
	assert.Equal(t, 72.0, body.Result.OverallScore)
	assert.Equal(t, "Sales Tool", body.Result.Categories.SalesTool.Name)
	assert.NotContains(t, resp.Body.String(), "groundingSources")
}

func TestCreateAuditValidation(t *testing.T) {
	svc := &stubAnalyzer{}
	r := newTestRouter(svc)

	for _, body := range []string{`{"websiteUrl":"   "}`, `{}`} {
		resp := postAudit(t, r, body)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		env := decodeEnvelope(t, resp)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		assert.Equal(t, MissingURLMessage, env.Error.Message)
		assert.Equal(t, ClassGeneral, env.Error.Details.Classification)
	}

	resp := postAudit(t, r, `not json`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid request body", decodeEnvelope(t, resp).Error.Message)
}

func TestCreateAuditErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		class   Classification
		message string
	}{
		{
			name:    "missing key",
			err:     llm.NewError(llm.KindConfig, llm.MissingKeyMessage, nil),
			status:  http.StatusServiceUnavailable,
			code:    "CONFIG_ERROR",
			class:   ClassAuth,
			message: "Intelligence engine configuration error.",
		},
		{
			name:    "auth",
			err:     llm.NewError(llm.KindAuth, "AUTH_ERROR: gemini returned 403 PERMISSION_DENIED: denied", nil),
			status:  http.StatusBadGateway,
			code:    "AUTH_ERROR",
			class:   ClassAuth,
			message: "Intelligence engine configuration error.",
		},
		{
			name:    "quota",
			err:     llm.NewError(llm.KindQuota, "QUOTA_EXCEEDED: gemini returned 429 RESOURCE_EXHAUSTED: slow down", nil),
			status:  http.StatusTooManyRequests,
			code:    "QUOTA_EXCEEDED",
			class:   ClassQuota,
			message: "The AI engine is currently experiencing high demand.",
		},
		{
			name:    "malformed",
			err:     llm.NewError(llm.KindMalformedResponse, "MALFORMED_RESPONSE: no JSON object found in model output", nil),
			status:  http.StatusBadGateway,
			code:    "MALFORMED_RESPONSE",
			class:   ClassGeneral,
			message: "We encountered an issue analyzing this specific URL.",
		},
		{
			name:    "untyped",
			err:     errors.New("unexpected"),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_ERROR",
			class:   ClassGeneral,
			message: "We encountered an issue analyzing this specific URL.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubAnalyzer{err: tc.err})
			resp := postAudit(t, r, `{"websiteUrl":"https://example.com"}`)

			require.Equal(t, tc.status, resp.Code)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.message, env.Error.Message)
			assert.Equal(t, tc.class, env.Error.Details.Classification)
			assert.Equal(t, tc.err.Error(), env.Error.Details.ProviderMessage)
		})
	}
}

func TestCreateAuditQuotaSetsRetryAfter(t *testing.T) {
	r := newTestRouter(&stubAnalyzer{err: llm.NewError(llm.KindQuota, "429", nil)})
	resp := postAudit(t, r, `{"websiteUrl":"https://example.com"}`)

	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "30", resp.Header().Get("Retry-After"))
	assert.Equal(t, QuotaRetryAfterSeconds, decodeEnvelope(t, resp).Error.Details.RetryAfterSeconds)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(llm.NewError(llm.KindInvalidInput, "x", nil)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(llm.NewError(llm.KindValidation, "x", nil)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(llm.NewError(llm.KindTransport, "x", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("x")))
}
