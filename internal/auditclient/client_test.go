package auditclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-backend/internal/audits"
	"audit-backend/internal/bootstrap"
	"audit-backend/internal/leads"
	"audit-backend/internal/llm"
	"audit-backend/internal/shared/config"
)

type scriptedCompleter struct {
	text string
	err  error
}

func (s scriptedCompleter) Complete(context.Context, llm.Prompt) (llm.Completion, error) {
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	return llm.Completion{
		Text: s.text,
		Chunks: []llm.GroundingChunk{
			{Kind: "web", Web: &llm.WebSource{Title: "Example", URI: "https://example.com/about"}},
		},
	}, nil
}

func startServer(t *testing.T, completer llm.Completer, burst int) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Env:                "dev",
		GeminiModel:        config.DefaultModel,
		AuditRatePerMinute: 1,
		AuditRateBurst:     burst,
	}
	app := bootstrap.BuildWith(cfg, completer)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func validResult(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile("../audits/testdata/valid_result.json")
	require.NoError(t, err)
	return string(raw)
}

func mustInput(t *testing.T, raw string) audits.UserInput {
	t.Helper()
	in, err := audits.NewUserInput(raw)
	require.NoError(t, err)
	return in
}

func TestAuditRoundTrip(t *testing.T) {
	c := startServer(t, scriptedCompleter{text: "Here you go:\n" + validResult(t)}, 5)

	resp, err := c.Audit(context.Background(), mustInput(t, "example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "https://example.com", resp.WebsiteURL)
	assert.Equal(t, 72.0, resp.Result.OverallScore)
	assert.Equal(t, audits.MaturityStrategic, resp.Result.MaturityLevel)
	require.Len(t, resp.Result.GroundingSources, 1)
	assert.Equal(t, "https://example.com/about", resp.Result.GroundingSources[0].URI)

	lead, err := c.Capture(context.Background(), leads.Lead{Email: "cmo@example.com", WebsiteURL: resp.WebsiteURL, AuditID: resp.ID})
	require.NoError(t, err)
	assert.Equal(t, "cmo@example.com", lead.Email)
}

func TestRemoteFailuresKeepTheirClassification(t *testing.T) {
	cases := []struct {
		name      string
		completer llm.Completer
		kind      llm.ErrorKind
		class     audits.Classification
	}{
		{"missing key", llm.UnconfiguredClient{}, llm.KindConfig, audits.ClassAuth},
		{"quota", scriptedCompleter{err: llm.NewError(llm.KindQuota, "QUOTA_EXCEEDED: gemini returned 429 RESOURCE_EXHAUSTED", nil)}, llm.KindQuota, audits.ClassQuota},
		{"auth", scriptedCompleter{err: llm.NewError(llm.KindAuth, "AUTH_ERROR: gemini returned 403 PERMISSION_DENIED", nil)}, llm.KindAuth, audits.ClassAuth},
		{"malformed", scriptedCompleter{text: "no json here"}, llm.KindMalformedResponse, audits.ClassGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := startServer(t, tc.completer, 5)
			_, err := c.Analyze(context.Background(), mustInput(t, "example.com"))
			require.Error(t, err)
			kind, ok := llm.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.class, audits.Classify(err))
		})
	}
}

func TestMissingKeyMessageSurvivesTheWire(t *testing.T) {
	c := startServer(t, llm.UnconfiguredClient{}, 5)
	_, err := c.Analyze(context.Background(), mustInput(t, "example.com"))
	require.Error(t, err)
	assert.Equal(t, llm.MissingKeyMessage, err.Error())
}

func TestRateLimitMapsToQuota(t *testing.T) {
	c := startServer(t, scriptedCompleter{text: validResult(t)}, 1)

	_, err := c.Analyze(context.Background(), mustInput(t, "example.com"))
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), mustInput(t, "example.com"))
	require.Error(t, err)
	kind, _ := llm.KindOf(err)
	assert.Equal(t, llm.KindQuota, kind)
	assert.Equal(t, audits.ClassQuota, audits.Classify(err))
}

func TestCaptureRejectsInvalidEmail(t *testing.T) {
	c := startServer(t, llm.UnconfiguredClient{}, 5)
	_, err := c.Capture(context.Background(), leads.Lead{Email: "nope", WebsiteURL: "https://example.com"})
	require.Error(t, err)
	kind, _ := llm.KindOf(err)
	assert.Equal(t, llm.KindInvalidInput, kind)
	assert.Equal(t, leads.InvalidEmailMessage, err.Error())
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Analyze(context.Background(), audits.UserInput{WebsiteURL: "https://example.com"})
	require.Error(t, err)
	kind, _ := llm.KindOf(err)
	assert.Equal(t, llm.KindTransport, kind)
}

func TestDecodeErrorWithoutEnvelope(t *testing.T) {
	err := decodeError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	kind, _ := llm.KindOf(err)
	assert.Equal(t, llm.KindTransport, kind)
	assert.Contains(t, err.Error(), "502")

	err = decodeError(http.StatusTooManyRequests, nil)
	kind, _ = llm.KindOf(err)
	assert.Equal(t, llm.KindQuota, kind)

	err = decodeError(http.StatusInternalServerError, []byte(`{"error":{"code":"INTERNAL_ERROR","message":"x","details":{"providerMessage":"boom"}}}`))
	_, ok := llm.KindOf(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "boom")
}
