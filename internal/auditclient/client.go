// Package auditclient calls a running audit API. Failures come back as
// *llm.Error values with the server's kind and provider message, so callers
// classify them the same way they would a local failure.
package auditclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"audit-backend/internal/audits"
	"audit-backend/internal/leads"
	"audit-backend/internal/llm"
	"audit-backend/internal/shared/server/middleware"
)

const (
	defaultTimeout = 150 * time.Second
	maxErrorBody   = 64 * 1024
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to the /api/v1 surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Audit runs one audit and returns the full response including its ID.
func (c *Client) Audit(ctx context.Context, in audits.UserInput) (audits.AuditResponse, error) {
	var out audits.AuditResponse
	err := c.post(ctx, "/api/v1/audits", map[string]string{"websiteUrl": in.WebsiteURL}, http.StatusOK, &out)
	return out, err
}

// Analyze runs one audit.
func (c *Client) Analyze(ctx context.Context, in audits.UserInput) (audits.AnalysisResult, error) {
	resp, err := c.Audit(ctx, in)
	if err != nil {
		return audits.AnalysisResult{}, err
	}
	return resp.Result, nil
}

// Capture submits a lead.
func (c *Client) Capture(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	body := map[string]string{
		"email":      lead.Email,
		"websiteUrl": lead.WebsiteURL,
		"auditId":    lead.AuditID,
	}
	if err := c.post(ctx, "/api/v1/leads", body, http.StatusAccepted, nil); err != nil {
		return leads.Lead{}, err
	}
	return lead, nil
}

func (c *Client) post(ctx context.Context, path string, body any, want int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "auditclient: encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "auditclient: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return llm.NewError(llm.KindTransport, "TRANSPORT_ERROR: audit server unreachable", eris.Wrap(err, "auditclient: post "+path))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return llm.NewError(llm.KindTransport, "TRANSPORT_ERROR: undecodable server response", eris.Wrap(err, "auditclient: decode response"))
	}
	return nil
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// decodeError rebuilds the server-side failure from an error envelope.
func decodeError(status int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Code == "" {
		msg := fmt.Sprintf("TRANSPORT_ERROR: audit server returned %d", status)
		if status == http.StatusTooManyRequests {
			return llm.NewError(llm.KindQuota, fmt.Sprintf("QUOTA_EXCEEDED: audit server returned %d", status), nil)
		}
		return llm.NewError(llm.KindTransport, msg, nil)
	}

	code := env.Error.Code
	if code == middleware.RateLimitedCode {
		return llm.NewError(llm.KindQuota, "QUOTA_EXCEEDED: "+env.Error.Message, nil)
	}

	var details audits.ErrorDetails
	if len(env.Error.Details) > 0 {
		_ = json.Unmarshal(env.Error.Details, &details)
	}
	providerMsg := details.ProviderMessage
	if providerMsg == "" {
		providerMsg = env.Error.Message
	}

	kind := llm.ErrorKind(code)
	switch kind {
	case llm.KindConfig, llm.KindTransport, llm.KindAuth, llm.KindQuota,
		llm.KindMalformedResponse, llm.KindValidation:
		return llm.NewError(kind, providerMsg, nil)
	case llm.KindInvalidInput:
		return llm.NewError(kind, env.Error.Message, nil)
	default:
		return eris.Errorf("auditclient: server error %d %s: %s", status, code, providerMsg)
	}
}

var (
	_ audits.Analyzer = (*Client)(nil)
	_ leads.Capturer  = (*Client)(nil)
)
