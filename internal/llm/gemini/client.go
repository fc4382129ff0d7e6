package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/telemetry"
)

const (
	defaultTimeout = 120 * time.Second

	// EmptyResponseMessage is reported when the model produced no text.
	EmptyResponseMessage = "The AI returned an empty response. Please try again."
)

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer with Gemini and Google Search grounding.
type Client struct {
	models generator
	model  string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimSpace(u) }
}

// WithTimeout bounds each request. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewClient constructs a Gemini client. A blank key is a configuration error.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, llm.NewError(llm.KindConfig, llm.MissingKeyMessage, nil)
	}
	if strings.TrimSpace(model) == "" {
		return nil, llm.NewError(llm.KindConfig, "INTERNAL_CONFIG_ERROR: GEMINI_MODEL is required", nil)
	}

	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, llm.NewError(llm.KindConfig, "INTERNAL_CONFIG_ERROR: gemini client", eris.Wrap(err, "gemini: new client"))
	}
	return &Client{models: client.Models, model: model}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete performs exactly one grounded generation request.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt.Task, genai.RoleUser)}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		mapped := mapError(err)
		telemetry.Warn("llm.error", map[string]any{
			"model":       c.model,
			"prompt_hash": prompt.Hash(),
			"duration_ms": durationMs,
			"kind":        string(mapped.Kind),
			"error":       mapped.Error(),
		})
		return llm.Completion{}, mapped
	}

	text, chunks := readResponse(resp)
	fields := map[string]any{
		"model":            c.model,
		"prompt_hash":      prompt.Hash(),
		"duration_ms":      durationMs,
		"grounding_chunks": len(chunks),
		"text_bytes":       len(text),
	}
	if resp != nil && resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["candidates_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	if strings.TrimSpace(text) == "" {
		return llm.Completion{}, llm.NewError(llm.KindMalformedResponse, EmptyResponseMessage, nil)
	}
	return llm.Completion{Text: text, Chunks: chunks, Model: c.model}, nil
}

func readResponse(resp *genai.GenerateContentResponse) (string, []llm.GroundingChunk) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", nil
	}
	cand := resp.Candidates[0]

	var b strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}

	var chunks []llm.GroundingChunk
	if cand.GroundingMetadata != nil {
		chunks = make([]llm.GroundingChunk, 0, len(cand.GroundingMetadata.GroundingChunks))
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc == nil {
				continue
			}
			switch {
			case gc.Web != nil:
				chunks = append(chunks, llm.GroundingChunk{
					Kind: "web",
					Web:  &llm.WebSource{Title: gc.Web.Title, URI: gc.Web.URI},
				})
			case gc.RetrievedContext != nil:
				chunks = append(chunks, llm.GroundingChunk{Kind: "retrievedContext"})
			default:
				chunks = append(chunks, llm.GroundingChunk{Kind: "other"})
			}
		}
	}
	return b.String(), chunks
}

// mapError tags provider failures. The provider's own code, status and
// message are kept in the text.
func mapError(err error) *llm.Error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return llm.NewError(llm.KindTransport, string(llm.KindTransport), eris.Wrap(err, "gemini: generate content"))
		}
		apiErr = *apiErrPtr
	}

	detail := fmt.Sprintf("gemini returned %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message)
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return llm.NewError(llm.KindAuth, "AUTH_ERROR: "+detail, err)
	case isInvalidKey(apiErr):
		return llm.NewError(llm.KindAuth, "AUTH_ERROR: API_KEY_INVALID: "+detail, err)
	case apiErr.Code == http.StatusTooManyRequests || strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED"):
		return llm.NewError(llm.KindQuota, "QUOTA_EXCEEDED: "+detail, err)
	default:
		return llm.NewError(llm.KindTransport, "TRANSPORT_ERROR: "+detail, err)
	}
}

// isInvalidKey detects the 400 INVALID_ARGUMENT Gemini returns for a bad key.
func isInvalidKey(apiErr genai.APIError) bool {
	if apiErr.Code != http.StatusBadRequest {
		return false
	}
	if strings.Contains(strings.ToLower(apiErr.Message), "api key") {
		return true
	}
	return strings.Contains(fmt.Sprint(apiErr.Details), "API_KEY_INVALID")
}

var _ llm.Completer = (*Client)(nil)
