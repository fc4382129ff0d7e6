// Package sitesnap fetches a homepage and condenses it into a short block of
// evidence (title, description, headings, calls to action) for the audit prompt.
package sitesnap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 512 * 1024
	maxHeadings    = 12
	maxCTAs        = 10
	maxTextLen     = 160
	userAgent      = "Mozilla/5.0 (compatible; ContentAuditBot/1.0)"
)

// ctaWords mark links and buttons that read like a call to action.
var ctaWords = []string{
	"demo", "contact", "get started", "start", "trial", "sign up", "signup", "pricing",
	"book", "schedule", "talk to", "quote", "download", "subscribe", "buy", "request",
}

// Snapshot is the evidence extracted from one page.
type Snapshot struct {
	URL         string
	Title       string
	Description string
	Headings    []string
	CTAs        []string
}

// Fetcher downloads and parses pages.
type Fetcher struct {
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the overall fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// NewFetcher constructs a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads websiteURL and extracts a Snapshot.
func (f *Fetcher) Fetch(ctx context.Context, websiteURL string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, nil)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "sitesnap: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "sitesnap: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return Snapshot{}, eris.Errorf("sitesnap: page returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "html") {
		return Snapshot{}, eris.Errorf("sitesnap: unexpected content type %q", ct)
	}

	snap, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Snapshot{}, err
	}
	snap.URL = websiteURL
	return snap, nil
}

// PromptContext fetches websiteURL and renders it for the prompt.
func (f *Fetcher) PromptContext(ctx context.Context, websiteURL string) (string, error) {
	snap, err := f.Fetch(ctx, websiteURL)
	if err != nil {
		return "", err
	}
	return snap.Render(), nil
}

// Parse extracts a Snapshot from an HTML document.
func Parse(r io.Reader) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Snapshot{}, eris.Wrap(err, "sitesnap: parse html")
	}

	var snap Snapshot
	snap.Title = clean(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		snap.Description = clean(desc)
	} else if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		snap.Description = clean(desc)
	}

	seen := map[string]bool{}
	doc.Find("h1,h2,h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := clean(s.Text())
		if text == "" || seen[text] {
			return true
		}
		seen[text] = true
		snap.Headings = append(snap.Headings, fmt.Sprintf("%s: %s", goquery.NodeName(s), text))
		return len(snap.Headings) < maxHeadings
	})

	seen = map[string]bool{}
	doc.Find("a,button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := clean(s.Text())
		key := strings.ToLower(text)
		if text == "" || seen[key] || !isCTA(key) {
			return true
		}
		seen[key] = true
		snap.CTAs = append(snap.CTAs, text)
		return len(snap.CTAs) < maxCTAs
	})
	return snap, nil
}

// Render formats the snapshot as plain text lines.
func (s Snapshot) Render() string {
	var b strings.Builder
	if s.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", s.URL)
	}
	if s.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", s.Title)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "Meta description: %s\n", s.Description)
	}
	if len(s.Headings) > 0 {
		b.WriteString("Headings:\n")
		for _, h := range s.Headings {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	if len(s.CTAs) > 0 {
		b.WriteString("Calls to action:\n")
		for _, c := range s.CTAs {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return strings.TrimSpace(b.String())
}

func isCTA(lower string) bool {
	if len(lower) > 40 {
		return false
	}
	for _, w := range ctaWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTextLen {
		s = string(r[:maxTextLen]) + "..."
	}
	return s
}
