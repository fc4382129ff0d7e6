package audits

import (
	"net/url"
	"strings"

	"audit-backend/internal/llm"
)

// UserInput is one submitted website. Build it with NewUserInput.
type UserInput struct {
	WebsiteURL string `json:"websiteUrl"`
}

// MissingURLMessage is reported for blank submissions.
const MissingURLMessage = "Website URL required"

// NewUserInput trims raw and prefixes https:// when no http(s) scheme is present.
func NewUserInput(raw string) (UserInput, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return UserInput{}, llm.NewError(llm.KindInvalidInput, MissingURLMessage, nil)
	}
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return UserInput{}, llm.NewError(llm.KindInvalidInput, "Website URL is not valid: "+strings.TrimSpace(raw), nil)
	}
	return UserInput{WebsiteURL: s}, nil
}

// Host returns the hostname of the submitted URL, without a leading www.
func (in UserInput) Host() string {
	u, err := url.Parse(in.WebsiteURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// AnalysisResult is the normalized content maturity audit.
type AnalysisResult struct {
	OverallScore     float64           `json:"overallScore" yaml:"overallScore"`
	MaturityLevel    MaturityLevel     `json:"maturityLevel" yaml:"maturityLevel"`
	Industry         string            `json:"industry" yaml:"industry"`
	ExecutiveSummary string            `json:"executiveSummary" yaml:"executiveSummary"`
	Categories       Categories        `json:"categories" yaml:"categories"`
	Strengths        []string          `json:"strengths" yaml:"strengths"`
	Gaps             []string          `json:"gaps" yaml:"gaps"`
	PriorityActions  []string          `json:"priorityActions" yaml:"priorityActions"`
	IndustryContext  IndustryContext   `json:"industryContext" yaml:"industryContext"`
	GroundingSources []GroundingSource `json:"groundingSources,omitempty" yaml:"groundingSources,omitempty"`
}

// Categories holds the five fixed evaluation dimensions.
type Categories struct {
	Hygiene          CategoryScore `json:"hygiene" yaml:"hygiene"`
	Relevance        CategoryScore `json:"relevance" yaml:"relevance"`
	SalesTool        CategoryScore `json:"salesTool" yaml:"salesTool"`
	Differentiation  CategoryScore `json:"differentiation" yaml:"differentiation"`
	AdvancedStrategy CategoryScore `json:"advancedStrategy" yaml:"advancedStrategy"`
}

// Ordered returns the categories in display order.
func (c Categories) Ordered() []CategoryScore {
	return []CategoryScore{c.Hygiene, c.Relevance, c.SalesTool, c.Differentiation, c.AdvancedStrategy}
}

type CategoryScore struct {
	Name      string  `json:"name" yaml:"name"`
	Score     float64 `json:"score" yaml:"score"`
	Insight   string  `json:"insight" yaml:"insight"`
	Reasoning string  `json:"reasoning" yaml:"reasoning"`
}

type IndustryContext struct {
	BuyerPersonas  string `json:"buyerPersonas" yaml:"buyerPersonas"`
	DecisionMakers string `json:"decisionMakers" yaml:"decisionMakers"`
	SalesCycle     string `json:"salesCycle" yaml:"salesCycle"`
}

// GroundingSource is a web citation returned by search grounding.
type GroundingSource struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
}

// category keys in the wire format, paired with their display names.
var categoryKeys = []struct {
	key  string
	name string
}{
	{"hygiene", "Hygiene"},
	{"relevance", "Relevance"},
	{"salesTool", "Sales Tool"},
	{"differentiation", "Differentiation"},
	{"advancedStrategy", "Advanced Strategy"},
}
