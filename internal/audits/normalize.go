package audits

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"audit-backend/internal/llm"
)

var requiredTopLevel = []string{
	"overallScore",
	"maturityLevel",
	"industry",
	"executiveSummary",
	"categories",
	"strengths",
	"gaps",
	"priorityActions",
	"industryContext",
}

// Normalize turns raw model output into an AnalysisResult. Missing or
// mistyped fields fail the whole response; scores are clamped to [0,100];
// groundingSources are built only from web grounding chunks.
func Normalize(text string, chunks []llm.GroundingChunk) (AnalysisResult, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return AnalysisResult{}, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return AnalysisResult{}, llm.NewError(llm.KindMalformedResponse, "MALFORMED_RESPONSE: model output is not a JSON object", err)
	}
	if err := requireFields(obj, "", requiredTopLevel...); err != nil {
		return AnalysisResult{}, err
	}

	var res AnalysisResult
	if res.OverallScore, err = decodeNumber(obj["overallScore"], "overallScore"); err != nil {
		return AnalysisResult{}, err
	}
	res.OverallScore = clampScore(res.OverallScore)

	level, err := decodeString(obj["maturityLevel"], "maturityLevel")
	if err != nil {
		return AnalysisResult{}, err
	}
	if res.MaturityLevel, err = ParseMaturityLevel(level); err != nil {
		return AnalysisResult{}, validationError("%s", err.Error())
	}
	if res.Industry, err = decodeString(obj["industry"], "industry"); err != nil {
		return AnalysisResult{}, err
	}
	if res.ExecutiveSummary, err = decodeString(obj["executiveSummary"], "executiveSummary"); err != nil {
		return AnalysisResult{}, err
	}
	if res.Categories, err = decodeCategories(obj["categories"]); err != nil {
		return AnalysisResult{}, err
	}
	if res.Strengths, err = decodeStrings(obj["strengths"], "strengths"); err != nil {
		return AnalysisResult{}, err
	}
	if res.Gaps, err = decodeStrings(obj["gaps"], "gaps"); err != nil {
		return AnalysisResult{}, err
	}
	if res.PriorityActions, err = decodeStrings(obj["priorityActions"], "priorityActions"); err != nil {
		return AnalysisResult{}, err
	}
	if res.IndustryContext, err = decodeIndustryContext(obj["industryContext"]); err != nil {
		return AnalysisResult{}, err
	}
	res.GroundingSources = groundingSources(chunks)
	return res, nil
}

func decodeCategories(raw json.RawMessage) (Categories, error) {
	obj, err := decodeObject(raw, "categories")
	if err != nil {
		return Categories{}, err
	}
	keys := make([]string, 0, len(categoryKeys))
	for _, ck := range categoryKeys {
		keys = append(keys, ck.key)
	}
	if err := requireFields(obj, "categories", keys...); err != nil {
		return Categories{}, err
	}

	scores := make([]CategoryScore, len(categoryKeys))
	for i, ck := range categoryKeys {
		path := "categories." + ck.key
		catObj, err := decodeObject(obj[ck.key], path)
		if err != nil {
			return Categories{}, err
		}
		if err := requireFields(catObj, path, "name", "score", "insight", "reasoning"); err != nil {
			return Categories{}, err
		}
		if _, err := decodeString(catObj["name"], path+".name"); err != nil {
			return Categories{}, err
		}
		score, err := decodeNumber(catObj["score"], path+".score")
		if err != nil {
			return Categories{}, err
		}
		insight, err := decodeString(catObj["insight"], path+".insight")
		if err != nil {
			return Categories{}, err
		}
		reasoning, err := decodeString(catObj["reasoning"], path+".reasoning")
		if err != nil {
			return Categories{}, err
		}
		scores[i] = CategoryScore{
			Name:      ck.name,
			Score:     clampScore(score),
			Insight:   insight,
			Reasoning: reasoning,
		}
	}
	return Categories{
		Hygiene:          scores[0],
		Relevance:        scores[1],
		SalesTool:        scores[2],
		Differentiation:  scores[3],
		AdvancedStrategy: scores[4],
	}, nil
}

func decodeIndustryContext(raw json.RawMessage) (IndustryContext, error) {
	obj, err := decodeObject(raw, "industryContext")
	if err != nil {
		return IndustryContext{}, err
	}
	if err := requireFields(obj, "industryContext", "buyerPersonas", "decisionMakers", "salesCycle"); err != nil {
		return IndustryContext{}, err
	}
	var ic IndustryContext
	if ic.BuyerPersonas, err = decodeString(obj["buyerPersonas"], "industryContext.buyerPersonas"); err != nil {
		return IndustryContext{}, err
	}
	if ic.DecisionMakers, err = decodeString(obj["decisionMakers"], "industryContext.decisionMakers"); err != nil {
		return IndustryContext{}, err
	}
	if ic.SalesCycle, err = decodeString(obj["salesCycle"], "industryContext.salesCycle"); err != nil {
		return IndustryContext{}, err
	}
	return ic, nil
}

func groundingSources(chunks []llm.GroundingChunk) []GroundingSource {
	if chunks == nil {
		return nil
	}
	out := make([]GroundingSource, 0, len(chunks))
	for _, c := range chunks {
		if c.Web == nil {
			continue
		}
		out = append(out, GroundingSource{Title: c.Web.Title, URI: c.Web.URI})
	}
	return out
}

// clampScore forces n into [0,100].
func clampScore(n float64) float64 {
	return math.Max(0, math.Min(100, n))
}

func requireFields(obj map[string]json.RawMessage, prefix string, keys ...string) error {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok || isNull(raw) {
			return validationError("missing field: %s", joinPath(prefix, key))
		}
	}
	return nil
}

func decodeObject(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, validationError("field %s must be an object", path)
	}
	return obj, nil
}

func decodeString(raw json.RawMessage, path string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", validationError("field %s must be a string", path)
	}
	return strings.TrimSpace(s), nil
}

func decodeNumber(raw json.RawMessage, path string) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, validationError("field %s must be a number", path)
	}
	return n, nil
}

func decodeStrings(raw json.RawMessage, path string) ([]string, error) {
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, validationError("field %s must be an array of strings", path)
	}
	return items, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func validationError(format string, args ...any) *llm.Error {
	return llm.NewError(llm.KindValidation, "VALIDATION_ERROR: "+fmt.Sprintf(format, args...), nil)
}
