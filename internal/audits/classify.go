package audits

import (
	"strings"

	"audit-backend/internal/llm"
)

// Classification is the user-facing bucket for a failed audit.
type Classification string

const (
	ClassAuth    Classification = "AUTH"
	ClassQuota   Classification = "QUOTA"
	ClassGeneral Classification = "GENERAL"
)

var (
	authMarkers  = []string{"API_KEY", "AUTH_ERROR", "403", "401"}
	quotaMarkers = []string{"429", "QUOTA", "RESOURCE_EXHAUSTED"}
)

// Classify buckets err. Typed kinds decide first; anything else falls back to
// ClassifyMessage on the error text.
func Classify(err error) Classification {
	if err == nil {
		return ""
	}
	if kind, ok := llm.KindOf(err); ok {
		switch kind {
		case llm.KindConfig, llm.KindAuth:
			return ClassAuth
		case llm.KindQuota:
			return ClassQuota
		}
	}
	return ClassifyMessage(err.Error())
}

// ClassifyMessage applies the substring policy: auth markers win over quota
// markers, everything else is GENERAL. Matching is case-sensitive.
func ClassifyMessage(msg string) Classification {
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return ClassAuth
		}
	}
	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return ClassQuota
		}
	}
	return ClassGeneral
}

// UserMessage is the headline shown for a classification.
func UserMessage(c Classification) string {
	switch c {
	case ClassAuth:
		return "Intelligence engine configuration error."
	case ClassQuota:
		return "The AI engine is currently experiencing high demand."
	default:
		return "We encountered an issue analyzing this specific URL."
	}
}
