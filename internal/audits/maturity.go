package audits

import (
	"errors"
	"strings"
)

// MaturityLevel is the qualitative band for an overall score.
type MaturityLevel string

const (
	MaturityFoundational MaturityLevel = "Foundational"
	MaturityGrowthStage  MaturityLevel = "Growth-stage"
	MaturityStrategic    MaturityLevel = "Strategic"
	MaturityMarketLeader MaturityLevel = "Market leader"
)

// MaturityLevels lists the labels from lowest to highest.
var MaturityLevels = []MaturityLevel{
	MaturityFoundational,
	MaturityGrowthStage,
	MaturityStrategic,
	MaturityMarketLeader,
}

// ParseMaturityLevel matches raw to a canonical label, ignoring case and
// treating spaces, hyphens and underscores alike.
func ParseMaturityLevel(raw string) (MaturityLevel, error) {
	normalized := foldLabel(raw)
	if normalized == "" {
		return "", errors.New("maturity level is required")
	}
	for _, level := range MaturityLevels {
		if foldLabel(string(level)) == normalized {
			return level, nil
		}
	}
	return "", errors.New("maturity level is invalid: " + strings.TrimSpace(raw))
}

// Rank is the zero-based position of the level, or -1 when unknown.
func (m MaturityLevel) Rank() int {
	for i, level := range MaturityLevels {
		if level == m {
			return i
		}
	}
	return -1
}

func foldLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}
