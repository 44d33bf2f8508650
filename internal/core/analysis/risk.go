package analysis

import (
	"log/slog"
	"math"
	"strings"

	gocvss20 "github.com/pandatix/go-cvss/20"
	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// MetadataKeyCVSSVector lets scanners hand in an authoritative CVSS vector
// via RawFinding.metadata. When present and parseable, its base score
// replaces the table-driven one.
const MetadataKeyCVSSVector = "cvss_vector"

// impactBySeverity and exploitabilityByType feed the table-driven score.
// Both are on the 0..10 scale.
var impactBySeverity = map[dtos.Severity]float64{
	dtos.SeverityLow:      2.5,
	dtos.SeverityMedium:   5.0,
	dtos.SeverityHigh:     7.5,
	dtos.SeverityCritical: 10.0,
}

var exploitabilityByType = map[string]float64{
	"command-injection":        9.8,
	"sql-injection":            9.5,
	"hardcoded-credentials":    9.0,
	"path-traversal":           8.5,
	"xss":                      8.0,
	"insecure-deserialization": 7.5,
	"ssrf":                     7.0,
	"xxe":                      6.5,
	"weak-crypto":              6.0,
	"open-redirect":            5.0,
}

const defaultExploitability = 5.5

// Score weights: impact dominates slightly, mirroring how CVSS base scores
// skew toward impact for the vulnerability classes we handle.
const (
	exploitabilityWeight = 0.45
	impactWeight         = 0.55
)

// Exploitability returns the table exploitability for a vulnerability type.
func Exploitability(vulnerabilityType string) float64 {
	key := strings.ToLower(strings.TrimSpace(vulnerabilityType))
	if e, ok := exploitabilityByType[key]; ok {
		return e
	}
	return defaultExploitability
}

// Impact returns the impact factor for a severity. Callers validate the
// severity beforehand; an unknown one scores zero.
func Impact(severity dtos.Severity) float64 {
	return impactBySeverity[severity]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Score computes the CVSS-like base score as a pure weighted function of
// exploitability and impact, rounded to one decimal and clamped to 0..10.
func Score(vulnerabilityType string, severity dtos.Severity) float64 {
	e := Exploitability(vulnerabilityType)
	i := Impact(severity)
	return round1(math.Min(10, exploitabilityWeight*e+impactWeight*i))
}

// RiskLevelFor derives the risk level from a cvss score using fixed
// thresholds: <4.0 LOW, <7.0 MEDIUM, <9.0 HIGH, else CRITICAL. The
// boundaries themselves belong to the next level up (4.0 is MEDIUM,
// 7.0 is HIGH, 9.0 is CRITICAL).
func RiskLevelFor(cvssScore float64) dtos.RiskLevel {
	switch {
	case cvssScore < 4.0:
		return dtos.RiskLevelLow
	case cvssScore < 7.0:
		return dtos.RiskLevelMedium
	case cvssScore < 9.0:
		return dtos.RiskLevelHigh
	default:
		return dtos.RiskLevelCritical
	}
}

// Assess builds the full risk assessment for a finding. A scanner-provided
// CVSS vector overrides the table score; everything else stays table-driven
// so boundary behavior is exact.
func Assess(vulnerabilityType string, severity dtos.Severity, metadata map[string]any) dtos.RiskAssessment {
	exploitability := Exploitability(vulnerabilityType)
	impact := Impact(severity)
	score := Score(vulnerabilityType, severity)

	if vector, ok := metadata[MetadataKeyCVSSVector].(string); ok && vector != "" {
		if parsed, ok := scoreFromVector(vector); ok {
			score = parsed
		}
	}

	return dtos.RiskAssessment{
		CVSSScore:      score,
		RiskLevel:      RiskLevelFor(score),
		Exploitability: exploitability,
		Impact:         impact,
		Likelihood:     round1((exploitability + impact) / 2),
	}
}

// scoreFromVector parses a CVSS 2.0/3.0/3.1/4.0 vector and returns its base
// score. Unparseable vectors are logged and ignored rather than failing the
// analysis stage.
func scoreFromVector(vector string) (float64, bool) {
	switch {
	case strings.HasPrefix(vector, "CVSS:4.0"):
		cvss, err := gocvss40.ParseVector(vector)
		if err != nil {
			slog.Warn("ignoring unparseable cvss vector", "vector", vector, "err", err)
			return 0, false
		}
		return cvss.Score(), true
	case strings.HasPrefix(vector, "CVSS:3.1"):
		cvss, err := gocvss31.ParseVector(vector)
		if err != nil {
			slog.Warn("ignoring unparseable cvss vector", "vector", vector, "err", err)
			return 0, false
		}
		return cvss.BaseScore(), true
	case strings.HasPrefix(vector, "CVSS:3.0"):
		cvss, err := gocvss30.ParseVector(vector)
		if err != nil {
			slog.Warn("ignoring unparseable cvss vector", "vector", vector, "err", err)
			return 0, false
		}
		return cvss.BaseScore(), true
	default:
		// CVSS 2.0 vectors carry no version prefix
		cvss, err := gocvss20.ParseVector(vector)
		if err != nil {
			slog.Warn("ignoring unparseable cvss vector", "vector", vector, "err", err)
			return 0, false
		}
		return cvss.BaseScore(), true
	}
}
