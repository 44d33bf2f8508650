package analysis

import (
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// Analyze produces the full analysis result for a normalized finding. The
// normalizer already validated the finding; the structural checks here are
// a defensive re-validation since analysis results feed the synthesizer.
func Analyze(normalized dtos.NormalizedFinding) (dtos.AnalysisResult, error) {
	if normalized.SessionID == "" {
		return dtos.AnalysisResult{}, errs.Processing("normalized finding has no session id", "analysis")
	}
	if normalized.Evidence.VulnerabilityType == "" {
		return dtos.AnalysisResult{}, errs.Processing("normalized finding has no vulnerability type", "analysis").WithSession(normalized.SessionID)
	}
	if !normalized.Evidence.Severity.Valid() {
		return dtos.AnalysisResult{}, errs.Processing("normalized finding has an invalid severity", "analysis").WithSession(normalized.SessionID)
	}

	category := Categorize(normalized.Evidence.VulnerabilityType)

	return dtos.AnalysisResult{
		VulnerabilityCategory: category,
		RiskAssessment:        Assess(normalized.Evidence.VulnerabilityType, normalized.Evidence.Severity, normalized.Metadata),
		ComplianceMappings:    MapCompliance(category, normalized.Evidence.Severity),
		TechnologyContext:     TechContext(normalized.Evidence.FilePath, normalized.Metadata),
	}, nil
}
