package finding

import (
	"github.com/surakshit-dev/surakshit/internal/core/analysis"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// Check runs the hard constraints of Validate plus advisory checks that do
// not block processing.
func Check(raw dtos.RawFinding) dtos.ValidationResult {
	result := dtos.ValidationResult{Valid: true}
	if err := Validate(raw); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, errs.From(err).Message)
	}
	result.Warnings = warnings(raw)
	return result
}

func warnings(raw dtos.RawFinding) []string {
	var found []string
	if raw.Evidence.CodeSnippet == "" {
		found = append(found, "evidence.code_snippet is empty, no remediation strategy can be synthesized")
	}
	if raw.Evidence.LineNumber == nil {
		found = append(found, "evidence.line_number is missing, the context window is centered heuristically")
	}
	if raw.Evidence.Description == "" {
		found = append(found, "evidence.description is empty")
	}
	if raw.Evidence.VulnerabilityType != "" && !analysis.Known(raw.Evidence.VulnerabilityType) {
		found = append(found, "unknown vulnerability type "+raw.Evidence.VulnerabilityType+", no fix template exists")
	}
	if raw.Evidence.CodeSnippet != "" && Sanitize(raw.Evidence.CodeSnippet) != raw.Evidence.CodeSnippet {
		found = append(found, "code snippet contains secret material, stored evidence is redacted")
	}
	return found
}
