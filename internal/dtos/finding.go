package dtos

// Severity is the scanner-reported severity of a finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// RawFinding is the untrusted input handed in by an upstream scanner.
type RawFinding struct {
	FindingID string         `json:"finding_id" validate:"required"`
	Evidence  Evidence       `json:"evidence" validate:"required"`
	Repo      string         `json:"repo" validate:"required"`
	Branch    string         `json:"branch" validate:"required"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ValidationResult reports hard violations alongside advisory warnings.
// Warnings never block processing.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type Evidence struct {
	FilePath          string   `json:"file_path" validate:"required"`
	LineNumber        *int     `json:"line_number,omitempty"`
	CodeSnippet       string   `json:"code_snippet"`
	VulnerabilityType string   `json:"vulnerability_type" validate:"required"`
	Severity          Severity `json:"severity" validate:"required"`
	Description       string   `json:"description"`
}

// NormalizedFinding is the finding after sanitation. The session id is
// assigned exactly once here and never changes afterwards.
type NormalizedFinding struct {
	RawFinding
	SessionID          string             `json:"session_id"`
	CreatedAt          string             `json:"created_at"`
	NormalizedEvidence NormalizedEvidence `json:"normalized_evidence"`
}

type NormalizedEvidence struct {
	Evidence
	SanitizedCodeSnippet string   `json:"sanitized_code_snippet"`
	ContextLines         []string `json:"context_lines"`
	FileHash             string   `json:"file_hash"`
}
