// Package finding validates raw scanner findings and normalizes them into
// the sanitized form the rest of the pipeline works on.
package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

const RedactedPlaceholder = "[REDACTED]"

// DefaultContextLines bounds how many lines around the finding are carried
// into the normalized evidence.
const DefaultContextLines = 3

// secretPatterns match credential-looking substrings inside code snippets.
// The value part is replaced, the variable name survives so the patch
// templates can still find the assignment.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)((?:password|passwd|pwd|secret|token|api[_-]?key|access[_-]?key|private[_-]?key|credential)s?\s*[:=]\s*)(["'][^"']+["'])`),
	regexp.MustCompile(`(AKIA[0-9A-Z]{16})`),
	regexp.MustCompile(`(?i)(bearer\s+)([a-z0-9._\-]{16,})`),
	regexp.MustCompile(`(eyJ[a-zA-Z0-9_\-]{10,}\.[a-zA-Z0-9._\-]{10,})`),
	regexp.MustCompile(`(-----BEGIN [A-Z ]*PRIVATE KEY-----(?s:.*?)-----END [A-Z ]*PRIVATE KEY-----)`),
}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

type idGenerator func() string

type Normalizer struct {
	generateID   idGenerator
	contextLines int
}

func NewNormalizer(generateID func() string, contextLines int) *Normalizer {
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	return &Normalizer{
		generateID:   generateID,
		contextLines: contextLines,
	}
}

// Validate checks the structural constraints of a raw finding. Severity
// outside the enumerated set is rejected, never coerced.
func Validate(raw dtos.RawFinding) error {
	if strings.TrimSpace(raw.FindingID) == "" {
		return errs.Validation("finding_id must not be empty", "finding_id")
	}
	if raw.Repo == "" {
		return errs.Validation("repo must not be empty", "repo")
	}
	if raw.Branch == "" {
		return errs.Validation("branch must not be empty", "branch")
	}
	if raw.Evidence.FilePath == "" {
		return errs.Validation("evidence.file_path must not be empty", "evidence.file_path")
	}
	// a newline in the path would corrupt generated diff headers
	if strings.ContainsAny(raw.Evidence.FilePath, "\n\r") || controlChars.MatchString(raw.Evidence.FilePath) {
		return errs.Validation("evidence.file_path must not contain control characters", "evidence.file_path")
	}
	if raw.Evidence.VulnerabilityType == "" {
		return errs.Validation("evidence.vulnerability_type must not be empty", "evidence.vulnerability_type")
	}
	if !raw.Evidence.Severity.Valid() {
		return errs.Validation("evidence.severity must be one of LOW, MEDIUM, HIGH, CRITICAL", "evidence.severity")
	}
	return nil
}

// Normalize turns a raw finding into a normalized one. The returned
// session id is freshly generated here and immutable afterwards; apart
// from that the transform is pure.
func (n *Normalizer) Normalize(raw dtos.RawFinding) (dtos.NormalizedFinding, error) {
	if err := Validate(raw); err != nil {
		return dtos.NormalizedFinding{}, err
	}

	sanitized := Sanitize(raw.Evidence.CodeSnippet)

	return dtos.NormalizedFinding{
		RawFinding: raw,
		SessionID:  n.generateID(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		NormalizedEvidence: dtos.NormalizedEvidence{
			Evidence:             raw.Evidence,
			SanitizedCodeSnippet: sanitized,
			ContextLines:         contextWindow(sanitized, n.contextLines),
			FileHash:             ContentHash(raw.Evidence.CodeSnippet),
		},
	}, nil
}

// Sanitize strips control characters and redacts credential-looking
// substrings. Deterministic for identical input.
func Sanitize(snippet string) string {
	out := controlChars.ReplaceAllString(snippet, "")
	for _, pattern := range secretPatterns {
		out = pattern.ReplaceAllStringFunc(out, func(match string) string {
			groups := pattern.FindStringSubmatch(match)
			// two-group patterns keep the lhs, single-group patterns are
			// replaced entirely
			if len(groups) == 3 {
				return groups[1] + RedactedPlaceholder
			}
			return RedactedPlaceholder
		})
	}
	return out
}

// ContentHash is the content-addressed hash of the evidence code at
// analysis time.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// contextWindow returns up to 2*n+1 lines centered on the middle of the
// snippet. Scanners usually hand in the vulnerable line plus a few
// neighbors, so the middle line is the best guess for the finding itself.
func contextWindow(snippet string, n int) []string {
	if snippet == "" {
		return []string{}
	}
	lines := strings.Split(snippet, "\n")
	if len(lines) <= 2*n+1 {
		return lines
	}
	mid := len(lines) / 2
	start := mid - n
	end := mid + n + 1
	return lines[start:end]
}
