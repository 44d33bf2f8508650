package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/surakshit-dev/surakshit/internal/core"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

func validRaw() dtos.RawFinding {
	return dtos.RawFinding{
		FindingID: "finding-1",
		Repo:      "acme/shop",
		Branch:    "main",
		Evidence: dtos.Evidence{
			FilePath:          "src/config.js",
			LineNumber:        core.Ptr(3),
			CodeSnippet:       `const limit = 10;`,
			VulnerabilityType: "sql-injection",
			Severity:          dtos.SeverityHigh,
			Description:       "user input concatenated into query",
		},
	}
}

func TestCheck(t *testing.T) {
	t.Run("a clean finding has no warnings", func(t *testing.T) {
		result := Check(validRaw())
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("hard violations flip valid", func(t *testing.T) {
		raw := validRaw()
		raw.Repo = ""
		result := Check(raw)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("missing optional fields become warnings", func(t *testing.T) {
		raw := validRaw()
		raw.Evidence.LineNumber = nil
		raw.Evidence.Description = ""
		result := Check(raw)
		assert.True(t, result.Valid)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("unknown vulnerability type is flagged", func(t *testing.T) {
		raw := validRaw()
		raw.Evidence.VulnerabilityType = "quantum-entanglement-leak"
		result := Check(raw)
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings[0], "quantum-entanglement-leak")
	})

	t.Run("control characters in the file path are rejected", func(t *testing.T) {
		for _, path := range []string{"src/a\nb.js", "src/a\rb.js", "src/a\x00b.js"} {
			raw := validRaw()
			raw.Evidence.FilePath = path
			result := Check(raw)
			assert.False(t, result.Valid, "path %q should be rejected", path)
		}
	})

	t.Run("redactable snippets are flagged", func(t *testing.T) {
		raw := validRaw()
		raw.Evidence.CodeSnippet = `const password = "hunter2";`
		result := Check(raw)
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings[0], "secret material")
	})
}
