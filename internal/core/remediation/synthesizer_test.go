package remediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/identifier"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

func normalizedFor(vulnType, snippet, filePath string) dtos.NormalizedFinding {
	return dtos.NormalizedFinding{
		RawFinding: dtos.RawFinding{
			FindingID: "f1",
			Repo:      "r",
			Branch:    "main",
			Evidence: dtos.Evidence{
				FilePath:          filePath,
				CodeSnippet:       snippet,
				VulnerabilityType: vulnType,
				Severity:          dtos.SeverityHigh,
			},
		},
		SessionID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		NormalizedEvidence: dtos.NormalizedEvidence{
			SanitizedCodeSnippet: snippet,
		},
	}
}

func analysisFor(language string) dtos.AnalysisResult {
	return dtos.AnalysisResult{
		VulnerabilityCategory: dtos.VulnerabilityCategory{CWEID: "CWE-798"},
		RiskAssessment:        dtos.RiskAssessment{RiskLevel: dtos.RiskLevelHigh},
		TechnologyContext:     dtos.TechnologyContext{Language: language},
	}
}

func TestSynthesize(t *testing.T) {
	synthesizer := NewSynthesizer(identifier.GenerateWithPrefix)

	t.Run("hardcoded credential in javascript", func(t *testing.T) {
		normalized := normalizedFor("hardcoded-credentials", `const password = "[REDACTED]";`, "/a.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)
		require.Len(t, strategies, 3)

		// ranked by priority, FULL_FIX first
		assert.Equal(t, dtos.StrategyFullFix, strategies[0].Type)
		assert.Equal(t, 1, strategies[0].Priority)
		assert.Equal(t, dtos.StrategyQuickPatch, strategies[1].Type)
		assert.Equal(t, dtos.StrategyLongTermHardening, strategies[2].Type)

		assert.Contains(t, strategies[0].Patch.ModifiedContent, "process.env.PASSWORD")
		assert.NotContains(t, strategies[0].Patch.ModifiedContent, "[REDACTED]")
		assert.NotEmpty(t, strategies[0].Patch.DiffContent)
	})

	t.Run("every strategy satisfies the diff round trip law", func(t *testing.T) {
		normalized := normalizedFor("hardcoded-credentials", `const apiKey = "[REDACTED]";`, "/a.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)

		for _, strategy := range strategies {
			patched, err := ApplyPatch(strategy.Patch.OriginalContent, strategy.Patch.DiffContent)
			require.NoError(t, err)
			assert.Equal(t, strategy.Patch.ModifiedContent, patched)

			restored, err := ApplyPatch(patched, strategy.Rollback.DiffContent)
			require.NoError(t, err)
			assert.Equal(t, strategy.Patch.OriginalContent, restored)
		}
	})

	t.Run("full fix and hardening carry tests, quick patch records an empty set", func(t *testing.T) {
		normalized := normalizedFor("hardcoded-credentials", `const token = "[REDACTED]";`, "/a.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)

		for _, strategy := range strategies {
			switch strategy.Type {
			case dtos.StrategyQuickPatch:
				assert.NotNil(t, strategy.Tests)
				assert.Empty(t, strategy.Tests)
			default:
				require.NotEmpty(t, strategy.Tests)
				assert.NotEmpty(t, strategy.Tests[0].TestFiles)
			}
		}
	})

	t.Run("hardening attaches CI changes", func(t *testing.T) {
		normalized := normalizedFor("hardcoded-credentials", `const secret = "[REDACTED]";`, "/a.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)

		hardening := strategies[2]
		require.NotNil(t, hardening.CIChanges)
		assert.Equal(t, dtos.PlatformGithubActions, hardening.CIChanges.Platform)
		assert.Contains(t, hardening.CIChanges.ConfigFiles[0].Content, "gitleaks")
	})

	t.Run("sql injection concatenation is parameterized", func(t *testing.T) {
		snippet := `const rows = db.query("SELECT * FROM users WHERE id = " + userId);`
		normalized := normalizedFor("sql-injection", snippet, "/db.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)

		assert.Contains(t, strategies[0].Patch.ModifiedContent, `?", [userId]`)
	})

	t.Run("weak crypto algorithms are upgraded", func(t *testing.T) {
		snippet := `const digest = crypto.createHash("md5").update(data).digest("hex");`
		normalized := normalizedFor("weak-crypto", snippet, "/hash.js")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.NoError(t, err)

		assert.Contains(t, strategies[0].Patch.ModifiedContent, "sha256")
		assert.NotContains(t, strategies[0].Patch.ModifiedContent, "md5")
	})

	t.Run("unknown vulnerability type is a terminal synthesis failure", func(t *testing.T) {
		normalized := normalizedFor("quantum-leak", "whatever", "/a.js")
		_, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindProcessing))
		assert.Equal(t, "synthesis", errs.From(err).Details["stage"])
	})

	t.Run("known type without a matching rewrite also fails synthesis", func(t *testing.T) {
		normalized := normalizedFor("sql-injection", "just a harmless line", "/a.js")
		_, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
		assert.True(t, errs.IsKind(err, errs.KindProcessing))
	})

	t.Run("language picks the environment lookup style", func(t *testing.T) {
		normalized := normalizedFor("hardcoded-credentials", `db_password = "[REDACTED]"`, "/settings.py")
		strategies, err := synthesizer.Synthesize(normalized, analysisFor("Python"))
		require.NoError(t, err)

		assert.Contains(t, strategies[0].Patch.ModifiedContent, `os.environ["DB_PASSWORD"]`)
		assert.Contains(t, strategies[0].Patch.ModifiedContent, "import os")
	})
}

func TestSelect(t *testing.T) {
	synthesizer := NewSynthesizer(identifier.GenerateWithPrefix)
	normalized := normalizedFor("hardcoded-credentials", `const password = "[REDACTED]";`, "/a.js")
	strategies, err := synthesizer.Synthesize(normalized, analysisFor("JavaScript"))
	require.NoError(t, err)

	t.Run("empty id selects the FULL_FIX", func(t *testing.T) {
		selected, err := Select(strategies, "")
		require.NoError(t, err)
		assert.Equal(t, dtos.StrategyFullFix, selected.Type)
	})

	t.Run("explicit id wins", func(t *testing.T) {
		quick := strategies[1]
		selected, err := Select(strategies, quick.ID)
		require.NoError(t, err)
		assert.Equal(t, quick.ID, selected.ID)
	})

	t.Run("unknown id is a validation error", func(t *testing.T) {
		_, err := Select(strategies, "strat_01ARZ3NDEKTSV4RRFFQ69G5FAV")
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})
}
