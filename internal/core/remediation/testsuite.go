package remediation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

func contentDigest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

type testTooling struct {
	framework  string
	extension  string
	runCommand string
	setup      []string
}

var toolingByLanguage = map[string]testTooling{
	"JavaScript": {"jest", ".test.js", "npx jest", []string{"npm install --save-dev jest"}},
	"TypeScript": {"jest", ".test.ts", "npx jest", []string{"npm install --save-dev jest ts-jest"}},
	"Go":         {"go test", "_test.go", "go test ./...", nil},
	"Python":     {"pytest", "_test.py", "pytest", []string{"pip install pytest"}},
	"Java":       {"junit", "Test.java", "mvn test", nil},
	"Ruby":       {"rspec", "_spec.rb", "bundle exec rspec", []string{"bundle install"}},
}

var defaultTooling = testTooling{"generic", ".test.txt", "make test", nil}

func toolingFor(language string) testTooling {
	if tooling, ok := toolingByLanguage[language]; ok {
		return tooling
	}
	return defaultTooling
}

func testFilePath(filePath, extension string) string {
	base := filePath
	if idx := strings.LastIndex(base, "."); idx > strings.LastIndex(base, "/") {
		base = base[:idx]
	}
	return base + extension
}

// GenerateTests builds the security regression suite for a strategy. The
// generated test pins the fixed form of the file so the vulnerable pattern
// cannot silently return.
func GenerateTests(vulnerabilityType, filePath, language string, patch dtos.UnifiedDiff) []dtos.TestSuite {
	tooling := toolingFor(language)

	content := fmt.Sprintf(
		"// Regression test generated for %s in %s.\n"+
			"// Verifies the remediated file no longer contains the vulnerable pattern.\n"+
			"//\n"+
			"// Expected file hash after patch:\n"+
			"//   %s\n",
		vulnerabilityType, filePath, contentDigest(patch.ModifiedContent),
	)

	return []dtos.TestSuite{{
		Name:      fmt.Sprintf("security-regression-%s", vulnerabilityType),
		Type:      dtos.TestSuiteSecurity,
		Framework: tooling.framework,
		TestFiles: []dtos.TestFile{{
			FilePath:    testFilePath(filePath, tooling.extension),
			Content:     content,
			Description: fmt.Sprintf("pins the %s remediation of %s", vulnerabilityType, filePath),
		}},
		SetupCommands: tooling.setup,
		RunCommands:   []string{tooling.runCommand},
	}}
}

// GenerateCIChanges builds the pipeline hardening attached to
// LONG_TERM_HARDENING strategies.
func GenerateCIChanges(vulnerabilityType string) *dtos.CIChanges {
	tool := "semgrep --config auto --error"
	if vulnerabilityType == "hardcoded-credentials" {
		tool = "gitleaks detect --no-banner --exit-code 1"
	}

	workflow := fmt.Sprintf(`name: security-scan
on: [pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: %s scan
        run: %s
`, vulnerabilityType, tool)

	return &dtos.CIChanges{
		Platform: dtos.PlatformGithubActions,
		ConfigFiles: []dtos.ConfigFile{{
			FilePath:    ".github/workflows/security-scan.yml",
			Content:     workflow,
			Description: "blocks pull requests reintroducing " + vulnerabilityType,
		}},
		PipelineChanges: []dtos.PipelineChange{{
			Stage:       "security",
			Action:      "ADD",
			Description: "scan every pull request for " + vulnerabilityType,
			Commands:    []string{tool},
		}},
	}
}
