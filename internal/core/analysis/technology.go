package analysis

import (
	"path/filepath"
	"strings"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

type technology struct {
	language    string
	buildSystem string
}

var technologyByExtension = map[string]technology{
	".js":   {"JavaScript", "npm"},
	".jsx":  {"JavaScript", "npm"},
	".mjs":  {"JavaScript", "npm"},
	".ts":   {"TypeScript", "npm"},
	".tsx":  {"TypeScript", "npm"},
	".go":   {"Go", "go mod"},
	".py":   {"Python", "pip"},
	".java": {"Java", "maven"},
	".kt":   {"Kotlin", "gradle"},
	".rb":   {"Ruby", "bundler"},
	".php":  {"PHP", "composer"},
	".cs":   {"C#", "dotnet"},
	".rs":   {"Rust", "cargo"},
}

// TechContext infers the technology context from the evidence file path.
// The language drives which patch and test templates the synthesizer picks.
func TechContext(filePath string, metadata map[string]any) dtos.TechnologyContext {
	ext := strings.ToLower(filepath.Ext(filePath))
	tech, ok := technologyByExtension[ext]
	if !ok {
		tech = technology{language: "Unknown"}
	}

	ctx := dtos.TechnologyContext{
		Language:     tech.language,
		BuildSystem:  tech.buildSystem,
		Dependencies: []string{},
	}

	// scanners may know better than the file extension
	if lang, ok := metadata["language"].(string); ok && lang != "" {
		ctx.Language = lang
	}
	if fw, ok := metadata["framework"].(string); ok {
		ctx.Framework = fw
	}
	if version, ok := metadata["version"].(string); ok {
		ctx.Version = version
	}
	return ctx
}
