package remediation

import (
	"regexp"
	"strings"
)

// rewriteRule rewrites one vulnerable line into its fixed form.
type rewriteRule struct {
	pattern *regexp.Regexp
	replace string
}

func (r rewriteRule) apply(line string) (string, bool) {
	if !r.pattern.MatchString(line) {
		return line, false
	}
	return r.pattern.ReplaceAllString(line, r.replace), true
}

// fixTemplate bundles everything the synthesizer knows about remediating
// one vulnerability type: the line rewrites, an optional prelude the full
// fix inserts before the first rewritten line, and copy for the strategy
// metadata.
type fixTemplate struct {
	rules      []rewriteRule
	prelude    func(language string) []string
	quickWhat  string
	fullWhat   string
	hardenWhat string
	impact     string
}

var credentialAssignment = regexp.MustCompile(`(?i)^(\s*)((?:const|let|var|final)\s+|)([A-Za-z_$][\w$]*(?:password|passwd|pwd|secret|token|key|credential)[\w$]*)(\s*[:=]\s*)(.+?)(;?)\s*$`)

func envVarName(identifier string) string {
	snake := regexp.MustCompile(`([a-z0-9])([A-Z])`).ReplaceAllString(identifier, "${1}_${2}")
	return strings.ToUpper(strings.ReplaceAll(snake, "-", "_"))
}

func envLookup(language, name string) string {
	switch language {
	case "Go":
		return `os.Getenv("` + name + `")`
	case "Python":
		return `os.environ["` + name + `"]`
	case "Java", "Kotlin":
		return `System.getenv("` + name + `")`
	case "Ruby":
		return `ENV["` + name + `"]`
	default:
		return "process.env." + name
	}
}

// credentialTemplate is built per language since the replacement depends on
// how the runtime exposes environment variables.
func credentialTemplate(language string) fixTemplate {
	return fixTemplate{
		rules: []rewriteRule{{
			pattern: credentialAssignment,
			replace: "${1}${2}${3}${4}" + envLookup(language, "__ENV__") + "${6}",
		}},
		prelude: func(language string) []string {
			switch language {
			case "Go", "Java", "Kotlin":
				return nil
			case "Python":
				return []string{"import os"}
			default:
				return nil
			}
		},
		quickWhat:  "Replace the hardcoded credential with an environment variable lookup",
		fullWhat:   "Move the credential to environment configuration and fail fast when it is missing",
		hardenWhat: "Add secret scanning to CI so new hardcoded credentials are rejected at review time",
		impact:     "Removes the credential from source control and the build artifact",
	}
}

var sqlConcat = regexp.MustCompile(`(["'])([^"']*\b(?i:SELECT|INSERT|UPDATE|DELETE)\b[^"']*)(["'])\s*\+\s*([A-Za-z_$][\w$.]*)`)

var templates = map[string]fixTemplate{
	"sql-injection": {
		rules: []rewriteRule{{
			pattern: sqlConcat,
			replace: "${1}${2} ?${3}, [${4}]",
		}},
		quickWhat:  "Replace the string-concatenated query with a parameterized placeholder",
		fullWhat:   "Parameterize every concatenated query in the affected code",
		hardenWhat: "Add static analysis for injection sinks to the CI pipeline",
		impact:     "User input can no longer alter the query structure",
	},
	"xss": {
		rules: []rewriteRule{
			{regexp.MustCompile(`\.innerHTML(\s*)=`), ".textContent${1}="},
			{regexp.MustCompile(`document\.write\(`), "document.body.append("},
			{regexp.MustCompile(`render_template_string\(`), "render_template("},
		},
		quickWhat:  "Write untrusted data through a text sink instead of an HTML sink",
		fullWhat:   "Switch every HTML sink receiving untrusted data to a safe text sink",
		hardenWhat: "Enforce output-encoding lint rules in CI",
		impact:     "Untrusted input is rendered inert instead of being parsed as markup",
	},
	"path-traversal": {
		rules: []rewriteRule{{
			pattern: regexp.MustCompile(`\b(readFileSync|readFile|sendFile|createReadStream|open)\(\s*([A-Za-z_$][\w$.]*)`),
			replace: "${1}(path.basename(${2})",
		}},
		quickWhat:  "Strip directory components from the user-controlled path",
		fullWhat:   "Resolve user-controlled paths against a fixed base directory",
		hardenWhat: "Add path-traversal test cases to the CI security suite",
		impact:     "Requests can no longer escape the intended directory",
	},
	"weak-crypto": {
		rules: []rewriteRule{
			{regexp.MustCompile(`(?i)\bmd5\b`), "sha256"},
			{regexp.MustCompile(`(?i)\bsha-?1\b`), "sha256"},
			{regexp.MustCompile(`(?i)\b(des|rc4)-?(ecb|cbc)?\b`), "aes-256-gcm"},
		},
		quickWhat:  "Swap the broken algorithm for a current one",
		fullWhat:   "Replace all weak hash and cipher usages with SHA-256/AES-256-GCM",
		hardenWhat: "Pin approved algorithms via a crypto policy check in CI",
		impact:     "Collision and brute-force attacks against the algorithm no longer apply",
	},
	"command-injection": {
		rules: []rewriteRule{
			{regexp.MustCompile(`\bexec\(`), "execFile("},
			{regexp.MustCompile(`shell\s*=\s*True`), "shell=False"},
			{regexp.MustCompile(`os\.system\(`), "subprocess.run("},
		},
		quickWhat:  "Stop routing the command line through a shell",
		fullWhat:   "Invoke the binary directly with an argument vector instead of a shell string",
		hardenWhat: "Block shell-spawning APIs via lint rules in CI",
		impact:     "Shell metacharacters in user input lose their meaning",
	},
	"insecure-deserialization": {
		rules: []rewriteRule{
			{regexp.MustCompile(`pickle\.loads?\(`), "json.loads("},
			{regexp.MustCompile(`yaml\.load\(`), "yaml.safe_load("},
			{regexp.MustCompile(`\beval\(`), "JSON.parse("},
		},
		quickWhat:  "Parse the payload with a data-only deserializer",
		fullWhat:   "Replace native object deserialization with schema-validated JSON",
		hardenWhat: "Deny unsafe deserializers via dependency and lint policies in CI",
		impact:     "Deserialized data can no longer instantiate arbitrary objects",
	},
	"ssrf": {
		rules: []rewriteRule{{
			pattern: regexp.MustCompile(`^(\s*)(.*\b(?:fetch|get|request)\(\s*)([A-Za-z_$][\w$.]*)`),
			replace: "${1}${2}assertAllowedHost(${3})",
		}},
		quickWhat:  "Gate the outbound request behind a host allowlist",
		fullWhat:   "Validate user-supplied URLs against an allowlist before any outbound request",
		hardenWhat: "Add egress policy tests to CI",
		impact:     "The server only talks to hosts on the allowlist",
	},
	"xxe": {
		rules: []rewriteRule{
			{regexp.MustCompile(`noent\s*:\s*true`), "noent: false"},
			{regexp.MustCompile(`etree\.parse\(`), "defusedxml.ElementTree.parse("},
			{regexp.MustCompile(`external-general-entities("?\s*,\s*)true`), "external-general-entities${1}false"},
		},
		quickWhat:  "Disable external entity resolution on the XML parser",
		fullWhat:   "Parse untrusted XML with a hardened parser configuration",
		hardenWhat: "Add XXE probes to the CI security suite",
		impact:     "External entities in attacker-supplied XML are not resolved",
	},
	"open-redirect": {
		rules: []rewriteRule{{
			pattern: regexp.MustCompile(`\bredirect\(\s*([A-Za-z_$][\w$.]*)\s*\)`),
			replace: "redirect(sanitizeRedirect(${1}))",
		}},
		quickWhat:  "Sanitize the redirect target before issuing the redirect",
		fullWhat:   "Restrict redirect targets to relative paths or an allowlist",
		hardenWhat: "Add redirect-target tests to CI",
		impact:     "Redirects can no longer point to attacker-chosen origins",
	},
}

// templateFor resolves the fix template for a vulnerability type, or false
// when no remediation is known. hardcoded-credentials is special-cased
// because its replacement text depends on the target language.
func templateFor(vulnerabilityType, language string) (fixTemplate, bool) {
	key := strings.ToLower(strings.TrimSpace(vulnerabilityType))
	if key == "hardcoded-credentials" {
		return credentialTemplate(language), true
	}
	tmpl, ok := templates[key]
	return tmpl, ok
}

// rewrite applies the template rules to the snippet. When firstOnly is set
// only the first matching line is rewritten (the quick patch); otherwise
// all matching lines are. Returns the rewritten content and whether any
// rule matched.
func (t fixTemplate) rewrite(snippet string, firstOnly bool) (string, bool) {
	lines := strings.Split(snippet, "\n")
	changed := false
	for i, line := range lines {
		if changed && firstOnly {
			break
		}
		next := line
		for _, rule := range t.rules {
			if rewritten, ok := rule.apply(next); ok {
				next = rewritten
				changed = true
				if firstOnly {
					break
				}
			}
		}
		if next != line {
			// credential rewrites embed the env var name after the fact
			if m := credentialAssignment.FindStringSubmatch(line); m != nil {
				next = strings.ReplaceAll(next, "__ENV__", envVarName(m[3]))
			}
			lines[i] = next
		}
	}
	return strings.Join(lines, "\n"), changed
}
