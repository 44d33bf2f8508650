// Package analysis maps normalized findings onto vulnerability categories,
// a CVSS-style risk score and per-framework compliance statuses.
package analysis

import (
	"strings"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// UncategorizedCWE is used when the scanner reports a vulnerability type the
// lookup table does not know. Unknown types never fail analysis.
const UncategorizedCWE = "NVD-CWE-noinfo"

var categoryTable = map[string]dtos.VulnerabilityCategory{
	"sql-injection": {
		OWASPCategory: "A03:2021",
		CWEID:         "CWE-89",
		CategoryName:  "Injection",
		Description:   "User-controlled data reaches a SQL interpreter without parameterization",
	},
	"command-injection": {
		OWASPCategory: "A03:2021",
		CWEID:         "CWE-78",
		CategoryName:  "Injection",
		Description:   "User-controlled data is interpolated into an OS command",
	},
	"xss": {
		OWASPCategory: "A03:2021",
		CWEID:         "CWE-79",
		CategoryName:  "Injection",
		Description:   "Unescaped user input is reflected into HTML output",
	},
	"hardcoded-credentials": {
		OWASPCategory: "A07:2021",
		CWEID:         "CWE-798",
		CategoryName:  "Identification and Authentication Failures",
		Description:   "A credential is embedded verbatim in source code",
	},
	"weak-crypto": {
		OWASPCategory: "A02:2021",
		CWEID:         "CWE-327",
		CategoryName:  "Cryptographic Failures",
		Description:   "A broken or risky cryptographic algorithm is in use",
	},
	"path-traversal": {
		OWASPCategory: "A01:2021",
		CWEID:         "CWE-22",
		CategoryName:  "Broken Access Control",
		Description:   "User-controlled path segments escape the intended directory",
	},
	"insecure-deserialization": {
		OWASPCategory: "A08:2021",
		CWEID:         "CWE-502",
		CategoryName:  "Software and Data Integrity Failures",
		Description:   "Untrusted data is deserialized without validation",
	},
	"ssrf": {
		OWASPCategory: "A10:2021",
		CWEID:         "CWE-918",
		CategoryName:  "Server-Side Request Forgery",
		Description:   "The server fetches a user-controlled URL",
	},
	"xxe": {
		OWASPCategory: "A05:2021",
		CWEID:         "CWE-611",
		CategoryName:  "Security Misconfiguration",
		Description:   "XML external entity resolution is enabled for untrusted documents",
	},
	"open-redirect": {
		OWASPCategory: "A01:2021",
		CWEID:         "CWE-601",
		CategoryName:  "Broken Access Control",
		Description:   "A redirect target is taken from user input",
	},
}

// Categorize resolves a scanner vulnerability type to an OWASP category and
// CWE id. Unknown types map to a generic Uncategorized entry.
func Categorize(vulnerabilityType string) dtos.VulnerabilityCategory {
	key := strings.ToLower(strings.TrimSpace(vulnerabilityType))
	if category, ok := categoryTable[key]; ok {
		return category
	}
	return dtos.VulnerabilityCategory{
		OWASPCategory: "A00:2021",
		CWEID:         UncategorizedCWE,
		CategoryName:  "Uncategorized",
		Description:   "No category mapping for vulnerability type " + vulnerabilityType,
	}
}

// Known reports whether the vulnerability type has a category mapping. The
// synthesizer refuses to produce strategies for unknown types, so this is
// checked before synthesis, not during analysis.
func Known(vulnerabilityType string) bool {
	_, ok := categoryTable[strings.ToLower(strings.TrimSpace(vulnerabilityType))]
	return ok
}
