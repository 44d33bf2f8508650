package analysis

import (
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

type requirement struct {
	id    string
	title string
}

// requirementTable maps a CWE id to the requirement it violates per
// framework. A framework without an entry for the CWE produces no mapping
// at all, which is why a finding can be NON_COMPLIANT under PCI and absent
// (implicitly fine) under CIS.
var requirementTable = map[dtos.ComplianceFramework]map[string]requirement{
	dtos.FrameworkOWASP: {
		"CWE-89":  {"A03:2021", "Injection"},
		"CWE-78":  {"A03:2021", "Injection"},
		"CWE-79":  {"A03:2021", "Injection"},
		"CWE-798": {"A07:2021", "Identification and Authentication Failures"},
		"CWE-327": {"A02:2021", "Cryptographic Failures"},
		"CWE-22":  {"A01:2021", "Broken Access Control"},
		"CWE-502": {"A08:2021", "Software and Data Integrity Failures"},
		"CWE-918": {"A10:2021", "Server-Side Request Forgery"},
		"CWE-611": {"A05:2021", "Security Misconfiguration"},
		"CWE-601": {"A01:2021", "Broken Access Control"},
	},
	dtos.FrameworkCIS: {
		"CWE-798": {"CIS-16.2", "Establish and Maintain a Secure Application Development Process"},
		"CWE-327": {"CIS-3.11", "Encrypt Sensitive Data at Rest"},
		"CWE-89":  {"CIS-16.10", "Apply Secure Design Principles in Application Architectures"},
		"CWE-78":  {"CIS-16.10", "Apply Secure Design Principles in Application Architectures"},
	},
	dtos.FrameworkPCI: {
		"CWE-89":  {"PCI-6.5.1", "Injection flaws, particularly SQL injection"},
		"CWE-78":  {"PCI-6.5.1", "Injection flaws, particularly SQL injection"},
		"CWE-79":  {"PCI-6.5.7", "Cross-site scripting (XSS)"},
		"CWE-798": {"PCI-8.6", "Authentication credentials must not be hardcoded"},
		"CWE-327": {"PCI-4.1", "Use strong cryptography during transmission"},
		"CWE-22":  {"PCI-6.5.8", "Improper access control"},
		"CWE-601": {"PCI-6.5.8", "Improper access control"},
	},
	dtos.FrameworkNIST: {
		"CWE-89":  {"SI-10", "Information Input Validation"},
		"CWE-78":  {"SI-10", "Information Input Validation"},
		"CWE-79":  {"SI-10", "Information Input Validation"},
		"CWE-798": {"IA-5", "Authenticator Management"},
		"CWE-327": {"SC-13", "Cryptographic Protection"},
		"CWE-502": {"SI-7", "Software, Firmware, and Information Integrity"},
		"CWE-918": {"SC-7", "Boundary Protection"},
		"CWE-611": {"CM-6", "Configuration Settings"},
	},
	dtos.FrameworkISO27001: {
		"CWE-798": {"A.9.4.3", "Password management system"},
		"CWE-327": {"A.10.1.1", "Policy on the use of cryptographic controls"},
		"CWE-89":  {"A.14.2.5", "Secure system engineering principles"},
		"CWE-79":  {"A.14.2.5", "Secure system engineering principles"},
		"CWE-502": {"A.14.2.5", "Secure system engineering principles"},
	},
}

// frameworks in the order mappings are emitted, so output is deterministic.
var frameworks = []dtos.ComplianceFramework{
	dtos.FrameworkOWASP,
	dtos.FrameworkCIS,
	dtos.FrameworkPCI,
	dtos.FrameworkNIST,
	dtos.FrameworkISO27001,
}

var severityRank = map[dtos.Severity]int{
	dtos.SeverityLow:      1,
	dtos.SeverityMedium:   2,
	dtos.SeverityHigh:     3,
	dtos.SeverityCritical: 4,
}

// nonCompliantAt is the severity rank at which a framework flips to
// NON_COMPLIANT. One rank below is PARTIAL, anything lower COMPLIANT. PCI
// is the strictest, ISO27001 the most lenient, so the same finding can be
// NON_COMPLIANT under PCI while still PARTIAL under ISO27001.
var nonCompliantAt = map[dtos.ComplianceFramework]int{
	dtos.FrameworkOWASP:    3,
	dtos.FrameworkCIS:      3,
	dtos.FrameworkPCI:      2,
	dtos.FrameworkNIST:     3,
	dtos.FrameworkISO27001: 4,
}

func statusFor(framework dtos.ComplianceFramework, severity dtos.Severity) dtos.ComplianceStatus {
	rank := severityRank[severity]
	threshold := nonCompliantAt[framework]
	switch {
	case rank >= threshold:
		return dtos.StatusNonCompliant
	case rank == threshold-1:
		return dtos.StatusPartial
	default:
		return dtos.StatusCompliant
	}
}

// MapCompliance computes the per-framework compliance mappings for a
// categorized finding. Each framework is evaluated independently.
func MapCompliance(category dtos.VulnerabilityCategory, severity dtos.Severity) []dtos.ComplianceMapping {
	mappings := make([]dtos.ComplianceMapping, 0, len(frameworks))
	for _, framework := range frameworks {
		req, ok := requirementTable[framework][category.CWEID]
		if !ok {
			continue
		}
		mappings = append(mappings, dtos.ComplianceMapping{
			Framework:        framework,
			RequirementID:    req.id,
			RequirementTitle: req.title,
			ComplianceStatus: statusFor(framework, severity),
		})
	}
	return mappings
}
