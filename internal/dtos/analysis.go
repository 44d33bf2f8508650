package dtos

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

type ComplianceFramework string

const (
	FrameworkOWASP    ComplianceFramework = "OWASP"
	FrameworkCIS      ComplianceFramework = "CIS"
	FrameworkPCI      ComplianceFramework = "PCI"
	FrameworkNIST     ComplianceFramework = "NIST"
	FrameworkISO27001 ComplianceFramework = "ISO27001"
)

type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
	StatusPartial      ComplianceStatus = "PARTIAL"
)

type AnalysisResult struct {
	VulnerabilityCategory VulnerabilityCategory `json:"vulnerability_category"`
	RiskAssessment        RiskAssessment        `json:"risk_assessment"`
	ComplianceMappings    []ComplianceMapping   `json:"compliance_mappings"`
	TechnologyContext     TechnologyContext     `json:"technology_context"`
}

type VulnerabilityCategory struct {
	OWASPCategory string `json:"owasp_category"`
	CWEID         string `json:"cwe_id"`
	CategoryName  string `json:"category_name"`
	Description   string `json:"description"`
}

type RiskAssessment struct {
	CVSSScore      float64   `json:"cvss_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Exploitability float64   `json:"exploitability"`
	Impact         float64   `json:"impact"`
	Likelihood     float64   `json:"likelihood"`
}

type ComplianceMapping struct {
	Framework        ComplianceFramework `json:"framework"`
	RequirementID    string              `json:"requirement_id"`
	RequirementTitle string              `json:"requirement_title"`
	ComplianceStatus ComplianceStatus    `json:"compliance_status"`
}

type TechnologyContext struct {
	Language     string   `json:"language"`
	Framework    string   `json:"framework,omitempty"`
	Version      string   `json:"version,omitempty"`
	Dependencies []string `json:"dependencies"`
	BuildSystem  string   `json:"build_system,omitempty"`
}
