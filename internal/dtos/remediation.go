package dtos

type StrategyType string

const (
	StrategyQuickPatch        StrategyType = "QUICK_PATCH"
	StrategyFullFix           StrategyType = "FULL_FIX"
	StrategyLongTermHardening StrategyType = "LONG_TERM_HARDENING"
)

type ChangeType string

const (
	ChangeAdd    ChangeType = "ADD"
	ChangeDelete ChangeType = "DELETE"
	ChangeModify ChangeType = "MODIFY"
)

type RemediationStrategy struct {
	ID              string       `json:"id"`
	Type            StrategyType `json:"type"`
	Priority        int          `json:"priority"`
	Description     string       `json:"description"`
	Rationale       string       `json:"rationale"`
	EstimatedEffort string       `json:"estimated_effort"`
	SecurityImpact  string       `json:"security_impact"`
	Patch           UnifiedDiff  `json:"patch"`
	Rollback        UnifiedDiff  `json:"rollback"`
	Tests           []TestSuite  `json:"tests"`
	CIChanges       *CIChanges   `json:"ci_changes,omitempty"`
}

type UnifiedDiff struct {
	FilePath        string       `json:"file_path"`
	OriginalContent string       `json:"original_content"`
	ModifiedContent string       `json:"modified_content"`
	DiffContent     string       `json:"diff_content"`
	LineChanges     []LineChange `json:"line_changes"`
}

type LineChange struct {
	LineNumber   int        `json:"line_number"`
	ChangeType   ChangeType `json:"change_type"`
	OriginalLine *string    `json:"original_line,omitempty"`
	NewLine      *string    `json:"new_line,omitempty"`
}

type TestSuiteType string

const (
	TestSuiteUnit        TestSuiteType = "UNIT"
	TestSuiteIntegration TestSuiteType = "INTEGRATION"
	TestSuiteSmoke       TestSuiteType = "SMOKE"
	TestSuiteSecurity    TestSuiteType = "SECURITY"
)

type TestSuite struct {
	Name          string        `json:"name"`
	Type          TestSuiteType `json:"type"`
	Framework     string        `json:"framework"`
	TestFiles     []TestFile    `json:"test_files"`
	SetupCommands []string      `json:"setup_commands,omitempty"`
	RunCommands   []string      `json:"run_commands"`
}

type TestFile struct {
	FilePath    string `json:"file_path"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

type CIPlatform string

const (
	PlatformGithubActions CIPlatform = "GITHUB_ACTIONS"
	PlatformGitlabCI      CIPlatform = "GITLAB_CI"
	PlatformJenkins       CIPlatform = "JENKINS"
	PlatformAzureDevops   CIPlatform = "AZURE_DEVOPS"
)

type CIChanges struct {
	Platform        CIPlatform       `json:"platform"`
	ConfigFiles     []ConfigFile     `json:"config_files"`
	PipelineChanges []PipelineChange `json:"pipeline_changes"`
}

type ConfigFile struct {
	FilePath    string `json:"file_path"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

type PipelineChange struct {
	Stage       string   `json:"stage"`
	Action      string   `json:"action"`
	Description string   `json:"description"`
	Commands    []string `json:"commands,omitempty"`
}
