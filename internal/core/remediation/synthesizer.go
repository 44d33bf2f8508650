package remediation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// Strategy priorities. FULL_FIX is the recommended default, so it ranks
// first; the quick patch is a stopgap; hardening is follow-up work.
const (
	priorityFullFix    = 1
	priorityQuickPatch = 2
	priorityHardening  = 3
)

// typePrecedence breaks priority ties for immediate-response ordering.
var typePrecedence = map[dtos.StrategyType]int{
	dtos.StrategyQuickPatch:        0,
	dtos.StrategyFullFix:           1,
	dtos.StrategyLongTermHardening: 2,
}

type Synthesizer struct {
	generateID func(prefix string) string
}

func NewSynthesizer(generateID func(prefix string) string) *Synthesizer {
	return &Synthesizer{generateID: generateID}
}

// Synthesize produces the ranked strategy set for an analyzed finding. When
// it succeeds the set always contains a FULL_FIX; when no rewrite rule
// matches the evidence it fails with a synthesis ProcessingError, which the
// caller treats as a terminal session failure.
func (s *Synthesizer) Synthesize(normalized dtos.NormalizedFinding, analysis dtos.AnalysisResult) ([]dtos.RemediationStrategy, error) {
	vulnType := strings.ToLower(strings.TrimSpace(normalized.Evidence.VulnerabilityType))
	language := analysis.TechnologyContext.Language
	snippet := normalized.NormalizedEvidence.SanitizedCodeSnippet
	filePath := normalized.Evidence.FilePath

	tmpl, ok := templateFor(vulnType, language)
	if !ok {
		return nil, errs.Processing(
			fmt.Sprintf("no remediation strategy known for vulnerability type %q", normalized.Evidence.VulnerabilityType),
			"synthesis",
		).WithSession(normalized.SessionID)
	}

	quickFixed, quickOK := tmpl.rewrite(snippet, true)
	fullFixed, fullOK := tmpl.rewrite(snippet, false)
	if !quickOK || !fullOK {
		return nil, errs.Processing(
			fmt.Sprintf("no rewrite rule for %q matched the evidence", normalized.Evidence.VulnerabilityType),
			"synthesis",
		).WithSession(normalized.SessionID)
	}
	if prelude := tmpl.preludeLines(language); len(prelude) > 0 {
		fullFixed = strings.Join(prelude, "\n") + "\n" + fullFixed
	}

	quickPatch := BuildDiff(filePath, snippet, quickFixed)
	quickRollback := BuildDiff(filePath, quickFixed, snippet)
	fullPatch := BuildDiff(filePath, snippet, fullFixed)
	fullRollback := BuildDiff(filePath, fullFixed, snippet)

	fullTests := GenerateTests(vulnType, filePath, language, fullPatch)

	strategies := []dtos.RemediationStrategy{
		{
			ID:              s.generateID("strat"),
			Type:            dtos.StrategyFullFix,
			Priority:        priorityFullFix,
			Description:     tmpl.fullWhat,
			Rationale:       fmt.Sprintf("%s (%s, %s)", tmpl.impact, analysis.VulnerabilityCategory.CWEID, analysis.RiskAssessment.RiskLevel),
			EstimatedEffort: "hours",
			SecurityImpact:  tmpl.impact,
			Patch:           fullPatch,
			Rollback:        fullRollback,
			Tests:           fullTests,
		},
		{
			ID:              s.generateID("strat"),
			Type:            dtos.StrategyQuickPatch,
			Priority:        priorityQuickPatch,
			Description:     tmpl.quickWhat,
			Rationale:       "Smallest possible change to stop the immediate exposure",
			EstimatedEffort: "minutes",
			SecurityImpact:  tmpl.impact,
			Patch:           quickPatch,
			Rollback:        quickRollback,
			// quick patches ship without derived tests, recorded as an
			// empty set rather than null
			Tests: []dtos.TestSuite{},
		},
		{
			ID:              s.generateID("strat"),
			Type:            dtos.StrategyLongTermHardening,
			Priority:        priorityHardening,
			Description:     tmpl.hardenWhat,
			Rationale:       "Prevents the vulnerability class from being reintroduced",
			EstimatedEffort: "days",
			SecurityImpact:  tmpl.impact,
			Patch:           fullPatch,
			Rollback:        fullRollback,
			Tests:           GenerateTests(vulnType, filePath, language, fullPatch),
			CIChanges:       GenerateCIChanges(vulnType),
		},
	}

	Sort(strategies)
	return strategies, nil
}

func (t fixTemplate) preludeLines(language string) []string {
	if t.prelude == nil {
		return nil
	}
	return t.prelude(language)
}

// Sort orders strategies by priority ascending; ties fall back to the
// immediate-response type precedence.
func Sort(strategies []dtos.RemediationStrategy) {
	sort.SliceStable(strategies, func(i, j int) bool {
		if strategies[i].Priority != strategies[j].Priority {
			return strategies[i].Priority < strategies[j].Priority
		}
		return typePrecedence[strategies[i].Type] < typePrecedence[strategies[j].Type]
	})
}

// Select resolves the strategy to apply. An empty id picks the default:
// the FULL_FIX if present, otherwise the highest-priority strategy.
func Select(strategies []dtos.RemediationStrategy, strategyID string) (dtos.RemediationStrategy, error) {
	if len(strategies) == 0 {
		return dtos.RemediationStrategy{}, errs.NotFound("strategy", strategyID)
	}
	if strategyID == "" {
		for _, strategy := range strategies {
			if strategy.Type == dtos.StrategyFullFix {
				return strategy, nil
			}
		}
		return strategies[0], nil
	}
	for _, strategy := range strategies {
		if strategy.ID == strategyID {
			return strategy, nil
		}
	}
	return dtos.RemediationStrategy{}, errs.Validation("strategy_id does not reference a strategy of this session", "strategy_id")
}
