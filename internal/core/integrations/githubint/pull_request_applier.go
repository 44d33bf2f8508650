package githubint

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v62/github"

	"github.com/surakshit-dev/surakshit/internal/core/config"
	"github.com/surakshit-dev/surakshit/internal/core/errs"
	"github.com/surakshit-dev/surakshit/internal/core/remediation"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// PullRequestApplier pushes an approved remediation to github: a branch off
// the finding's base branch, one commit built through the git data api, and
// a pull request describing the strategy.
type PullRequestApplier struct {
	client githubClientFacade
	cfg    config.GitHubConfig
}

func NewPullRequestApplier(cfg config.GitHubConfig) *PullRequestApplier {
	return &PullRequestApplier{
		client: NewGithubClient(cfg.Token),
		cfg:    cfg,
	}
}

func newPullRequestApplier(client githubClientFacade, cfg config.GitHubConfig) *PullRequestApplier {
	return &PullRequestApplier{client: client, cfg: cfg}
}

func (a *PullRequestApplier) OpenPullRequest(ctx context.Context, repo string, branch string, strategy dtos.RemediationStrategy, response dtos.SurakshitResponse) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}
	if branch == "" {
		branch = a.cfg.BaseBranch
	}

	baseRef, _, err := a.client.GetRef(ctx, owner, name, "refs/heads/"+branch)
	if err != nil {
		return "", fmt.Errorf("could not resolve base branch %s: %w", branch, err)
	}

	// re-apply the patch against the live file so a drifted repository is
	// rejected instead of silently overwritten
	fileContent, _, err := a.client.GetContents(ctx, owner, name, strategy.Patch.FilePath, &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return "", fmt.Errorf("could not fetch %s: %w", strategy.Patch.FilePath, err)
	}
	current, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("could not decode %s: %w", strategy.Patch.FilePath, err)
	}
	patched, err := remediation.ApplyPatch(current, strategy.Patch.DiffContent)
	if err != nil {
		return "", errs.Conflict("file changed since the remediation was synthesized", "file").WithCause(err)
	}

	entries, err := a.treeEntries(ctx, owner, name, strategy, patched)
	if err != nil {
		return "", err
	}

	tree, _, err := a.client.CreateTree(ctx, owner, name, baseRef.Object.GetSHA(), entries)
	if err != nil {
		return "", fmt.Errorf("could not create tree: %w", err)
	}

	commit, _, err := a.client.CreateCommit(ctx, owner, name, &github.Commit{
		Message: github.String(commitMessage(strategy, response)),
		Tree:    tree,
		Parents: []*github.Commit{{SHA: baseRef.Object.SHA}},
	})
	if err != nil {
		return "", fmt.Errorf("could not create commit: %w", err)
	}

	headBranch := "surakshit/remediation-" + strings.ToLower(response.SessionID)
	if _, _, err := a.client.CreateRef(ctx, owner, name, &github.Reference{
		Ref:    github.String("refs/heads/" + headBranch),
		Object: &github.GitObject{SHA: commit.SHA},
	}); err != nil {
		return "", fmt.Errorf("could not create branch %s: %w", headBranch, err)
	}

	pull, _, err := a.client.CreatePullRequest(ctx, owner, name, &github.NewPullRequest{
		Title:               github.String(fmt.Sprintf("fix: %s", strategy.Description)),
		Head:                github.String(headBranch),
		Base:                github.String(branch),
		Body:                github.String(pullRequestBody(strategy, response)),
		MaintainerCanModify: github.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("could not create pull request: %w", err)
	}
	return pull.GetHTMLURL(), nil
}

// treeEntries builds the blob entries for the patched file plus any test
// and ci files the strategy ships.
func (a *PullRequestApplier) treeEntries(ctx context.Context, owner string, name string, strategy dtos.RemediationStrategy, patched string) ([]*github.TreeEntry, error) {
	files := map[string]string{
		strategy.Patch.FilePath: patched,
	}
	for _, suite := range strategy.Tests {
		for _, testFile := range suite.TestFiles {
			files[testFile.FilePath] = testFile.Content
		}
	}
	if strategy.CIChanges != nil {
		for _, configFile := range strategy.CIChanges.ConfigFiles {
			files[configFile.FilePath] = configFile.Content
		}
	}

	entries := make([]*github.TreeEntry, 0, len(files))
	for path, content := range files {
		blob, _, err := a.client.CreateBlob(ctx, owner, name, &github.Blob{
			Content:  github.String(content),
			Encoding: github.String("utf-8"),
		})
		if err != nil {
			return nil, fmt.Errorf("could not create blob for %s: %w", path, err)
		}
		entries = append(entries, &github.TreeEntry{
			Path: github.String(path),
			Mode: github.String("100644"),
			Type: github.String("blob"),
			SHA:  blob.SHA,
		})
	}
	return entries, nil
}

func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errs.Validation("repository must be in owner/name form", "repo")
	}
	return parts[0], parts[1], nil
}

func commitMessage(strategy dtos.RemediationStrategy, response dtos.SurakshitResponse) string {
	return fmt.Sprintf("fix: %s\n\nFinding: %s\nStrategy: %s", strategy.Description, response.FindingID, strategy.Type)
}

func pullRequestBody(strategy dtos.RemediationStrategy, response dtos.SurakshitResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Automated remediation\n\n")
	fmt.Fprintf(&b, "%s\n\n", strategy.Rationale)
	fmt.Fprintf(&b, "- Finding: `%s`\n", response.FindingID)
	fmt.Fprintf(&b, "- Strategy: `%s`\n", strategy.Type)
	fmt.Fprintf(&b, "- Estimated effort: %s\n", strategy.EstimatedEffort)
	fmt.Fprintf(&b, "- Security impact: %s\n", strategy.SecurityImpact)
	if len(response.Compliance) > 0 {
		fmt.Fprintf(&b, "\n### Compliance\n\n")
		for _, mapping := range response.Compliance {
			fmt.Fprintf(&b, "- %s %s: %s\n", mapping.Framework, mapping.RequirementID, mapping.ComplianceStatus)
		}
	}
	return b.String()
}
