package githubint

import (
	"context"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

type githubClient struct {
	client *github.Client
}

// NewGithubClient authenticates with a personal access token.
func NewGithubClient(token string) githubClient {
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	))
	return githubClient{client: github.NewClient(httpClient)}
}

func (g githubClient) GetRef(ctx context.Context, owner string, repo string, ref string) (*github.Reference, *github.Response, error) {
	return g.client.Git.GetRef(ctx, owner, repo, ref)
}

func (g githubClient) GetContents(ctx context.Context, owner string, repo string, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, *github.Response, error) {
	fileContent, _, response, err := g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	return fileContent, response, err
}

func (g githubClient) CreateBlob(ctx context.Context, owner string, repo string, blob *github.Blob) (*github.Blob, *github.Response, error) {
	return g.client.Git.CreateBlob(ctx, owner, repo, blob)
}

func (g githubClient) CreateTree(ctx context.Context, owner string, repo string, baseTree string, entries []*github.TreeEntry) (*github.Tree, *github.Response, error) {
	return g.client.Git.CreateTree(ctx, owner, repo, baseTree, entries)
}

func (g githubClient) CreateCommit(ctx context.Context, owner string, repo string, commit *github.Commit) (*github.Commit, *github.Response, error) {
	return g.client.Git.CreateCommit(ctx, owner, repo, commit, nil)
}

func (g githubClient) CreateRef(ctx context.Context, owner string, repo string, ref *github.Reference) (*github.Reference, *github.Response, error) {
	return g.client.Git.CreateRef(ctx, owner, repo, ref)
}

func (g githubClient) CreatePullRequest(ctx context.Context, owner string, repo string, pull *github.NewPullRequest) (*github.PullRequest, *github.Response, error) {
	return g.client.PullRequests.Create(ctx, owner, repo, pull)
}
