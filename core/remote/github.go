package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case Public:
		return Public, nil
	case Private:
		return Private, nil
	}
	return "", fmt.Errorf("invalid visibility %q (want public or private)", s)
}

type Repository struct {
	Owner       string
	Name        string
	Visibility  Visibility
	Description string
}

func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

func (r Repository) URL() string {
	return "https://github.com/" + r.FullName()
}

func (r Repository) PagesURL() string {
	return fmt.Sprintf("https://%s.github.io/%s/", r.Owner, r.Name)
}

// Run is one CI workflow run as reported by the host.
type Run struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// Host is the remote hosting provider.
type Host interface {
	CreateRepository(ctx context.Context, repo Repository) error
	ListRecentRuns(ctx context.Context, repo Repository, limit int) ([]Run, error)
	BranchExists(ctx context.Context, repo Repository, branch string) (bool, error)
	CreatePagesSite(ctx context.Context, repo Repository, branch, path string) error
	DeleteRepository(ctx context.Context, repo Repository) error
}

// GitHubCLI implements Host with the gh command line tool.
type GitHubCLI struct {
	runner Runner
}

func NewGitHubCLI(runner Runner) *GitHubCLI {
	return &GitHubCLI{runner: runner}
}

func (g *GitHubCLI) gh(ctx context.Context, args ...string) ([]byte, error) {
	return g.runner.Run(ctx, "", "gh", args...)
}

func (g *GitHubCLI) CreateRepository(ctx context.Context, repo Repository) error {
	args := []string{"repo", "create", repo.Name, "--" + string(repo.Visibility)}
	if d := strings.TrimSpace(repo.Description); d != "" {
		args = append(args, "--description", d)
	}
	if _, err := g.gh(ctx, args...); err != nil {
		return fmt.Errorf("failed to create repository %s: %w", repo.Name, err)
	}
	return nil
}

func (g *GitHubCLI) ListRecentRuns(ctx context.Context, repo Repository, limit int) ([]Run, error) {
	out, err := g.gh(ctx, "run", "list",
		"--repo", repo.FullName(),
		"--limit", strconv.Itoa(limit),
		"--json", "status,conclusion")
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", repo.FullName(), err)
	}
	var runs []Run
	if err := json.Unmarshal(out, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode run list: %w", err)
	}
	return runs, nil
}

func (g *GitHubCLI) BranchExists(ctx context.Context, repo Repository, branch string) (bool, error) {
	_, err := g.gh(ctx, "api", fmt.Sprintf("repos/%s/branches/%s", repo.FullName(), branch))
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to query branch %s: %w", branch, err)
}

func (g *GitHubCLI) CreatePagesSite(ctx context.Context, repo Repository, branch, path string) error {
	_, err := g.gh(ctx, "api", fmt.Sprintf("repos/%s/pages", repo.FullName()),
		"-X", "POST",
		"-f", "source[branch]="+branch,
		"-f", "source[path]="+path)
	if err != nil {
		return fmt.Errorf("failed to enable pages for %s: %w", repo.FullName(), err)
	}
	return nil
}

func (g *GitHubCLI) DeleteRepository(ctx context.Context, repo Repository) error {
	if _, err := g.gh(ctx, "repo", "delete", repo.FullName(), "--yes"); err != nil {
		return fmt.Errorf("failed to delete repository %s: %w", repo.FullName(), err)
	}
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return strings.Contains(cmdErr.Stderr, "404") || strings.Contains(strings.ToLower(cmdErr.Stderr), "not found")
	}
	return false
}
