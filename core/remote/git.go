package remote

import (
	"context"
	"fmt"
)

// VCS is local version control, always addressed by an explicit directory.
type VCS interface {
	Init(ctx context.Context, dir string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	RenameBranch(ctx context.Context, dir, branch string) error
	AddRemote(ctx context.Context, dir, name, url string) error
	Push(ctx context.Context, dir, remote, branch string) error
}

type GitCLI struct {
	runner Runner
}

func NewGitCLI(runner Runner) *GitCLI {
	return &GitCLI{runner: runner}
}

func (g *GitCLI) git(ctx context.Context, dir string, args ...string) error {
	if _, err := g.runner.Run(ctx, dir, "git", append([]string{"-C", dir}, args...)...); err != nil {
		return fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return nil
}

func (g *GitCLI) Init(ctx context.Context, dir string) error {
	return g.git(ctx, dir, "init")
}

func (g *GitCLI) AddAll(ctx context.Context, dir string) error {
	return g.git(ctx, dir, "add", ".")
}

func (g *GitCLI) Commit(ctx context.Context, dir, message string) error {
	return g.git(ctx, dir, "commit", "-m", message)
}

func (g *GitCLI) RenameBranch(ctx context.Context, dir, branch string) error {
	return g.git(ctx, dir, "branch", "-M", branch)
}

func (g *GitCLI) AddRemote(ctx context.Context, dir, name, url string) error {
	return g.git(ctx, dir, "remote", "add", name, url)
}

func (g *GitCLI) Push(ctx context.Context, dir, remote, branch string) error {
	return g.git(ctx, dir, "push", "-u", remote, branch)
}
