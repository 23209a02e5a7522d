package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/closure"
	"github.com/tristendillon/carve/core/config"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/manifest"
	"github.com/tristendillon/carve/core/materialize"
	"github.com/tristendillon/carve/core/models"
	"github.com/tristendillon/carve/core/pages"
	"github.com/tristendillon/carve/core/remote"
	"github.com/tristendillon/carve/core/retry"
	"github.com/tristendillon/carve/core/template_engine"
)

const (
	mainBranch  = "main"
	pagesBranch = "gh-pages"
)

type Request struct {
	Component   string
	Repo        string
	Visibility  string
	Description string
	Verify      bool
	KeepWorkDir bool
	SkipPublish bool
}

type Result struct {
	RunID       string
	Component   string
	Repository  remote.Repository
	URL         string
	PagesURL    string
	WorkDir     string
	Closure     *models.Closure
	Stats       manifest.Stats
	Files       int
	PollState   remote.PollState
	State       State
	Transitions []State
}

// Collaborators are the external systems a run talks to.
type Collaborators struct {
	Host     remote.Host
	VCS      remote.VCS
	Verifier Verifier
	Cache    *cache.FileCache
}

type Deployer struct {
	cfg         *config.Config
	projectRoot string
	host        remote.Host
	vcs         remote.VCS
	verifier    Verifier
	analyzer    *closure.Analyzer
	engine      *template_engine.TemplateEngine
	poller      *remote.Poller
	policy      retry.Policy
}

func New(cfg *config.Config, projectRoot string, c Collaborators) *Deployer {
	return &Deployer{
		cfg:         cfg,
		projectRoot: projectRoot,
		host:        c.Host,
		vcs:         c.VCS,
		verifier:    c.Verifier,
		analyzer:    closure.NewAnalyzer(cfg, projectRoot, c.Cache),
		engine:      template_engine.NewTemplateEngine(),
		poller:      remote.NewPoller(cfg.Poll.Interval, cfg.Poll.MaxAttempts),
		policy:      retry.Policy{Attempts: cfg.Retry.Attempts, BaseDelay: cfg.Retry.BaseDelay},
	}
}

// run carries the mutable state of one Run call.
type run struct {
	*Deployer
	req           Request
	result        *Result
	remoteCreated bool
}

func (r *run) enter(s State) {
	r.result.State = s
	r.result.Transitions = append(r.result.Transitions, s)
	logger.Debug("state -> %s", s)
}

// Run walks the deployment state machine once. The working directory is
// removed on every exit path unless req.KeepWorkDir is set.
func (d *Deployer) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	logger.SetPrefix(runID[:8])
	defer logger.SetPrefix("")

	r := &run{
		Deployer: d,
		req:      req,
		result:   &Result{RunID: runID, WorkDir: filepath.Join(d.projectRoot, d.cfg.WorkDir)},
	}

	r.enter(StateCollectingInputs)
	repo, err := r.collectInputs()
	if err != nil {
		return r.fail(ctx, err)
	}
	r.result.Component = req.Component
	r.result.Repository = repo
	r.result.URL = repo.URL()

	r.enter(StateAnalyzing)
	filtered, err := r.analyze()
	if err != nil {
		return r.fail(ctx, err)
	}

	if !req.SkipPublish {
		r.enter(StateCreatingRemote)
		logger.Info("Creating GitHub repository...")
		err := retry.Do(ctx, d.policy, "create repository", func(ctx context.Context) error {
			return d.host.CreateRepository(ctx, repo)
		})
		if err != nil {
			return r.fail(ctx, err)
		}
		r.remoteCreated = true
		logger.Info("Repository created: %s", repo.URL())
	}

	if !req.KeepWorkDir {
		defer func() {
			if err := os.RemoveAll(r.result.WorkDir); err != nil {
				logger.Warn("Failed to remove %s: %v", r.result.WorkDir, err)
			} else {
				logger.Debug("Removed %s", r.result.WorkDir)
			}
		}()
	}

	r.enter(StateAssembling)
	flattened, err := r.assemble(filtered)
	if err != nil {
		return r.fail(ctx, err)
	}

	r.enter(StateRewriting)
	rewriter := materialize.NewRewriter(flattened, path.Base(d.cfg.Layout.AppRoot), d.cfg.Layout.ComponentsDir, d.cfg.Rewrite.RootAliases)
	updated, err := rewriter.RewriteTree(r.result.WorkDir, d.cfg.Scan.RewriteExtensions)
	if err != nil {
		return r.fail(ctx, err)
	}
	logger.Info("Updated import paths in %d files", updated)

	if req.Verify {
		r.enter(StateVerifying)
		logger.Info("Verifying build...")
		if err := d.verifier.Verify(ctx, r.result.WorkDir); err != nil {
			return r.fail(ctx, fmt.Errorf("%w: %v", ErrVerificationFailed, err))
		}
		logger.Info("Build verified")
	}

	if req.SkipPublish {
		r.enter(StateSuccess)
		return r.result, nil
	}

	r.enter(StatePublishing)
	if err := r.publish(ctx, repo); err != nil {
		return r.fail(ctx, err)
	}

	if d.cfg.GithubPages.Enabled {
		r.enter(StatePollingRemote)
		r.finishPages(ctx, repo)
	}

	r.enter(StateSuccess)
	r.report()
	return r.result, nil
}

func (r *run) collectInputs() (remote.Repository, error) {
	r.req.Component = strings.TrimSpace(r.req.Component)
	r.req.Repo = strings.TrimSpace(r.req.Repo)
	if r.req.Component == "" {
		return remote.Repository{}, ErrEmptyComponentName
	}
	if r.req.Repo == "" {
		return remote.Repository{}, ErrEmptyRepoName
	}
	if err := r.analyzer.CheckComponent(r.req.Component); err != nil {
		return remote.Repository{}, err
	}

	visibility := r.req.Visibility
	if visibility == "" {
		visibility = r.cfg.DefaultVisibility
	}
	vis, err := remote.ParseVisibility(visibility)
	if err != nil {
		return remote.Repository{}, err
	}
	if r.cfg.GithubUsername == "" && !r.req.SkipPublish {
		return remote.Repository{}, ErrMissingUsername
	}

	return remote.Repository{
		Owner:       r.cfg.GithubUsername,
		Name:        r.req.Repo,
		Visibility:  vis,
		Description: strings.TrimSpace(r.req.Description),
	}, nil
}

func (r *run) analyze() (*models.Manifest, error) {
	logger.Info("Analyzing dependencies...")
	c, err := r.analyzer.Analyze(r.req.Component)
	if err != nil {
		return nil, err
	}
	r.result.Closure = c

	filtered, stats, err := r.analyzer.FilterManifest(c)
	if err != nil {
		return nil, err
	}
	r.result.Stats = stats
	if filtered != nil {
		logger.Info("Filtered package.json: %d dependencies, %d devDependencies (%d total)",
			stats.Dependencies, stats.DevDependencies, stats.Total)
		if r.cfg.GithubPages.Enabled {
			if err := pages.AddDeployScript(filtered, r.req.Repo); err != nil {
				return nil, err
			}
		}
	}
	return filtered, nil
}

func (r *run) assemble(filtered *models.Manifest) ([]string, error) {
	workDir := r.result.WorkDir
	if err := os.RemoveAll(workDir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", workDir, err)
	}

	m := materialize.New(materialize.OptionsFromConfig(r.cfg, r.projectRoot, workDir))
	tree, err := m.Assemble(r.result.Closure, filtered)
	if err != nil {
		return nil, err
	}
	if err := m.WriteReadme(r.engine, template_engine.ReadmeData{
		Component:   r.req.Component,
		Repo:        r.req.Repo,
		Description: r.req.Description,
	}); err != nil {
		return nil, err
	}
	if err := m.WriteGitignore(r.engine); err != nil {
		return nil, err
	}
	if r.cfg.GithubPages.Enabled {
		if err := r.preparePages(); err != nil {
			return nil, err
		}
	}

	r.result.Files = tree.FileCount()
	tree.PrintTree(logger.DEBUG)
	return m.Flattened(), nil
}

func (r *run) preparePages() error {
	workDir := r.result.WorkDir
	href := pages.BaseHref(r.req.Repo)

	project := r.req.Component
	angularJSON := filepath.Join(workDir, "angular.json")
	if _, err := os.Stat(angularJSON); err == nil {
		names, err := pages.SetBaseHref(angularJSON, href)
		if err != nil {
			return err
		}
		if len(names) > 0 {
			project = names[0]
		}
	}

	if r.cfg.GithubPages.Create404 {
		if _, err := pages.Write404(r.engine, workDir, pages.NotFoundData{Component: r.req.Component, BaseHref: href}); err != nil {
			return err
		}
	}
	if r.cfg.GithubPages.CreateWorkflow {
		if _, err := pages.WriteWorkflow(workDir, pages.WorkflowOptions{Repo: r.req.Repo, Project: project, Branch: mainBranch}); err != nil {
			return err
		}
		logger.Info("Created GitHub Pages workflow")
	}
	return nil
}

func (r *run) publish(ctx context.Context, repo remote.Repository) error {
	dir := r.result.WorkDir
	message := fmt.Sprintf("Initial commit: Angular base + %s component with dependencies\n\nCarve-Run: %s", r.req.Component, r.result.RunID)

	logger.Info("Initializing Git repository...")
	steps := []func() error{
		func() error { return r.vcs.Init(ctx, dir) },
		func() error { return r.vcs.AddAll(ctx, dir) },
		func() error { return r.vcs.Commit(ctx, dir, message) },
		func() error { return r.vcs.RenameBranch(ctx, dir, mainBranch) },
		func() error { return r.vcs.AddRemote(ctx, dir, "origin", repo.URL()+".git") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	logger.Info("Pushing to GitHub...")
	if err := r.vcs.Push(ctx, dir, "origin", mainBranch); err != nil {
		return err
	}
	logger.Info("Pushed successfully")
	return nil
}

// finishPages never fails the run; problems degrade to manual instructions.
func (r *run) finishPages(ctx context.Context, repo remote.Repository) {
	r.result.PagesURL = repo.PagesURL()

	if r.cfg.GithubPages.CreateWorkflow {
		logger.Info("Waiting for the Pages workflow...")
		state, err := r.poller.Poll(ctx, remote.RunCheck(r.host, repo))
		r.result.PollState = state
		switch {
		case err != nil:
			logger.Warn("Stopped waiting for the workflow: %v", err)
			r.manualPagesInstructions(repo)
		case state == remote.PollSucceeded:
			logger.Info("Pages deployed: %s", repo.PagesURL())
		case state == remote.PollFailed:
			logger.Warn("The Pages workflow failed, see %s/actions", repo.URL())
			r.manualPagesInstructions(repo)
		default:
			logger.Warn("The Pages workflow did not finish in time, check %s/actions", repo.URL())
			r.manualPagesInstructions(repo)
		}
		return
	}

	var exists bool
	err := retry.Do(ctx, r.policy, "check "+pagesBranch+" branch", func(ctx context.Context) error {
		var err error
		exists, err = r.host.BranchExists(ctx, repo, pagesBranch)
		return err
	})
	if err != nil || !exists {
		logger.Warn("No %s branch found, Pages was not enabled", pagesBranch)
		r.manualPagesInstructions(repo)
		return
	}
	err = retry.Do(ctx, r.policy, "enable pages", func(ctx context.Context) error {
		return r.host.CreatePagesSite(ctx, repo, pagesBranch, "/")
	})
	if err != nil {
		logger.Warn("Failed to enable Pages: %v", err)
		r.manualPagesInstructions(repo)
		return
	}
	r.result.PollState = remote.PollSucceeded
	logger.Info("Pages enabled: %s", repo.PagesURL())
}

func (r *run) manualPagesInstructions(repo remote.Repository) {
	logger.Info("To enable GitHub Pages manually:")
	logger.Info("  1. Open %s/settings/pages", repo.URL())
	logger.Info("  2. Under Source select \"GitHub Actions\" (or the %s branch)", pagesBranch)
	logger.Info("  3. The site will be served at %s", repo.PagesURL())
}

func (r *run) report() {
	logger.Info("SUCCESS! Deployment completed")
	logger.Info("Component:    %s", r.result.Component)
	logger.Info("Repository:   %s", r.result.URL)
	logger.Info("Visibility:   %s", r.result.Repository.Visibility)
	logger.Info("Dependencies: %d items", r.result.Closure.DependencyCount())
	if r.result.PagesURL != "" {
		logger.Info("Pages:        %s", r.result.PagesURL)
	}
}

// fail deletes the remote repository when the failed state calls for it and
// records the terminal state. The working directory is removed by Run.
func (r *run) fail(ctx context.Context, err error) (*Result, error) {
	failed := r.result.State
	if r.remoteCreated && (failed == StateVerifying || r.cfg.Rollback.RemoteOnAnyFailure) {
		logger.Warn("Rolling back: deleting %s", r.result.Repository.FullName())
		// cleanup runs even when ctx is already done
		cleanupCtx := context.WithoutCancel(ctx)
		if delErr := r.host.DeleteRepository(cleanupCtx, r.result.Repository); delErr != nil {
			logger.Warn("Failed to delete remote repository, remove it manually: %v", delErr)
		}
	}
	r.enter(StateFailed)
	logger.Error("Deployment failed in %s: %v", failed, err)
	return r.result, &StepError{State: failed, Err: err}
}
