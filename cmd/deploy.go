/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/deploy"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/remote"
)

var deployReq deploy.Request

var deployCmd = &cobra.Command{
	Use:   "deploy <component>",
	Short: "Deploy a component as its own GitHub repository",
	Long: `Computes the component's closure, creates the remote repository, assembles
and rewrites a standalone project, optionally verifies the build and pushes it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("deploy called")
		cfg, root, err := loadProject()
		if err != nil {
			return err
		}

		req := deployReq
		req.Component = args[0]
		if !cmd.Flags().Changed("verify") {
			req.Verify = cfg.Verify.Enabled
		}

		runner := remote.NewExecRunner()
		deployer := deploy.New(cfg, root, deploy.Collaborators{
			Host:     remote.NewGitHubCLI(runner),
			VCS:      remote.NewGitCLI(runner),
			Verifier: deploy.NewCommandVerifier(runner, cfg.Verify.Install, cfg.Verify.Build, cfg.Verify.Timeout),
			Cache:    cache.GetCache(),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		_, err = deployer.Run(ctx, req)
		return err
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployReq.Repo, "repo", "", "Name of the repository to create")
	deployCmd.Flags().StringVar(&deployReq.Visibility, "visibility", "", "public or private (defaults to defaultVisibility)")
	deployCmd.Flags().StringVar(&deployReq.Description, "description", "", "Repository description")
	deployCmd.Flags().BoolVar(&deployReq.Verify, "verify", false, "Install and build the assembled project before pushing")
	deployCmd.Flags().BoolVar(&deployReq.KeepWorkDir, "keep-workdir", false, "Keep the assembled working directory")
	deployCmd.Flags().BoolVar(&deployReq.SkipPublish, "skip-publish", false, "Assemble only, without creating or pushing a repository")
	deployCmd.MarkFlagRequired("repo")
}
