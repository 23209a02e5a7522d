/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/config"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/template_engine"
)

var (
	force    bool
	username string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a deploy-config.yaml into the project",
	Long:  `Creates deploy-config.yaml in the project root with the default settings.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		root, err := projectRoot()
		if err != nil {
			return err
		}

		target := filepath.Join(root, config.FileNames[0])
		if _, err := os.Stat(target); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", target)
		}

		data := config.Default()
		data.GithubUsername = username
		engine := template_engine.NewTemplateEngine()
		if err := engine.GenerateFolder(template_engine.TEMPLATES.INIT.Ref, root, data); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("Created %s", target)

		fmt.Printf("Next Steps:\n")
		if username == "" {
			fmt.Printf("  - set githubUsername in %s\n", config.FileNames[0])
		}
		fmt.Printf("  - carve analyze <component>\n")
		fmt.Printf("  - carve deploy <component> --repo <name>\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&username, "username", "", "GitHub account that owns the new repositories")
}
