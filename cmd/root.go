/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/config"
	"github.com/tristendillon/carve/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "carve",
	Short: "Carve one Angular component out into its own repository.",
	Long: `Carve computes everything a single component needs to build on its own,
copies it into a fresh Angular project with the component flattened under
src/app, and publishes the result as a new GitHub repository.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if logfile != "" {
			closer, err := logger.OpenLogFile(logfile)
			if err != nil {
				return err
			}
			logCloser = closer
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

var logfile string
var verbose bool
var projectDir string
var configPath string
var logCloser io.Closer

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func projectRoot() (string, error) {
	root := projectDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	return abs, nil
}

// loadProject resolves --project and reads its deploy configuration.
func loadProject() (*config.Config, string, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "Angular project root (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a deploy config file")
}
