/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/closure"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/manifest"
	"github.com/tristendillon/carve/core/models"
)

var asJSON bool

type closureReport struct {
	Component    string              `json:"component"`
	Declared     bool                `json:"declared"`
	Environments bool                `json:"environments"`
	Buckets      map[string][]string `json:"buckets"`
	Packages     []string            `json:"packages"`
	Manifest     manifest.Stats      `json:"manifest"`
}

func newClosureReport(c *models.Closure, stats manifest.Stats) closureReport {
	r := closureReport{
		Component:    c.Component,
		Declared:     c.Declared,
		Environments: c.Environments,
		Buckets:      make(map[string][]string),
		Packages:     c.Packages.Sorted(),
		Manifest:     stats,
	}
	for _, b := range models.Buckets {
		r.Buckets[string(b)] = c.Bucket(b).Sorted()
	}
	return r
}

func printClosure(c *models.Closure, stats manifest.Stats) {
	logger.Info("Component %s (%d dependencies)", c.Component, c.DependencyCount())
	for _, b := range models.Buckets {
		entries := c.Bucket(b).Sorted()
		if len(entries) == 0 {
			continue
		}
		logger.Info("  %s:", b)
		for _, e := range entries {
			logger.Info("    %s", e)
		}
	}
	if c.Environments {
		logger.Info("  environments: included")
	}
	logger.Info("Packages: %v", c.Packages.Sorted())
	logger.Info("Filtered package.json: %d dependencies, %d devDependencies (%d total)",
		stats.Dependencies, stats.DevDependencies, stats.Total)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <component>",
	Short: "Print the dependency closure of a component",
	Long:  `Scans the component, merges its dependency declaration and prints what a deploy would copy.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("analyze called")
		cfg, root, err := loadProject()
		if err != nil {
			return err
		}

		analyzer := closure.NewAnalyzer(cfg, root, cache.GetCache())
		c, err := analyzer.Analyze(args[0])
		if err != nil {
			return err
		}
		_, stats, err := analyzer.FilterManifest(c)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(newClosureReport(c, stats)); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			return nil
		}
		printClosure(c, stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "Print the closure as JSON")
}
