/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/closure"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/materialize"
	"github.com/tristendillon/carve/core/template_engine"
)

var outDir string

var materializeCmd = &cobra.Command{
	Use:   "materialize <component>",
	Short: "Assemble a component's standalone project into a local directory",
	Long:  `Runs the analysis, copy and rewrite steps of a deploy without touching any remote.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("materialize called")
		cfg, root, err := loadProject()
		if err != nil {
			return err
		}
		component := args[0]

		out := outDir
		if out == "" {
			out = filepath.Join(root, cfg.WorkDir)
		}
		out, err = filepath.Abs(out)
		if err != nil {
			return err
		}
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists", out)
		}

		analyzer := closure.NewAnalyzer(cfg, root, cache.GetCache())
		c, err := analyzer.Analyze(component)
		if err != nil {
			return err
		}
		filtered, _, err := analyzer.FilterManifest(c)
		if err != nil {
			return err
		}

		m := materialize.New(materialize.OptionsFromConfig(cfg, root, out))
		tree, err := m.Assemble(c, filtered)
		if err != nil {
			return err
		}
		engine := template_engine.NewTemplateEngine()
		if err := m.WriteReadme(engine, template_engine.ReadmeData{Component: component}); err != nil {
			return err
		}
		if err := m.WriteGitignore(engine); err != nil {
			return err
		}

		rewriter := materialize.NewRewriter(m.Flattened(), path.Base(cfg.Layout.AppRoot), cfg.Layout.ComponentsDir, cfg.Rewrite.RootAliases)
		updated, err := rewriter.RewriteTree(out, cfg.Scan.RewriteExtensions)
		if err != nil {
			return err
		}
		logger.Info("Updated import paths in %d files", updated)

		tree.PrintTree(logger.INFO)
		logger.Info("Project written to %s", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(materializeCmd)

	materializeCmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to workDir under the project)")
}
