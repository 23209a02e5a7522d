/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/cache"
	"github.com/tristendillon/carve/core/closure"
	"github.com/tristendillon/carve/core/logger"
	"github.com/tristendillon/carve/core/reconcile"
	"github.com/tristendillon/carve/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <component>",
	Short: "Re-analyze a component whenever project sources change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		cfg, root, err := loadProject()
		if err != nil {
			return err
		}
		component := args[0]

		analyzer := closure.NewAnalyzer(cfg, root, cache.GetCache())
		if err := analyzer.CheckComponent(component); err != nil {
			return err
		}
		analyze := func() error {
			c, err := analyzer.Analyze(component)
			if err != nil {
				return err
			}
			_, stats, err := analyzer.FilterManifest(c)
			if err != nil {
				return err
			}
			printClosure(c, stats)
			return nil
		}

		extensions := append([]string{}, cfg.Scan.PackageExtensions...)
		for _, name := range reconcile.DeclarationFiles {
			extensions = append(extensions, filepath.Ext(name))
		}

		fw, err := watcher.NewFileWatcher(filepath.Join(root, "src"), cfg.Scan.Exclude, extensions)
		if err != nil {
			return err
		}
		fw.FileWatcher.AddOnStartFunc(analyze)
		fw.FileWatcher.AddOnChangeFunc(func(changed []string) error {
			logger.Info("%d file(s) changed", len(changed))
			return analyze()
		})
		fw.FileWatcher.AddOnCloseFunc(func() error {
			cache.GetCache().LogStats()
			return nil
		})
		defer fw.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Info("Watching %s for changes (Ctrl+C to stop)", filepath.Join(root, "src"))
		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
