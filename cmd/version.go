/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/carve/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of Carve",
	Long:  `Displays the version of Carve.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Carve %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
