package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the notes directory",
	Long: `Create the notes directory under the configured data directory.
With versioning enabled it also runs 'git init' there.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		openService(cfg)
		fmt.Println("Initialized notes directory in", cfg.NotesDir())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
