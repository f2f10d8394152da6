package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reelstack-io/reelstack/internal/logging"
)

var (
	cfgPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "reelstack",
	Short: "Movie-stats site deployment tool",
	Long: `Reelstack provisions the cloud resources for a movie statistics website,
imports the dataset, and publishes the static frontend.

Pipeline stages:
  • provision — storage bucket, database table, optional CDN
  • import    — bulk-load the CSV dataset into the database
  • publish   — generate the frontend and upload it to the bucket`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logging.Init(logLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "reelstack.yaml", "deployment manifest")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(versionCmd)
}
