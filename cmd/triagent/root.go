package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triagent",
	Short: "Three-agent issue triage pipeline",
	Long: `Triagent runs GitHub issues through a PM -> Dev -> QA agent pipeline.

The PM agent turns an issue into acceptance criteria and a plan, the Dev
agent proposes an implementation, and the QA agent reviews it and returns
a verdict (pass, fail, or needs-human).

Issues can come from mock fixtures, local JSON files, the GitHub API, or
a watched incoming/ folder. Results are written to outgoing/ as JSON plus
an HTML report, and recorded in a local SQLite database.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
