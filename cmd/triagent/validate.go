package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/issue"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate issue JSON files without running the pipeline",
	Long: `Check that issue JSON files parse and satisfy the issue schema.

Reports every problem found in each file. Exits non-zero when any file
is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, path := range args {
		problems := issue.ValidateFile(path)
		if len(problems) == 0 {
			printStatus("✓", path, color.FgGreen)
			continue
		}
		invalid++
		printStatus("✗", path, color.FgRed)
		for _, p := range problems {
			fmt.Printf("    %s\n", p)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", invalid, len(args))
	}
	return nil
}
