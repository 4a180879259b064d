package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/report"
	"github.com/triagent/triagent/internal/store"
)

var (
	reportLatest bool
	reportHTML   string
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Print the report for a stored pipeline run",
	Long: `Print the text report for a pipeline run recorded in the results
database. Pass a run ID, or --latest for the most recent run.

With --html, an HTML report is also written to the given path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportLatest, "latest", false, "Report the most recent run")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "Also write an HTML report to this path")
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !reportLatest {
		return fmt.Errorf("pass a run ID or use --latest")
	}
	if len(args) == 1 && reportLatest {
		return fmt.Errorf("pass a run ID or --latest, not both")
	}

	cfg, err := loadConfigLenient()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runID := ""
	if len(args) == 1 {
		runID = args[0]
	} else {
		runs, err := s.RecentRuns(1)
		if err != nil {
			return fmt.Errorf("querying runs: %w", err)
		}
		if len(runs) == 0 {
			return fmt.Errorf("no runs recorded yet")
		}
		runID = runs[0].RunID
	}

	result, err := s.GetResult(runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		return err
	}

	htmlPath := ""
	if reportHTML != "" {
		data, err := report.HTML(result)
		if err != nil {
			return fmt.Errorf("rendering HTML report: %w", err)
		}
		if err := os.WriteFile(reportHTML, data, 0644); err != nil {
			return fmt.Errorf("writing HTML report: %w", err)
		}
		htmlPath = reportHTML
	}

	fmt.Print(report.Text(result, report.TextOptions{HTMLPath: htmlPath}))
	return nil
}
