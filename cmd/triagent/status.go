package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/store"
)

var (
	statusLimit   int
	statusVerdict string
	statusRepo    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent pipeline runs and aggregate stats",
	Long: `Display recent pipeline runs from the results database.

Shows run ID, issue, verdict, token usage, and cost per run, plus
aggregate statistics across all stored runs. Use --verdict or --repo
to filter the run list.`,
	RunE: runStatusCmd,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum number of runs to show")
	statusCmd.Flags().StringVar(&statusVerdict, "verdict", "", "Filter runs by verdict (pass, fail, needs-human)")
	statusCmd.Flags().StringVar(&statusRepo, "repo", "", "Filter runs by repository (owner/repo)")
}

var (
	statusHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("238"))

	statusLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Width(14)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)

	verdictStyles = map[string]lipgloss.Style{
		"pass":        lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
		"fail":        lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"needs-human": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
	verdictDefaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func runStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigLenient()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath()); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet. Run 'triagent run' to start.")
		return nil
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var runs []store.RunSummary
	switch {
	case statusVerdict != "":
		runs, err = s.RunsByVerdict(statusVerdict, statusLimit)
	case statusRepo != "":
		runs, err = s.RunsByRepo(statusRepo, statusLimit)
	default:
		runs, err = s.RecentRuns(statusLimit)
	}
	if err != nil {
		return fmt.Errorf("querying runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No matching runs found.")
		return nil
	}

	fmt.Println(statusHeaderStyle.Render("Recent Runs"))
	fmt.Println()
	for _, r := range runs {
		printRunSummary(r)
	}

	stats, err := s.GetStats()
	if err != nil {
		return fmt.Errorf("querying stats: %w", err)
	}
	printStats(stats)

	return nil
}

func printRunSummary(r store.RunSummary) {
	verdict := verdictDefaultStyle.Render(r.Verdict)
	if style, ok := verdictStyles[r.Verdict]; ok {
		verdict = style.Render(r.Verdict)
	}

	fmt.Printf("%s  %s  %s\n",
		statusValueStyle.Render(r.IssueID),
		verdict,
		r.Title)
	fmt.Printf("  %s  run %s  %s tokens  $%.4f  %.1fs\n",
		r.CompletedAt,
		shortRunID(r.RunID),
		humanize.Comma(r.TotalTokens),
		r.EstimatedCost,
		r.DurationSeconds)
	fmt.Printf("  PM: %d criteria  Dev: %d files  QA: %d findings\n\n",
		r.PMCriteriaCount, r.DevFileCount, r.QAFindingCount)
}

func printStats(stats store.Stats) {
	fmt.Println(statusHeaderStyle.Render("Totals"))
	fmt.Println()

	row := func(label, value string) {
		fmt.Println(statusLabelStyle.Render(label) + " " + statusValueStyle.Render(value))
	}

	row("Runs:", fmt.Sprintf("%d", stats.TotalRuns))
	row("Repos:", fmt.Sprintf("%d", stats.UniqueRepos))
	row("Tokens:", humanize.Comma(stats.TotalTokens))
	row("Cost:", fmt.Sprintf("$%.4f", stats.TotalCostUSD))
	row("Avg time:", fmt.Sprintf("%.1fs", stats.AvgDurationSeconds))

	if len(stats.ByVerdict) > 0 {
		parts := make([]string, 0, len(stats.ByVerdict))
		for _, v := range []string{"pass", "fail", "needs-human"} {
			if n, ok := stats.ByVerdict[v]; ok {
				parts = append(parts, fmt.Sprintf("%s %d", v, n))
			}
		}
		row("Verdicts:", strings.Join(parts, ", "))
	}
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
