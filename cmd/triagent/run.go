package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/config"
	"github.com/triagent/triagent/internal/issue"
	"github.com/triagent/triagent/internal/report"
	"github.com/triagent/triagent/internal/watch"
	"github.com/triagent/triagent/pkg/models"
)

var (
	runMock       string
	runFile       string
	runGitHub     string
	runWriteFiles bool
	runOutputDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one issue through the PM -> Dev -> QA pipeline",
	Long: `Run a single issue through the full agent pipeline and write the
result to the outgoing directory.

The issue comes from exactly one source:
  --mock <name>            a fixture from the mock_issues directory
  --file <path>            a local issue JSON file
  --github <owner/repo#N>  fetched live from the GitHub API

Examples:
  triagent run --mock issue_001
  triagent run --file ./bug.json --write-files
  triagent run --github acme/widgets#42`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMock, "mock", "", "Mock issue fixture name")
	runCmd.Flags().StringVar(&runFile, "file", "", "Path to an issue JSON file")
	runCmd.Flags().StringVar(&runGitHub, "github", "", "GitHub issue reference (owner/repo#number)")
	runCmd.Flags().BoolVar(&runWriteFiles, "write-files", false, "Also write the Dev agent's proposed files to disk")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "Override the outgoing directory")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	iss, sourceFile, err := resolveIssue(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Running pipeline for %s: %s\n\n", color.New(color.Bold).Sprint(iss.IssueID), iss.Title)

	p, closer, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	result, err := p.Run(ctx, iss, sourceFile)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	outputDir := runOutputDir
	if outputDir == "" {
		outputDir = cfg.Workspace.Outgoing
	}

	outputPath, err := watch.SaveResult(result, outputDir, runWriteFiles)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}

	htmlPath, err := report.WriteHTML(result, outputPath)
	if err != nil {
		printStatus("⚠", fmt.Sprintf("HTML report not written: %v", err), color.FgYellow)
		htmlPath = ""
	}

	if s, err := openStore(cfg); err == nil {
		if err := s.SaveResult(result); err != nil {
			printStatus("⚠", fmt.Sprintf("Result not recorded in database: %v", err), color.FgYellow)
		}
		s.Close()
	} else {
		printStatus("⚠", err.Error(), color.FgYellow)
	}

	fmt.Println()
	fmt.Print(report.Text(result, report.TextOptions{
		OutputPath: outputPath,
		HTMLPath:   htmlPath,
	}))

	return nil
}

// resolveIssue loads the issue from whichever source flag was given.
func resolveIssue(ctx context.Context, cfg *config.Config) (models.Issue, string, error) {
	sources := 0
	for _, s := range []string{runMock, runFile, runGitHub} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return models.Issue{}, "", fmt.Errorf("exactly one of --mock, --file, or --github is required")
	}

	switch {
	case runMock != "":
		iss, err := issue.NewMockSource(cfg.Workspace.MockIssues).Load(runMock)
		return iss, "", err

	case runFile != "":
		iss, err := issue.FromPath(runFile)
		return iss, runFile, err

	default:
		owner, repo, number, err := parseGitHubRef(runGitHub)
		if err != nil {
			return models.Issue{}, "", err
		}
		fetcher, err := issue.NewGitHubFetcher(cfg.GitHub.Token)
		if err != nil {
			return models.Issue{}, "", err
		}
		iss, err := fetcher.Fetch(ctx, owner, repo, number)
		return iss, "", err
	}
}

// parseGitHubRef parses "owner/repo#number".
func parseGitHubRef(ref string) (owner, repo string, number int, err error) {
	repoPart, numPart, ok := strings.Cut(ref, "#")
	if !ok {
		return "", "", 0, fmt.Errorf("invalid GitHub reference %q (want owner/repo#number)", ref)
	}
	owner, repo, ok = strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", 0, fmt.Errorf("invalid GitHub reference %q (want owner/repo#number)", ref)
	}
	number, err = strconv.Atoi(numPart)
	if err != nil || number < 1 {
		return "", "", 0, fmt.Errorf("invalid issue number in %q", ref)
	}
	return owner, repo, number, nil
}
