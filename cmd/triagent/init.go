package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a triagent workspace",
	Long: `Create the workspace directory structure and a project config file.

Creates incoming/, processed/, outgoing/, mock_issues/, and data/
directories, writes a .triagent.yaml template, and drops a sample mock
issue you can run immediately with 'triagent run --mock issue_001'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if a config file exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) == 1 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing triagent workspace in %s...\n\n", absPath)

	configPath := filepath.Join(absPath, ".triagent.yaml")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Println("Workspace already initialized. Use --force to reinitialize.")
		return nil
	}

	cfg := config.Default()
	cfg.Workspace = config.WorkspaceConfig{Root: absPath}
	cfg.Workspace.Incoming = filepath.Join(absPath, "incoming")
	cfg.Workspace.Processed = filepath.Join(absPath, "processed")
	cfg.Workspace.Outgoing = filepath.Join(absPath, "outgoing")
	cfg.Workspace.MockIssues = filepath.Join(absPath, "mock_issues")
	cfg.Workspace.Data = filepath.Join(absPath, "data")

	if err := cfg.EnsureWorkspace(); err != nil {
		return err
	}
	printStatus("✓", "Created workspace directories", color.FgGreen)

	if err := os.WriteFile(configPath, []byte(projectConfigTemplate), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	printStatus("✓", "Created .triagent.yaml template", color.FgGreen)

	samplePath := filepath.Join(cfg.Workspace.MockIssues, "issue_001.json")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(sampleMockIssue), 0644); err != nil {
			return fmt.Errorf("writing sample issue: %w", err)
		}
		printStatus("✓", "Created sample mock issue (issue_001)", color.FgGreen)
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	fmt.Printf("\n%s Workspace ready!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  Run the sample issue:")
	fmt.Println("     triagent run --mock issue_001")
	fmt.Println()
	fmt.Println("  Or start the folder watcher:")
	fmt.Println("     triagent watch")

	return nil
}

const projectConfigTemplate = `# triagent project configuration
llm:
  provider: anthropic
  # model: claude-sonnet-4-20250514
  temperature: 0.2
  max_tokens: 4096

watch:
  poll_interval: 3s

# pricing:
#   overrides_file: pricing.yaml

# log:
#   debug_file: data/debug.log
`

const sampleMockIssue = `{
  "issue_id": "acme/todo-app#101",
  "repo": "acme/todo-app",
  "issue_number": 101,
  "title": "Add due-date reminders for tasks",
  "body": "Users want an optional due date on each task and a reminder shown when a task is within 24 hours of its due date.\n\nAcceptance: tasks can store a due date, overdue tasks are highlighted, and the task list can be sorted by due date.",
  "labels": ["enhancement", "good first issue"],
  "url": "https://github.com/acme/todo-app/issues/101",
  "source": "mock"
}
`
