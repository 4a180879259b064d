// Package watch processes issue files dropped into the incoming directory:
// it validates them, moves them through the folder workflow, runs the
// pipeline, and persists results.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/triagent/triagent/internal/fsutil"
	"github.com/triagent/triagent/internal/issue"
	"github.com/triagent/triagent/internal/store"
	"github.com/triagent/triagent/pkg/models"
)

// Runner runs the agent pipeline for one issue.
type Runner interface {
	Run(ctx context.Context, iss models.Issue, sourceFile string) (models.PipelineResult, error)
}

// Dirs holds the folder-workflow directories.
type Dirs struct {
	Incoming  string
	Processed string
	Outgoing  string
}

// Processor handles one issue file end to end.
type Processor struct {
	dirs          Dirs
	runner        Runner
	store         *store.Store
	writeDevFiles bool
	logf          func(format string, args ...any)
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	// Store persists results when non-nil.
	Store *store.Store
	// WriteDevFiles also writes the Dev agent's proposed files to disk.
	WriteDevFiles bool
	// Logf receives progress messages. May be nil.
	Logf func(format string, args ...any)
}

// NewProcessor creates a processor moving files between dirs and running
// each valid issue through runner.
func NewProcessor(dirs Dirs, runner Runner, opts ProcessorOptions) *Processor {
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Processor{
		dirs:          dirs,
		runner:        runner,
		store:         opts.Store,
		writeDevFiles: opts.WriteDevFiles,
		logf:          logf,
	}
}

// ProcessFile runs one incoming issue file through the pipeline.
//
// The file is moved out of incoming/ before the pipeline runs: valid files
// go to processed/, invalid ones to processed/invalid/. On success the
// result JSON lands in outgoing/ and the path to it is returned.
func (p *Processor) ProcessFile(ctx context.Context, path string) (string, error) {
	p.logf("Processing %s", path)

	processedName := fsutil.TimestampedName(filepath.Base(path), filepath.Ext(path))

	iss, err := issue.FromPath(path)
	if err != nil {
		var verr *issue.ValidationError
		if errors.As(err, &verr) {
			p.logf("Validation failed: %v", err)
			invalidDir := filepath.Join(p.dirs.Processed, "invalid")
			if moved, moveErr := fsutil.AtomicMove(path, invalidDir, processedName); moveErr == nil {
				p.logf("Moved to invalid: %s", moved)
			} else {
				p.logf("Failed to move invalid file: %v", moveErr)
			}
		}
		return "", fmt.Errorf("load issue: %w", err)
	}
	p.logf("Loaded issue: %s", iss.IssueID)

	processedPath, err := fsutil.AtomicMove(path, p.dirs.Processed, processedName)
	if err != nil {
		return "", fmt.Errorf("move to processed: %w", err)
	}
	p.logf("Moved to processed: %s", processedPath)

	result, err := p.runner.Run(ctx, iss, processedPath)
	if err != nil {
		return "", fmt.Errorf("pipeline: %w", err)
	}

	outputPath, err := SaveResult(result, p.dirs.Outgoing, p.writeDevFiles)
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	p.logf("Saved result: %s", outputPath)

	if p.store != nil {
		if err := p.store.SaveResult(result); err != nil {
			p.logf("Failed to persist result: %v", err)
		} else {
			p.logf("Persisted to database: %s", p.store.Path())
		}
	}

	p.logf("Run %s complete: %s -> %s", result.RunID, result.Issue.IssueID, result.QA.Verdict)
	return outputPath, nil
}

// SaveResult writes the result JSON to outputDir under a timestamped name.
// When writeFiles is set, the Dev agent's proposed files are also written
// under files_<issue-id>/.
func SaveResult(result models.PipelineResult, outputDir string, writeFiles bool) (string, error) {
	safeID := strings.NewReplacer("/", "_", "#", "_").Replace(result.Issue.IssueID)
	filename := fsutil.TimestampedName("result_"+safeID, ".json")
	outputPath := filepath.Join(outputDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := fsutil.SafeWriteJSON(data, outputPath); err != nil {
		return "", err
	}

	if writeFiles && len(result.Dev.Files) > 0 {
		filesDir := filepath.Join(outputDir, "files_"+safeID)
		for _, f := range result.Dev.Files {
			dest := filepath.Join(filesDir, filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return "", fmt.Errorf("create dev file directory: %w", err)
			}
			if err := os.WriteFile(dest, []byte(f.Content), 0644); err != nil {
				return "", fmt.Errorf("write dev file %s: %w", f.Path, err)
			}
		}
	}

	return outputPath, nil
}
