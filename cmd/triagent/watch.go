package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/watch"
)

var watchWriteFiles bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the incoming directory and process issue files",
	Long: `Watch the incoming directory for issue JSON files and run each one
through the pipeline.

Files are moved to processed/ before the pipeline runs (invalid files go
to processed/invalid/) and results are written to outgoing/. Filesystem
events are used when available, with a polling sweep as fallback.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchWriteFiles, "write-files", false, "Also write the Dev agent's proposed files to disk")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, closer, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	logf := func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}

	processor := watch.NewProcessor(watch.Dirs{
		Incoming:  cfg.Workspace.Incoming,
		Processed: cfg.Workspace.Processed,
		Outgoing:  cfg.Workspace.Outgoing,
	}, p, watch.ProcessorOptions{
		Store:         s,
		WriteDevFiles: watchWriteFiles,
		Logf:          logf,
	})

	watcher := watch.NewWatcher(processor, cfg.Watch.PollInterval, logf)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
