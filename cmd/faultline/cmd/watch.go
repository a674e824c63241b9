package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/faultline/internal/diagnostics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the dump directory and report new crash dumps",
	Long: `watch blocks and prints a line for every crash dump that lands in the
dump directory, until interrupted. Useful while reproducing a crash in
another process.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchDumps(ctx, cfg.Dumps.Dir, logger)
	},
}

func watchDumps(ctx context.Context, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Info("watching for crash dumps", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isDumpFile(event.Name) {
				continue
			}
			dump, err := diagnostics.Load(event.Name)
			if err != nil {
				// Written by another process; it may not be complete yet.
				logger.Debug("unreadable dump file",
					slog.String("path", event.Name),
					slog.String("error", err.Error()),
				)
				continue
			}
			logger.Info("crash dump recorded",
				slog.String("id", dump.ID),
				slog.String("fault", dump.Rendered()),
			)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

func isDumpFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "fault-") && strings.HasSuffix(name, ".json")
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
