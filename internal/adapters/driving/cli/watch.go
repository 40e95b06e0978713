package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/lore-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index whenever the corpus changes",
	Long: `Builds the index, then watches the corpus directory and rebuilds on
every settled batch of file changes. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}
	if corpusWatcher == nil {
		return errors.New("corpus watcher not configured")
	}

	ctx := cmd.Context()

	if _, err := indexService.EnsureReady(ctx, false); err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}

	signals, err := corpusWatcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	cmd.Println("Watching corpus for changes (Ctrl+C to stop)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-signals:
			if !ok {
				return nil
			}
			logger.Info("watch: corpus changed, rebuilding")
			version, err := indexService.EnsureReady(ctx, true)
			if err != nil {
				// Keep watching; the next change may fix the corpus.
				logger.Warn("watch: rebuild failed: %v", err)
				continue
			}
			cmd.Printf("Rebuilt: %d documents, %d chunks\n", version.Documents, version.Chunks)
		}
	}
}
