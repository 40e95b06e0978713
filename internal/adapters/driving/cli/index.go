package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or verify the persistent corpus index",
	Long: `Resolves the index state: reuses a valid stored index, or rebuilds it
from the corpus when the stored one is missing, stale, or --force is set.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if the stored index is valid")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	version, err := indexService.EnsureReady(cmd.Context(), indexForce)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Index ready (version %s)\n", version.Token)
	cmd.Printf("  documents: %d\n", version.Documents)
	cmd.Printf("  chunks:    %d\n", version.Chunks)
	cmd.Printf("  built:     %s\n", version.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
