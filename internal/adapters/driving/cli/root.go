// Package cli provides the cobra command tree for the lore binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/lore-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
	"github.com/halcyon-labs/lore-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute. Commands check for nil so
// tests can run the tree with partial wiring.
var (
	answerService     driving.AnswerService
	indexService      driving.IndexService
	aggregatorService driving.AggregatorService
	feedRegistry      driven.FeedRegistry
	corpusWatcher     driven.CorpusWatcher
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lore",
	Short: "Knowledge-base CLI with hybrid retrieval",
	Long: `lore answers questions from a curated document corpus combined
with live industry feeds. The corpus is embedded into a persistent
local index; queries are routed to the index, the feeds, or both.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Wiring carries the constructed services into the command tree.
type Wiring struct {
	Answer     driving.AnswerService
	Index      driving.IndexService
	Aggregator driving.AggregatorService
	Registry   driven.FeedRegistry
	Watcher    driven.CorpusWatcher
}

// SetWiring injects services. Called by main after construction.
func SetWiring(w Wiring) {
	answerService = w.Answer
	indexService = w.Index
	aggregatorService = w.Aggregator
	feedRegistry = w.Registry
	corpusWatcher = w.Watcher
}

// SetVersion overrides the build version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the command tree under ctx so commands stop on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
