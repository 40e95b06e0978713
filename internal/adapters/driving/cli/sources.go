package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var sourcesFetch bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the registered feed sources",
	Long: `Loads the feed source registry, reporting valid sources and any
rows that were skipped. With --fetch, runs one aggregation cycle and
reports per-source results.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesFetch, "fetch", false, "fetch every source and report results")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if feedRegistry == nil {
		return errors.New("feed registry not configured")
	}

	sources, rowErrs, err := feedRegistry.Load()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}

	cmd.Printf("Registered sources: %d\n", len(sources))
	for _, src := range sources {
		cmd.Printf("  tier %d  %-12s %-24s %s\n", src.Tier, src.Category, src.Name, src.URL)
	}

	if len(rowErrs) > 0 {
		cmd.Println()
		cmd.Printf("Skipped rows: %d\n", len(rowErrs))
		for _, rerr := range rowErrs {
			cmd.Printf("  %v\n", rerr)
		}
	}

	if !sourcesFetch {
		return nil
	}
	if aggregatorService == nil {
		return errors.New("aggregator service not configured")
	}

	cmd.Println()
	results, err := aggregatorService.FetchAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching feeds: %w", err)
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := results[name]
		switch {
		case result.Err != nil && len(result.Items) == 0:
			cmd.Printf("  %-24s FAILED: %v\n", name, result.Err)
		case result.FromCache:
			cmd.Printf("  %-24s %d items (cached)\n", name, len(result.Items))
		default:
			cmd.Printf("  %-24s %d items\n", name, len(result.Items))
		}
	}
	return nil
}
