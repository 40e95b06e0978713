package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/lore-cli/internal/core/domain"
	"github.com/halcyon-labs/lore-cli/internal/core/ports/driving"
)

var (
	askShowSources bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Answers a question using the persistent corpus index and, when the
question calls for current information, the live feed layer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowSources, "sources", false, "show the evidence behind the answer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	if indexService != nil {
		if _, err := indexService.EnsureReady(cmd.Context(), false); err != nil {
			return fmt.Errorf("preparing index: %w", err)
		}
	}

	answer, err := answerService.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}

	cmd.Println(answer.Text)

	if askShowSources && answer.Result != nil && !answer.Result.Empty() {
		cmd.Println()
		cmd.Printf("Sources (route: %s):\n", answer.Result.Route)
		for i, ev := range answer.Result.Evidence {
			cmd.Printf("  [%d] %-5s %.3f  %s\n", i+1, ev.Provenance, ev.Score, ev.Title)
			if ev.Provenance == domain.ProvenanceFeed && ev.Item != nil && ev.Item.Link != "" {
				cmd.Printf("        %s\n", ev.Item.Link)
			}
		}
	}
	return nil
}

// askOutput is the JSON shape emitted by ask --json.
type askOutput struct {
	Answer   string           `json:"answer"`
	OffTopic bool             `json:"off_topic"`
	Route    string           `json:"route,omitempty"`
	Sources  []askSourceEntry `json:"sources,omitempty"`
}

type askSourceEntry struct {
	Provenance string  `json:"provenance"`
	Score      float64 `json:"score"`
	Title      string  `json:"title"`
	Link       string  `json:"link,omitempty"`
}

func outputAskJSON(cmd *cobra.Command, answer *driving.Answer) error {
	out := askOutput{Answer: answer.Text, OffTopic: answer.OffTopic}
	if answer.Result != nil {
		out.Route = answer.Result.Route.String()
		for _, ev := range answer.Result.Evidence {
			entry := askSourceEntry{
				Provenance: string(ev.Provenance),
				Score:      ev.Score,
				Title:      ev.Title,
			}
			if ev.Item != nil {
				entry.Link = ev.Item.Link
			}
			out.Sources = append(out.Sources, entry)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
