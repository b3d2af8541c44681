package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/leadify/internal/discover"
	"github.com/pdiddy/leadify/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <topic>",
	Short: "Search for Quora discussions about a topic phrase",
	Long: `Discover runs only the search stage and prints candidate page URLs in
ranked order, one per line. The topic is embedded in a fixed search sentence
aimed at Quora threads.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, map[string]string{"limit": keyLimit}); err != nil {
			return err
		}
		cfg := pipelineConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.Discovery.APIKey == "" {
			return fmt.Errorf("search service API key is required: pass --firecrawl-key")
		}

		topic := strings.Join(args, " ")
		fmt.Fprintf(cmd.ErrOrStderr(), "searching: %s\n", discover.BuildQuery(topic))
		urls := discover.New(cfg.Discovery).Discover(cmd.Context(), topic, cfg.Discovery.Limit)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(urls)
		}
		if len(urls) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), types.OutcomeNoDiscussions.Message())
			return nil
		}
		for _, u := range urls {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntP("limit", "n", types.DefaultLimit, "maximum number of URLs (1-10)")
	discoverCmd.Flags().Bool("json", false, "output URLs as a JSON array")

	rootCmd.AddCommand(discoverCmd)
}
