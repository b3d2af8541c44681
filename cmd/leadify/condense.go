package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/leadify/internal/condense"
)

var condenseCmd = &cobra.Command{
	Use:   "condense <query>",
	Short: "Condense a customer description into a short topic phrase",
	Long: `Condense runs only the first pipeline stage. With a Groq key the phrase
comes from the language model; otherwise, or when the model call fails, it
is built from up to four keywords of the query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		c := condense.New(cfg.Condense)
		if !c.HasModel() {
			fmt.Fprintln(cmd.ErrOrStderr(), "no language model key: using keyword extraction")
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Condense(cmd.Context(), strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(condenseCmd)
}
