// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/leadify/internal/export"
	"github.com/pdiddy/leadify/internal/leadstore"
	"github.com/pdiddy/leadify/internal/pipeline"
	"github.com/pdiddy/leadify/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <query>",
	Short: "Run the full pipeline: condense, discover, extract, flatten",
	Long: `Generate takes a description of the customers you are looking for, for
example "Find people who need AI chatbots for e-commerce", and produces a
table of leads from Quora discussions about that topic.

Progress is written to stderr. The run is saved to the local history unless
--no-save is given, so it can be browsed later with "leadify leads".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"limit":       keyLimit,
		"concurrency": keyConcurrency,
	}); err != nil {
		return err
	}
	noSave, _ := cmd.Flags().GetBool("no-save")
	if noSave {
		viper.Set(keySave, false)
	}

	cfg := pipelineConfig()
	progress := cmd.ErrOrStderr()

	p, err := pipeline.New(cfg, progress)
	if errors.Is(err, pipeline.ErrMissingSearchKey) {
		return fmt.Errorf("%w: pass --firecrawl-key, set LEADIFY_FIRECRAWL_API_KEY, or add .secrets/firecrawl-api-key", err)
	}
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	res, runErr := p.Run(cmd.Context(), query)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(progress, "run interrupted: %v (keeping %d leads gathered so far)\n", runErr, len(res.Leads))
	} else {
		fmt.Fprintln(progress, res.Outcome.Message())
	}

	if runFile, _ := cmd.Flags().GetString("run-file"); runFile != "" {
		if err := export.WriteRunFile(runFile, res); err != nil {
			return err
		}
		fmt.Fprintf(progress, "wrote run file %s\n", runFile)
	}

	if cfg.Store.Enabled {
		if err := saveRun(cmd, cfg.Store, res); err != nil {
			return err
		}
	}

	if len(res.Leads) > 0 {
		if err := renderLeads(cmd, res.Leads); err != nil {
			return err
		}
	}
	return runErr
}

func saveRun(cmd *cobra.Command, cfg types.StoreConfig, res *types.RunResult) error {
	store, err := leadstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// An interrupted run is still recorded.
	id, err := store.SaveRun(context.WithoutCancel(cmd.Context()), res)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved run %d to %s\n", id, store.Path())
	return nil
}

func init() {
	generateCmd.Flags().IntP("limit", "n", types.DefaultLimit, "number of discussion pages to search (1-10)")
	generateCmd.Flags().Int("concurrency", types.DefaultConcurrency, "pages extracted at once (1-10)")
	generateCmd.Flags().Bool("no-save", false, "do not record this run in the local history")
	generateCmd.Flags().String("run-file", "", "also write the whole run to this YAML file")
	addOutputFlags(generateCmd)

	rootCmd.AddCommand(generateCmd)
}
