// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/leadify/internal/export"
	"github.com/pdiddy/leadify/internal/leadstore"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Browse and export saved runs",
	Long: `Leads works with the local run history written by "leadify generate".
Subcommands default to the most recent run; pick another with --run.`,
}

// --- runs subcommand ---

var leadsRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs, newest first",
	RunE:  runLeadsRuns,
}

func runLeadsRuns(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if runs == nil {
			runs = []leadstore.RunInfo{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No saved runs.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-15s  %-5s  %-30s  %s\n",
		"ID", "Started", "Outcome", "Leads", "Topic", "Query")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-20s  %-15s  %-5d  %-30s  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Outcome,
			r.LeadCount, clip(r.Topic, 30), clip(r.Query, 40))
	}
	return nil
}

// --- list subcommand ---

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the leads of a saved run",
	Long: `List prints the leads of a run with the headline metrics. --search keeps
rows whose username or bio contains the term.`,
	RunE: runLeadsList,
}

func runLeadsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	leads, err := store.Leads(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	return renderLeads(cmd, leads)
}

// --- top subcommand ---

var leadsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the users with the most upvotes in a saved run",
	RunE:  runLeadsTop,
}

func runLeadsTop(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runID, _ := cmd.Flags().GetInt64("run")
	n, _ := cmd.Flags().GetInt("count")
	top, err := store.Top(cmd.Context(), runID, n)
	if err != nil {
		return err
	}
	export.WriteTop(cmd.OutOrStdout(), top)
	return nil
}

// --- export subcommand ---

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the leads of a saved run to a file",
	Long: `Export writes the leads of a run to a spreadsheet or data file. The
format follows the file extension: .xlsx, .csv, .json, .yaml.`,
	RunE: runLeadsExport,
}

func runLeadsExport(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		outPath = export.DefaultXLSXName
	}
	format, err := export.FormatFromPath(outPath)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	leads, err := store.Leads(cmd.Context(), queryOptsFromFlags(cmd))
	if err != nil {
		return err
	}
	return writeLeadsFile(cmd.OutOrStdout(), outPath, format, leads)
}

// --- delete subcommand ---

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a saved run and its leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscan(args[0], &id); err != nil || id <= 0 {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteRun(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted run %d\n", id)
		return nil
	},
}

// --- import subcommand ---

var leadsImportCmd = &cobra.Command{
	Use:   "import <run-file>...",
	Short: "Add runs written with generate --run-file to the history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		for _, path := range args {
			res, err := export.ReadRunFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed  %s: %v\n", path, err)
				continue
			}
			id, err := store.SaveRun(cmd.Context(), res)
			if err != nil {
				return fmt.Errorf("saving %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s as run %d (%d leads)\n", path, id, len(res.Leads))
		}
		return nil
	},
}

// --- shared helpers ---

func openStore() (*leadstore.Store, error) {
	return leadstore.Open(pipelineConfig().Store)
}

func queryOptsFromFlags(cmd *cobra.Command) leadstore.QueryOptions {
	runID, _ := cmd.Flags().GetInt64("run")
	term, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	return leadstore.QueryOptions{RunID: runID, Term: term, Limit: limit}
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	leadsRunsCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 for all)")
	leadsRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	leadsListCmd.Flags().Int64("run", 0, "run ID (default: most recent)")
	leadsListCmd.Flags().StringP("search", "s", "", "filter by username or bio")
	leadsListCmd.Flags().Int("limit", 0, "maximum number of leads (0 for all)")
	addOutputFlags(leadsListCmd)

	leadsTopCmd.Flags().Int64("run", 0, "run ID (default: most recent)")
	leadsTopCmd.Flags().IntP("count", "n", export.DefaultTopN, "number of users to show")

	leadsExportCmd.Flags().Int64("run", 0, "run ID (default: most recent)")
	leadsExportCmd.Flags().StringP("search", "s", "", "export only leads whose username or bio matches")
	leadsExportCmd.Flags().StringP("output", "o", export.DefaultXLSXName, "output file (.xlsx, .csv, .json, .yaml)")

	leadsCmd.AddCommand(leadsRunsCmd, leadsListCmd, leadsTopCmd, leadsExportCmd, leadsImportCmd, leadsDeleteCmd)
	rootCmd.AddCommand(leadsCmd)
}
