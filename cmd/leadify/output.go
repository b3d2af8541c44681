package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/leadify/internal/export"
	"github.com/pdiddy/leadify/pkg/types"
)

// addOutputFlags registers the flags shared by commands that print leads.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "table", "output format: table, csv, json, yaml (xlsx needs --output)")
	cmd.Flags().StringP("output", "o", "", "write leads to this file; format follows the extension unless --format is set")
}

// renderLeads prints leads to stdout or writes them to --output.
func renderLeads(cmd *cobra.Command, leads []types.LeadRecord) error {
	formatName, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if outPath != "" {
		if !cmd.Flags().Changed("format") {
			if format, err = export.FormatFromPath(outPath); err != nil {
				return err
			}
		}
		return writeLeadsFile(cmd.OutOrStdout(), outPath, format, leads)
	}

	w := cmd.OutOrStdout()
	switch format {
	case export.Table:
		export.WriteStats(w, export.Summarize(leads))
		fmt.Fprintln(w)
		export.WriteTable(w, leads)
		return nil
	case export.XLSX:
		return fmt.Errorf("xlsx output is binary: use --output %s", export.DefaultXLSXName)
	default:
		return export.Write(format, w, leads)
	}
}

func writeLeadsFile(w io.Writer, path string, format export.Format, leads []types.LeadRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(format, f, leads); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	fmt.Fprintf(w, "Exported %d leads to %s\n", len(leads), path)
	return nil
}
