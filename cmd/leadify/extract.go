package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/leadify/internal/extract"
	"github.com/pdiddy/leadify/internal/normalize"
)

var extractCmd = &cobra.Command{
	Use:   "extract [urls...]",
	Short: "Extract leads from specific discussion pages",
	Long: `Extract runs the extraction and flattening stages on the given page URLs,
skipping discovery. Use --from to read URLs from a file ("-" for stdin),
for example the output of "leadify discover".`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{"concurrency": keyConcurrency}); err != nil {
		return err
	}

	urls := append([]string{}, args...)
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		more, err := readURLs(from)
		if err != nil {
			return err
		}
		urls = append(urls, more...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given: pass them as arguments or with --from")
	}

	cfg := pipelineConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Extraction.APIKey == "" {
		return fmt.Errorf("search service API key is required: pass --firecrawl-key")
	}

	batch, runErr := extract.New(cfg.Extraction).Extract(cmd.Context(), urls, cmd.ErrOrStderr())
	fmt.Fprintf(cmd.ErrOrStderr(), "\nExtraction summary: %d extracted, %d empty, %d failed (total: %d)\n",
		batch.Summary.Extracted, batch.Summary.Empty, batch.Summary.Failed, batch.Summary.Total())

	leads := normalize.Flatten(batch.Pages)
	if len(leads) == 0 && runErr == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "No lead data could be extracted from the URLs.")
		return nil
	}
	if err := renderLeads(cmd, leads); err != nil {
		return err
	}
	return runErr
}

// readURLs reads one URL per line, ignoring blank lines and # comments.
func readURLs(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("opening URL list: %w", err)
		}
		defer f.Close()
	}

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading URL list: %w", err)
	}
	return urls, nil
}

func init() {
	extractCmd.Flags().String("from", "", "file with one URL per line (- for stdin)")
	extractCmd.Flags().Int("concurrency", 1, "pages extracted at once (1-10)")
	addOutputFlags(extractCmd)

	rootCmd.AddCommand(extractCmd)
}
