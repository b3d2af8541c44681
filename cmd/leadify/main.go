// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the leadify CLI.
//
// Each pipeline stage is a subcommand (condense, discover, extract) and
// generate runs them end to end. Saved runs are browsed and exported with
// the leads subcommands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/leadify/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets = secrets.Set{}

// rootCmd is the base command for the leadify CLI.
var rootCmd = &cobra.Command{
	Use:   "leadify",
	Short: "Find sales leads in public Quora discussions",
	Long: `leadify turns a description of a target customer into a table of leads.

It condenses the description into a short topic phrase, searches the web for
Quora discussions about that topic, extracts the users asking and answering
there, and flattens them into rows you can browse or export to a spreadsheet.

A search service key (Firecrawl) is required. A language model key (Groq) is
optional; without it the topic phrase is built from keywords.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			slog.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./leadify.yaml or ~/.config/leadify/config.yaml)")
	pf.BoolP("verbose", "v", false, "log diagnostics to stderr")
	pf.String("secrets-dir", ".secrets/", "directory of API key files")
	pf.String("firecrawl-key", "", "Firecrawl API key (search and extraction)")
	pf.String("groq-key", "", "Groq API key (optional, enables model-based condensing)")
	pf.String("data-dir", "", "directory holding the run history database")

	mustBind(keyFirecrawlAPIKey, pf.Lookup("firecrawl-key"))
	mustBind(keyGroqAPIKey, pf.Lookup("groq-key"))
	mustBind(keyDataDir, pf.Lookup("data-dir"))
}

func initConfig() {
	// A .env file supplies environment variables that are not already set.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("leadify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "leadify"))
		}
	}

	viper.SetEnvPrefix("LEADIFY")
	viper.AutomaticEnv()
	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
