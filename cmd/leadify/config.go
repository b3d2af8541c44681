package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/leadify/internal/secrets"
	"github.com/pdiddy/leadify/pkg/types"
)

// Viper keys. Each is also read from LEADIFY_<KEY> in the environment.
const (
	keyFirecrawlAPIKey  = "firecrawl_api_key"
	keyGroqAPIKey       = "groq_api_key"
	keyGroqModel        = "groq_model"
	keyGroqBaseURL      = "groq_base_url"
	keyCondenseTimeout  = "condense_timeout"
	keyLimit            = "limit"
	keyLang             = "lang"
	keyLocation         = "location"
	keySearchTimeout    = "search_timeout"
	keyHTTPTimeout      = "http_timeout"
	keyRateLimitRetries = "rate_limit_retries"
	keyConcurrency      = "concurrency"
	keyPollInterval     = "poll_interval"
	keyMaxWait          = "max_wait"
	keySave             = "save"
	keyDataDir          = "data_dir"
)

func setConfigDefaults() {
	viper.SetDefault(keyGroqModel, types.DefaultGroqModel)
	viper.SetDefault(keyCondenseTimeout, types.DefaultCondenseTimeout)
	viper.SetDefault(keyLimit, types.DefaultLimit)
	viper.SetDefault(keyLang, types.DefaultLang)
	viper.SetDefault(keyLocation, types.DefaultLocation)
	viper.SetDefault(keySearchTimeout, types.DefaultSearchTimeout)
	viper.SetDefault(keyHTTPTimeout, types.DefaultHTTPTimeout)
	viper.SetDefault(keyConcurrency, types.DefaultConcurrency)
	viper.SetDefault(keyPollInterval, types.DefaultPollInterval)
	viper.SetDefault(keyMaxWait, types.DefaultExtractMaxWait)
	viper.SetDefault(keySave, true)
	viper.SetDefault(keyDataDir, types.DefaultDataDir)

	// Unprefixed names used by the services' own tooling are accepted too.
	_ = viper.BindEnv(keyFirecrawlAPIKey, "LEADIFY_FIRECRAWL_API_KEY", "FIRECRAWL_API_KEY")
	_ = viper.BindEnv(keyGroqAPIKey, "LEADIFY_GROQ_API_KEY", "GROQ_API_KEY")
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// bindFlags binds command-local flags to viper keys. Commands call it at run
// time because several commands share a key.
func bindFlags(cmd *cobra.Command, flagToKey map[string]string) error {
	for name, key := range flagToKey {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// pipelineConfig assembles the run configuration. Precedence for each key is
// flag, then environment or config file, then the secrets directory.
func pipelineConfig() types.PipelineConfig {
	firecrawl := loadedSecrets.Or(secrets.FirecrawlKey, viper.GetString(keyFirecrawlAPIKey))
	httpCfg := types.HTTPConfig{
		Timeout:          viper.GetDuration(keyHTTPTimeout),
		UserAgent:        "leadify/" + version,
		RateLimitRetries: viper.GetInt(keyRateLimitRetries),
	}

	cfg := types.PipelineConfig{
		Condense: types.CondenseConfig{
			AIConfig: types.AIConfig{
				Model:   viper.GetString(keyGroqModel),
				APIKey:  loadedSecrets.Or(secrets.GroqKey, viper.GetString(keyGroqAPIKey)),
				BaseURL: viper.GetString(keyGroqBaseURL),
			},
			Timeout: viper.GetDuration(keyCondenseTimeout),
		},
		Discovery: types.DiscoveryConfig{
			HTTPConfig:    httpCfg,
			APIKey:        firecrawl,
			Limit:         types.ClampLimit(viper.GetInt(keyLimit)),
			Lang:          viper.GetString(keyLang),
			Location:      viper.GetString(keyLocation),
			SearchTimeout: viper.GetDuration(keySearchTimeout),
		},
		Extraction: types.ExtractionConfig{
			HTTPConfig:   httpCfg,
			APIKey:       firecrawl,
			Concurrency:  viper.GetInt(keyConcurrency),
			PollInterval: viper.GetDuration(keyPollInterval),
			MaxWait:      viper.GetDuration(keyMaxWait),
		},
		Store: types.StoreConfig{
			Enabled: viper.GetBool(keySave),
			DataDir: viper.GetString(keyDataDir),
		},
	}
	return cfg.WithDefaults()
}
